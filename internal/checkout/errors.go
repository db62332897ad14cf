package checkout

import (
	"errors"
	"fmt"
)

// ValidationError: İstek daha transaction açılmadan reddedildi
// (boş sepet, pozitif olmayan adet, eksik product_id).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NotFoundError: Sepetteki bir ürün ID'si veritabanında yok.
type NotFoundError struct {
	ProductID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ürün bulunamadı (ID: %d)", e.ProductID)
}

func IsNotFound(err error) bool {
	var v *NotFoundError
	return errors.As(err, &v)
}

// Shortfall: Bir hammadde için gereken miktarın mevcut stoku aştığı durumun
// yapılandırılmış kaydı. Çağıran "X gerekiyor, Y var (birim Z)" diye tam
// olarak gösterebilsin diye mesaj değil veri taşınır.
type Shortfall struct {
	RawMaterialID   uint    `json:"raw_material_id"`
	RawMaterialName string  `json:"raw_material_name"`
	Required        float64 `json:"required"`
	Available       float64 `json:"available"`
	Unit            string  `json:"unit"`
}

// InsufficientStockError: En az bir hammaddenin stoku yetersiz; işlem hiçbir
// değişiklik yapılmadan iptal edildi. Retry işe yaramaz, önce stok girilmeli.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortfalls) == 1 {
		s := e.Shortfalls[0]
		return fmt.Sprintf("yetersiz stok: %s için %.2f %s gerekiyor, %.2f %s var",
			s.RawMaterialName, s.Required, s.Unit, s.Available, s.Unit)
	}
	return fmt.Sprintf("yetersiz stok: %d hammadde eksik", len(e.Shortfalls))
}

func IsInsufficientStock(err error) bool {
	var v *InsufficientStockError
	return errors.As(err, &v)
}

// ConcurrencyConflictError: Yeterlilik kontrolü geçti ama koşullu düşüm 0
// satır etkiledi; eşzamanlı başka bir checkout stoku aradan aldı. İşlem
// tamamen geri alındı, çağıran aynı sepetle yeniden deneyebilir.
type ConcurrencyConflictError struct {
	RawMaterialID uint
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("stok satış sırasında değişti (hammadde ID: %d), lütfen tekrar deneyin", e.RawMaterialID)
}

func IsConcurrencyConflict(err error) bool {
	var v *ConcurrencyConflictError
	return errors.As(err, &v)
}
