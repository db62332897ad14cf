package checkout

import (
	"fmt"
	"sort"

	"lokanta-backend/internal/catalog"
	"lokanta-backend/internal/models"
	"lokanta-backend/internal/stock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartLine: Sepetteki bir satır. Kalıcı değil, sadece istek süresince yaşar.
type CartLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Result: Başarılı checkout'un özeti.
type Result struct {
	ReceiptNo        string        `json:"receipt_no"`
	Sales            []models.Sale `json:"sales"`
	TotalBill        float64       `json:"total_bill"`
	TotalProfit      float64       `json:"total_profit"`
	TotalItems       int           `json:"total_items"`
	TransactionCount int           `json:"transaction_count"`
}

// Engine: Checkout'un tamamı tek bir veritabanı transaction'ı içinde koşar:
// ürün çözümleme, reçete toplama, yeterlilik kontrolü, satış kayıtları ve
// koşullu stok düşümü. Herhangi bir adım başarısız olursa hiçbir değişiklik
// görünür olmaz. Engine kendi içinde retry yapmaz; ConcurrencyConflictError
// alan çağıran aynı sepetle tekrar deneyebilir.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Checkout çok ürünlü bir sepeti işler. Hata taksonomisi için errors.go'ya bak.
func (e *Engine) Checkout(lines []CartLine) (*Result, error) {
	// Doğrulama ve aynı ürüne ait satırların birleştirilmesi transaction
	// açılmadan yapılır; geçersiz istek veritabanına hiç dokunmaz.
	quantities, productOrder, totalItems, err := coalesce(lines)
	if err != nil {
		return nil, err
	}

	var result *Result
	txErr := e.db.Transaction(func(tx *gorm.DB) error {
		cat := catalog.NewStore(tx)
		led := stock.NewLedger(tx)

		// 1) Ürünleri çözümle; eksik ID varsa hiçbir şey yazmadan iptal
		products, err := cat.ResolveProducts(productOrder)
		if err != nil {
			return err
		}
		productByID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			productByID[p.ID] = p
		}
		for _, id := range productOrder {
			if _, ok := productByID[id]; !ok {
				return &NotFoundError{ProductID: id}
			}
		}

		// 2) Tüm reçeteleri yükle
		ingredients, err := cat.IngredientsForProducts(productOrder)
		if err != nil {
			return err
		}

		// 3) Hammadde bazında toplam ihtiyaç. Aynı hammaddeyi kullanan
		// farklı ürünlerin talebi TEK toplamda birikir; iki ürün de un
		// tüketiyorsa un ihtiyacı stokla karşılaştırılmadan önce toplanır.
		requiredPerMaterial := make(map[uint]float64)
		for _, row := range ingredients {
			requiredPerMaterial[row.RawMaterialID] += float64(quantities[row.ProductID]) * row.QuantityUsed
		}

		materialIDs := make([]uint, 0, len(requiredPerMaterial))
		for id := range requiredPerMaterial {
			materialIDs = append(materialIDs, id)
		}
		sort.Slice(materialIDs, func(i, j int) bool { return materialIDs[i] < materialIDs[j] })

		// 4) Yeterlilik kontrolü (transaction içi snapshot okuma).
		// Eksik olan HER hammadde raporlanır, ilkinde kesilmez.
		materials, err := led.MaterialsFor(materialIDs)
		if err != nil {
			return err
		}
		var shortfalls []Shortfall
		for _, id := range materialIDs {
			m := materials[id]
			need := requiredPerMaterial[id]
			if need > m.QuantityAvailable {
				shortfalls = append(shortfalls, Shortfall{
					RawMaterialID:   id,
					RawMaterialName: m.Name,
					Required:        need,
					Available:       m.QuantityAvailable,
					Unit:            m.Unit,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &InsufficientStockError{Shortfalls: shortfalls}
		}

		// 5) Satış kayıtları: fiyat ve maliyet bu andaki değerleriyle
		// dondurulur; ürün fiyatı sonradan değişse bile kayıtlar değişmez.
		receiptNo := uuid.NewString()
		sales := make([]models.Sale, 0, len(productOrder))
		totalBill := 0.0
		totalProfit := 0.0
		for _, id := range productOrder {
			p := productByID[id]
			qty := quantities[id]
			sale := models.Sale{
				ReceiptNo:   receiptNo,
				ProductID:   p.ID,
				Quantity:    qty,
				TotalPrice:  float64(qty) * p.SellingPrice,
				TotalProfit: float64(qty) * (p.SellingPrice - p.ManufacturingCost),
			}
			if err := tx.Create(&sale).Error; err != nil {
				return fmt.Errorf("satış kaydı oluşturulamadı: %w", err)
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", p.ID).
				UpdateColumn("sell_count", gorm.Expr("sell_count + ?", qty)).Error; err != nil {
				return fmt.Errorf("satış sayacı güncellenemedi: %w", err)
			}
			sales = append(sales, sale)
			totalBill += sale.TotalPrice
			totalProfit += sale.TotalProfit
		}

		// 6) Koşullu düşüm. 4. adımdaki okuma ile bu yazım arasında başka
		// bir checkout stoku tüketmişse UPDATE 0 satır etkiler; o durumda
		// transaction komple geri alınır (yukarıdaki insert'ler dahil).
		// Oversell'e karşı asıl garanti bu, 4. adımdaki okuma değil.
		for _, id := range materialIDs {
			need := requiredPerMaterial[id]
			if need <= 0 {
				continue
			}
			affected, err := led.ConditionalDecrement(id, need)
			if err != nil {
				return err
			}
			if affected == 0 {
				return &ConcurrencyConflictError{RawMaterialID: id}
			}
		}

		result = &Result{
			ReceiptNo:        receiptNo,
			Sales:            sales,
			TotalBill:        totalBill,
			TotalProfit:      totalProfit,
			TotalItems:       totalItems,
			TransactionCount: len(sales),
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// coalesce satırları doğrular ve aynı ürüne ait satırları toplayarak
// birleştirir. [A×2, A×3] her açıdan [A×5] ile aynı işlem görür; birleştirme
// yeterlilik hesabından ÖNCE yapılır ki kontrol satır bazlı değil toplam
// bazlı olsun. Ürün sırası ilk görünüş sırasına göre korunur.
func coalesce(lines []CartLine) (map[uint]int, []uint, int, error) {
	if len(lines) == 0 {
		return nil, nil, 0, &ValidationError{Message: "sepet boş olamaz"}
	}

	merged := make(map[uint]int, len(lines))
	order := make([]uint, 0, len(lines))
	totalItems := 0
	for i, line := range lines {
		if line.ProductID == 0 {
			return nil, nil, 0, &ValidationError{Message: fmt.Sprintf("product_id zorunlu (satır %d)", i+1)}
		}
		if line.Quantity <= 0 {
			return nil, nil, 0, &ValidationError{Message: fmt.Sprintf("adet pozitif olmalı (satır %d, product_id: %d)", i+1, line.ProductID)}
		}
		if _, seen := merged[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		merged[line.ProductID] += line.Quantity
		totalItems += line.Quantity
	}

	return merged, order, totalItems, nil
}
