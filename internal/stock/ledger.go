package stock

import (
	"fmt"

	"lokanta-backend/internal/models"

	"gorm.io/gorm"
)

// Ledger: Hammadde stok defteri. quantity_available üzerindeki tek satış
// yazarı checkout engine'dir ve düşüm her zaman ConditionalDecrement
// üzerinden yapılır; başka hiçbir kod yolu satış sırasında bu kolona
// doğrudan yazmamalı.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx aynı ledger'ı verilen transaction üzerinde çalışacak şekilde döndürür.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// QuantitiesFor verilen hammaddelerin mevcut miktarlarını döndürür
// (aktif transaction içinden okunur).
func (l *Ledger) QuantitiesFor(ids []uint) (map[uint]float64, error) {
	var materials []models.RawMaterial
	if err := l.db.Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("stok miktarları okunamadı: %w", err)
	}

	quantities := make(map[uint]float64, len(materials))
	for _, m := range materials {
		quantities[m.ID] = m.QuantityAvailable
	}
	return quantities, nil
}

// MaterialsFor ad/birim bilgisiyle birlikte hammaddeleri döndürür
// (shortfall raporu için).
func (l *Ledger) MaterialsFor(ids []uint) (map[uint]models.RawMaterial, error) {
	var materials []models.RawMaterial
	if err := l.db.Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("hammaddeler okunamadı: %w", err)
	}

	byID := make(map[uint]models.RawMaterial, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}
	return byID, nil
}

// ConditionalDecrement atomik karşılaştır-ve-düş: miktarı sadece yazım
// anında hâlâ yeterliyse azaltır. 0 dönerse başka bir eşzamanlı checkout
// stoku aradan almış demektir; çağıran transaction'ı iptal etmelidir.
// Oversell'i gerçekten engelleyen mekanizma budur, daha önceki okuma değil.
func (l *Ledger) ConditionalDecrement(rawMaterialID uint, amount float64) (int64, error) {
	res := l.db.Model(&models.RawMaterial{}).
		Where("id = ? AND quantity_available >= ?", rawMaterialID, amount).
		UpdateColumn("quantity_available", gorm.Expr("quantity_available - ?", amount))
	if res.Error != nil {
		return 0, fmt.Errorf("stok düşümü yapılamadı (hammadde ID: %d): %w", rawMaterialID, res.Error)
	}
	return res.RowsAffected, nil
}

// LowStock kritik eşiğin altına düşmüş hammaddeleri, miktarı en düşük
// olandan başlayarak döndürür.
func (l *Ledger) LowStock() ([]models.RawMaterial, error) {
	var materials []models.RawMaterial
	if err := l.db.
		Where("quantity_available < low_stock_threshold").
		Order("quantity_available asc").
		Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("kritik stok sorgusu başarısız: %w", err)
	}
	return materials, nil
}
