package models

import "time"

// Product: Satılan ürün (menü kalemi).
// ManufacturingCost türetilmiş bir alandır: reçete (ProductIngredient) her
// değiştiğinde Σ quantity_used × cost_per_unit olarak yeniden hesaplanır,
// elle set edilmez.
type Product struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null;unique" json:"name"`
	ManufacturingCost float64   `gorm:"not null;default:0" json:"manufacturing_cost"`
	SellingPrice      float64   `gorm:"not null;default:0" json:"selling_price"`
	SellCount         uint64    `gorm:"not null;default:0" json:"sell_count"` // toplam satış adedi
	PhotoPath         string    `gorm:"size:255" json:"photo_path"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
