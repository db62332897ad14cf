package models

import "time"

// ProductIngredient: Ürün reçetesi satırı (bir ürünün bir hammaddeden
// kaç birim tükettiği). (product_id, raw_material_id) ikilisi tekildir;
// aynı ikili tekrar yazılırsa miktar güncellenir, yeni satır açılmaz.
type ProductIngredient struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ProductID     uint        `gorm:"not null;uniqueIndex:idx_product_material" json:"product_id"`
	Product       Product     `json:"-"`
	RawMaterialID uint        `gorm:"not null;uniqueIndex:idx_product_material" json:"raw_material_id"`
	RawMaterial   RawMaterial `json:"-"`
	QuantityUsed  float64     `gorm:"not null" json:"quantity_used"` // 1 ürün için tüketilen miktar
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
