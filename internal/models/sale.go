package models

import "time"

// Sale: Tamamlanmış satış kalemi. Oluşturulduktan sonra değiştirilemez;
// TotalPrice ve TotalProfit satış anındaki fiyat/maliyetin fotoğrafıdır,
// ürün fiyatı sonradan değişse bile geçmiş kayıtlar aynı kalır.
// Tek istisna: admin tarafından silinebilir (audit log'a yazılır).
type Sale struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ReceiptNo   string    `gorm:"size:36;index;not null" json:"receipt_no"` // aynı sepetteki kalemler aynı fişte
	ProductID   uint      `gorm:"index;not null" json:"product_id"`
	Product     Product   `json:"-"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	TotalPrice  float64   `gorm:"not null" json:"total_price"`  // quantity × satış anındaki selling_price
	TotalProfit float64   `gorm:"not null" json:"total_profit"` // quantity × (selling_price − manufacturing_cost)
	CreatedAt   time.Time `json:"created_at"`
}
