package models

import "time"

// RawMaterial: Hammadde kaydı (un, süt, kıyma vs.)
// QuantityAvailable hiçbir zaman negatif olamaz; satış sırasında sadece
// koşullu düşüm (conditional decrement) ile azaltılır.
type RawMaterial struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null;unique" json:"name"`
	QuantityAvailable float64   `gorm:"not null;default:0" json:"quantity_available"` // mevcut miktar
	Unit              string    `gorm:"size:20;not null" json:"unit"`                 // kg, lt, adet vs.
	CostPerUnit       float64   `gorm:"not null;default:0" json:"cost_per_unit"`
	LowStockThreshold float64   `gorm:"not null;default:0" json:"low_stock_threshold"` // kritik stok eşiği
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
