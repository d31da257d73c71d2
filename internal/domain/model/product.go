package model

import "time"

type Category string

const (
	CategoryApparel     Category = "APPAREL"
	CategoryAccessories Category = "ACCESSORIES"
	CategoryHome        Category = "HOME"
	CategoryOther       Category = "OTHER"
)

type Product struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Price     float64   `gorm:"not null" json:"price"`
	Category  Category  `gorm:"type:varchar(30);not null;index" json:"category"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	Variants  []Variant `gorm:"foreignKey:ProductID" json:"variants"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// (size, design) は商品内で一意。在庫はこの単位で持つ。
// 在庫の減算はPayment Reconcilerだけが行う。
type Variant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_variant_key" json:"product_id"`
	Size      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_variant_key" json:"size"`
	Design    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_variant_key" json:"design"`
	Stock     int64     `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
