package model

import "time"

// 注文確定時のスナップショット。後から商品が変更されても注文内容は変わらない。
type OrderItem struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID            int64     `gorm:"not null;index" json:"order_id"`
	ProductID          int64     `gorm:"not null;index" json:"product_id"`
	TitleSnapshot      string    `gorm:"type:varchar(255);not null" json:"title_snapshot"`
	UnitPriceSnapshot  float64   `gorm:"not null" json:"unit_price_snapshot"`
	Quantity           int64     `gorm:"not null" json:"quantity"`
	Size               string    `gorm:"type:varchar(20);not null" json:"size"`
	Design             string    `gorm:"type:varchar(50);not null" json:"design"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
