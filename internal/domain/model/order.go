package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCanceled   OrderStatus = "CANCELED"
)

// ユーザー自身のキャンセルはPENDING/CONFIRMEDのみ許可。
func (s OrderStatus) CancelableByUser() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// 管理者が直接設定できるステータス（PENDINGへは戻せない）。
func ValidAdminStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// 決済プロバイダとの対応情報。
type Payment struct {
	Status    PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	SessionID string        `gorm:"type:varchar(255);index" json:"session_id"`
	IntentID  string        `gorm:"type:varchar(255);index" json:"intent_id"`
	PaidAt    *time.Time    `json:"paid_at"`
}

// 注文確定時の配送先スナップショット。
type ShippingAddress struct {
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Phone      string `gorm:"type:varchar(30);not null" json:"phone"`
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	City       string `gorm:"type:varchar(100);not null" json:"city"`
	State      string `gorm:"type:varchar(100);not null" json:"state"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country    string `gorm:"type:varchar(2);not null" json:"country"`
}

type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//金額は小数2桁で確定済み（total = subtotal + tax + shipping）
	Subtotal float64 `gorm:"not null" json:"subtotal"`
	Tax      float64 `gorm:"not null" json:"tax"`
	Shipping float64 `gorm:"not null" json:"shipping"`
	Total    float64 `gorm:"not null" json:"total"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	Payment         Payment         `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	TrackingNumber string `gorm:"type:varchar(100)" json:"tracking_number"`

	//在庫を既に引き当てたか（webhook再送でも二重減算しないためのマーカー）
	StockCommitted bool `gorm:"not null;default:false" json:"-"`

	//引き当て時に在庫が足りなかった注文（要手動確認）
	Oversold bool `gorm:"not null;default:false" json:"oversold"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
