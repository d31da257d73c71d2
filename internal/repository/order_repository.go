package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	SetTrackingNumber(ctx context.Context, orderID int64, tracking string) error

	//決済セッション作成後にセッションIDを書き戻す
	SetSessionID(ctx context.Context, orderID int64, sessionID string) error

	//webhookのpayment_intent参照から注文を引く（セッションIDとは別の索引）
	FindByPaymentIntentID(ctx context.Context, intentID string) (model.Order, error)

	//決済サブレコードの更新（paidAtはPAID時のみ）
	UpdatePayment(ctx context.Context, orderID int64, status model.PaymentStatus, intentID string, paidAt *time.Time) error

	//在庫引き当て済みマーカーのCAS。falseなら既に引き当て済み。
	MarkStockCommitted(ctx context.Context, orderID int64) (bool, error)

	//在庫戻しのCAS。falseなら引き当てされていない（戻す在庫がない）。
	ClearStockCommitted(ctx context.Context, orderID int64) (bool, error)

	//引き当て時に在庫不足だった注文に印を付ける（要手動確認）
	SetOversold(ctx context.Context, orderID int64) error

	//明示的なステータス変更の履歴
	AppendHistory(ctx context.Context, h model.OrderStatusHistory) error
	ListHistoryByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
