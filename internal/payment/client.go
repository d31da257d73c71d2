package payment

import "context"

// 決済プロバイダに渡す明細1行。税・送料も1行として渡す。
type LineItem struct {
	Name       string
	UnitAmount float64
	Quantity   int64
}

type CheckoutSessionParams struct {
	LineItems      []LineItem
	Metadata       map[string]string
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
}

// プロバイダ側のチェックアウトセッション。
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// 決済プロバイダのクライアント。Usecaseにはコンストラクタで注入する。
type Client interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (Session, error)
}
