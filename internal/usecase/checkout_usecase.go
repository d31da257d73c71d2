package usecase

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/payment"
	repo "storefront/internal/repository"
)

// 配送先入力の検証はvalidatorパッケージに委譲する。
type CheckoutValidator interface {
	ValidateShipping(in ShippingInput) error
}

// CheckoutUsecase は検証済みカートからPENDING注文を作り、
// 決済プロバイダのセッションを開始する。
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	cart      *CartUsecase
	processor payment.Client
	validator CheckoutValidator
	idGen     IDGenerator
	clock     Clock

	successURL string
	cancelURL  string
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cart *CartUsecase,
	processor payment.Client,
	validator CheckoutValidator,
	idGen IDGenerator,
	clock Clock,
	successURL string,
	cancelURL string,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:         tx,
		cart:       cart,
		processor:  processor,
		validator:  validator,
		idGen:      idGen,
		clock:      clock,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

type ShippingInput struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CreateCheckoutInput struct {
	Items    []CartLineInput
	Shipping ShippingInput
}

type CheckoutOutput struct {
	SessionID   string `json:"session_id"`
	OrderID     int64  `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
}

func (u *CheckoutUsecase) CreateCheckout(ctx context.Context, userID int64, in CreateCheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, CodeValidation, "unauthorized")
	}
	if err := u.validator.ValidateShipping(in.Shipping); err != nil {
		return CheckoutOutput{}, err
	}

	//クライアント側で計算した合計は受け取らない。ここで必ず再検証する。
	quote, err := u.cart.Validate(ctx, in.Items)
	if err != nil {
		return CheckoutOutput{}, err
	}

	//注文スナップショットをPENDINGで永続化（セッションIDは空）
	var orderID int64
	now := u.clock.Now()

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Orders().Create(ctx, model.Order{
			UserID:   userID,
			Status:   model.OrderStatusPending,
			Subtotal: quote.Subtotal,
			Tax:      quote.Tax,
			Shipping: quote.Shipping,
			Total:    quote.Total,
			ShippingAddress: model.ShippingAddress{
				Name:       in.Shipping.Name,
				Phone:      in.Shipping.Phone,
				Address:    in.Shipping.Address,
				City:       in.Shipping.City,
				State:      in.Shipping.State,
				PostalCode: in.Shipping.PostalCode,
				Country:    in.Shipping.Country,
			},
			Payment: model.Payment{
				Status: model.PaymentStatusPending,
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
		orderID = id

		items := make([]model.OrderItem, 0, len(quote.Items))
		for _, it := range quote.Items {
			items = append(items, model.OrderItem{
				ProductID:         it.ProductID,
				TitleSnapshot:     it.Title,
				UnitPriceSnapshot: it.UnitPrice,
				Quantity:          it.Quantity,
				Size:              it.Size,
				Design:            it.Design,
				CreatedAt:         now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	//プロバイダにセッション作成を依頼。明細1行ずつ＋税・送料（0でなければ）を渡す。
	lineItems := make([]payment.LineItem, 0, len(quote.Items)+2)
	for _, it := range quote.Items {
		lineItems = append(lineItems, payment.LineItem{
			Name:       it.Title,
			UnitAmount: it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}
	if quote.Tax > 0 {
		lineItems = append(lineItems, payment.LineItem{Name: "Tax", UnitAmount: quote.Tax, Quantity: 1})
	}
	if quote.Shipping > 0 {
		lineItems = append(lineItems, payment.LineItem{Name: "Shipping", UnitAmount: quote.Shipping, Quantity: 1})
	}

	session, err := u.processor.CreateCheckoutSession(ctx, payment.CheckoutSessionParams{
		LineItems: lineItems,
		Metadata: map[string]string{
			"order_id": strconv.FormatInt(orderID, 10),
			"user_id":  strconv.FormatInt(userID, 10),
		},
		SuccessURL:     u.successURL,
		CancelURL:      u.cancelURL,
		IdempotencyKey: u.idGen.NewID(),
	})
	if err != nil {
		//注文は既にPENDINGで残っている（セッションID空のまま）。
		//この孤児注文はバッチ照合で回収する。
		return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, CodeUpstreamFailure, "payment provider unavailable")
	}

	//セッションIDを書き戻す
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Orders().SetSessionID(ctx, orderID, session.ID)
	})
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}

	return CheckoutOutput{
		SessionID:   session.ID,
		OrderID:     orderID,
		CheckoutURL: session.URL,
	}, nil
}
