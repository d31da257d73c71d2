package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/payment"
	repo "storefront/internal/repository"
)

// WebhookUsecase は決済プロバイダの非同期イベントを注文・在庫に反映する。
// 配送はat-least-onceかつ順序保証なし。同じイベントが再送されても
// 同じ最終状態に収束するように書く。
type WebhookUsecase struct {
	tx     repo.TransactionManager
	secret string
	clock  Clock
	log    *slog.Logger
}

func NewWebhookUsecase(tx repo.TransactionManager, secret string, clock Clock, log *slog.Logger) *WebhookUsecase {
	return &WebhookUsecase{tx: tx, secret: secret, clock: clock, log: log}
}

// HandleEvent は生のpayloadと署名ヘッダを受け取る。
// 署名検証が通るまで一切状態を変えない。未対応のイベント種別はno-op。
func (u *WebhookUsecase) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	evt, err := payment.ParseEvent(payload, sigHeader, u.secret)
	if errors.Is(err, payment.ErrInvalidSignature) {
		return NewHTTPError(http.StatusBadRequest, CodeInvalidSignature, "invalid signature")
	}
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid event payload")
	}

	switch evt.Type {
	case payment.EventCheckoutSessionCompleted:
		return u.handleSessionCompleted(ctx, evt)
	case payment.EventPaymentIntentSucceeded:
		return u.handleIntentSucceeded(ctx, evt)
	case payment.EventPaymentIntentFailed:
		return u.handleIntentFailed(ctx, evt)
	default:
		//未対応のイベントは受領だけして無視
		return nil
	}
}

// チェックアウト完了: 支払い確定＋注文CONFIRMED＋在庫引き当て。
// 在庫減算はstock_committedのCASで注文ごとに1回だけ行う。
func (u *WebhookUsecase) handleSessionCompleted(ctx context.Context, evt payment.Event) error {
	orderID, ok := orderIDFromMetadata(evt.Data.Object.Metadata)
	if !ok {
		u.log.Warn("webhook without order_id metadata", "event_id", evt.ID, "type", string(evt.Type))
		return nil
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			//未知の注文は致命ではない。再送か手動照合で回収する。
			u.log.Warn("webhook for unknown order", "event_id", evt.ID, "order_id", orderID)
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		paidAt := u.clock.Now()
		if err := r.Orders().UpdatePayment(ctx, orderID, model.PaymentStatusPaid, evt.Data.Object.PaymentIntent, &paidAt); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		//後続のステータス（SHIPPED等）を巻き戻さない
		if o.Status == model.OrderStatusPending {
			if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusConfirmed); err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}
		}

		//再送ガード。既に引き当て済みなら在庫は触らない。
		committed, err := r.Orders().MarkStockCommitted(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
		if !committed {
			return nil
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		//在庫不足の明細は注文確定を妨げない。代わりにoversoldの印を付けて
		//運用で確認できるようにする。
		for _, it := range items {
			v, err := r.Products().FindVariant(ctx, it.ProductID, it.Size, it.Design)
			if errors.Is(err, repo.ErrNotFound) {
				u.log.Warn("variant missing at stock commit",
					"order_id", orderID, "product_id", it.ProductID, "size", it.Size, "design", it.Design)
				if err := r.Orders().SetOversold(ctx, orderID); err != nil {
					return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
				}
				continue
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}

			ok, err := r.Inventory().DecrementStockIfEnough(ctx, v.ID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}
			if !ok {
				u.log.Warn("insufficient stock at stock commit",
					"order_id", orderID, "variant_id", v.ID, "requested", it.Quantity, "available", v.Stock)
				if err := r.Orders().SetOversold(ctx, orderID); err != nil {
					return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
				}
				continue
			}

			//実際に減らした分だけを記録する。在庫戻しはこの記録を根拠にする。
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				OrderID:   orderID,
				ProductID: it.ProductID,
				VariantID: v.ID,
				Delta:     -it.Quantity,
				Reason:    "stock commit",
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}
		}

		return nil
	})
}

// 決済成功: payment_intent参照で注文を引き、支払い確定。
// ステータスはPENDINGのときだけCONFIRMEDへ昇格する（降格しない）。
func (u *WebhookUsecase) handleIntentSucceeded(ctx context.Context, evt payment.Event) error {
	intentID := evt.Data.Object.ID
	if intentID == "" {
		return nil
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByPaymentIntentID(ctx, intentID)
		if errors.Is(err, repo.ErrNotFound) {
			u.log.Warn("payment_intent.succeeded for unknown order", "event_id", evt.ID, "intent_id", intentID)
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		paidAt := u.clock.Now()
		if err := r.Orders().UpdatePayment(ctx, o.ID, model.PaymentStatusPaid, intentID, &paidAt); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		if o.Status == model.OrderStatusPending {
			if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed); err != nil {
				return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
			}
		}
		return nil
	})
}

// 決済失敗: 支払いFAILED、注文は現ステータスに関係なくCANCELED。
// 在庫を引き当て済みならCASで戻す（再送されても二重には戻さない）。
func (u *WebhookUsecase) handleIntentFailed(ctx context.Context, evt payment.Event) error {
	intentID := evt.Data.Object.ID
	if intentID == "" {
		return nil
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByPaymentIntentID(ctx, intentID)
		if errors.Is(err, repo.ErrNotFound) {
			u.log.Warn("payment_intent.payment_failed for unknown order", "event_id", evt.ID, "intent_id", intentID)
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		if err := r.Orders().UpdatePayment(ctx, o.ID, model.PaymentStatusFailed, intentID, nil); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusCanceled); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		return restockOrder(ctx, r, o.ID, 0, "payment failed")
	})
}

// 引き当て済みの在庫を戻す共通処理。CASが立っていなければ何もしない。
// 戻す量は注文明細ではなく調整履歴から算出する。引き当て時に減らせなかった
// 明細（oversold）は記録がないので、存在しない在庫を作り出さない。
func restockOrder(ctx context.Context, r repo.TxRepos, orderID int64, actorUserID int64, reason string) error {
	cleared, err := r.Orders().ClearStockCommitted(ctx, orderID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}
	if !cleared {
		return nil
	}

	adjs, err := r.Inventory().ListAdjustmentsByOrderID(ctx, orderID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
	}

	//バリアントごとの「まだ戻していない引き当て量」を集計する
	type committed struct {
		productID int64
		qty       int64
	}
	taken := map[int64]*committed{}
	variantIDs := []int64{}
	for _, a := range adjs {
		c, ok := taken[a.VariantID]
		if !ok {
			c = &committed{productID: a.ProductID}
			taken[a.VariantID] = c
			variantIDs = append(variantIDs, a.VariantID)
		}
		c.qty -= a.Delta //引き当ては負のDeltaで入っている
	}

	for _, vid := range variantIDs {
		c := taken[vid]
		if c.qty <= 0 {
			continue
		}
		if err := r.Inventory().IncreaseStock(ctx, vid, c.qty); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			OrderID:     orderID,
			ProductID:   c.productID,
			VariantID:   vid,
			ActorUserID: actorUserID,
			Delta:       c.qty,
			Reason:      reason,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}
	}
	return nil
}

func orderIDFromMetadata(md map[string]string) (int64, bool) {
	raw, ok := md["order_id"]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
