package unit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func newOrderUsecase(w *world) *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(w.tx, &fixedClock{t: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)})
}

func TestOrderUsecase_GetMyOrderDetail(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newOrderUsecase(w)

	out, err := uc.GetMyOrderDetail(context.Background(), 7, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "PENDING", out.Status)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "Tee", out.Items[0].Title)
}

// 他人の注文は404として扱う（存在を漏らさない）
func TestOrderUsecase_GetMyOrderDetail_ForeignOrderIsNotFound(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newOrderUsecase(w)

	_, err := uc.GetMyOrderDetail(context.Background(), 99, 1)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
	assert.Equal(t, usecase.CodeNotFound, he.Code)
}

func TestOrderUsecase_Cancel_PendingOrder(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newOrderUsecase(w)

	out, err := uc.Cancel(context.Background(), 7, 1)
	assert.NoError(t, err)
	assert.Equal(t, "CANCELED", out.Status)

	assert.Equal(t, model.OrderStatusCanceled, w.orders.orders[1].Status)
	if assert.Len(t, w.orders.history, 1) {
		assert.Equal(t, model.OrderStatusCanceled, w.orders.history[0].Status)
		assert.Equal(t, "canceled by customer", w.orders.history[0].Note)
	}
}

// 引き当て済みの注文をキャンセルしたら在庫が戻る
func TestOrderUsecase_Cancel_RestocksCommittedStock(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newOrderUsecase(w)

	//webhookで引き当て済みの状態を作る（調整履歴付き）
	w.orders.orders[1].Status = model.OrderStatusConfirmed
	w.orders.orders[1].StockCommitted = true
	w.products.variants[10].Stock = 3
	w.inventory.adjustments = append(w.inventory.adjustments, model.InventoryAdjustment{
		OrderID: 1, ProductID: 1, VariantID: 10, Delta: -2, Reason: "stock commit",
	})

	_, err := uc.Cancel(context.Background(), 7, 1)
	assert.NoError(t, err)

	assert.Equal(t, int64(5), w.products.variants[10].Stock)
	assert.False(t, w.orders.orders[1].StockCommitted)
	if assert.Len(t, w.inventory.adjustments, 2) {
		assert.Equal(t, int64(2), w.inventory.adjustments[1].Delta)
		assert.Equal(t, "canceled by customer", w.inventory.adjustments[1].Reason)
	}
}

func TestOrderUsecase_Cancel_ShippedOrderRejected(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newOrderUsecase(w)
	w.orders.orders[1].Status = model.OrderStatusShipped

	_, err := uc.Cancel(context.Background(), 7, 1)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, usecase.CodeInvalidTransition, he.Code)
	assert.Equal(t, "SHIPPED", he.Details["status"])

	//何も変わっていない
	assert.Equal(t, model.OrderStatusShipped, w.orders.orders[1].Status)
	assert.Len(t, w.orders.history, 0)
}

func TestOrderUsecase_Cancel_NotFound(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newOrderUsecase(w)

	_, err := uc.Cancel(context.Background(), 7, 999)
	assertErrContains(t, err, "not found")
}

func TestOrderUsecase_ListMyOrders_OnlyOwn(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newOrderUsecase(w)

	_, _ = w.orders.Create(context.Background(), model.Order{
		UserID: 99,
		Status: model.OrderStatusPending,
	})

	outs, err := uc.ListMyOrders(context.Background(), 7, 1, 20)
	assert.NoError(t, err)
	if assert.Len(t, outs, 1) {
		assert.Equal(t, int64(7), outs[0].UserID)
	}
}

func TestOrderUsecase_ListMyOrders_InvalidPaging(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newOrderUsecase(w)

	_, err := uc.ListMyOrders(context.Background(), 7, 0, 20)
	assertErrContains(t, err, "invalid page")

	_, err = uc.ListMyOrders(context.Background(), 7, 1, 101)
	assertErrContains(t, err, "invalid limit")
}

// 共通のシード: user 7 のPENDING注文（Tee×2、在庫5）をID=1で作る
func newWorldWithOrder(t *testing.T) *world {
	t.Helper()
	w := newWorld()
	orderID := seedPendingOrder(w)
	assert.Equal(t, int64(1), orderID)
	return w
}
