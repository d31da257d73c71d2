package unit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func newAdminOrderUsecase(w *world) *usecase.AdminOrderUsecase {
	return usecase.NewAdminOrderUsecase(w.tx, &fixedClock{t: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)})
}

func TestAdminOrderUsecase_List_FilterByStatus(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newAdminOrderUsecase(w)

	_, _ = w.orders.Create(context.Background(), model.Order{
		UserID: 8,
		Status: model.OrderStatusShipped,
	})

	outs, err := uc.List(context.Background(), repo.AdminOrderListFilter{
		Page: 1, Limit: 20, Status: "SHIPPED",
	})
	assert.NoError(t, err)
	if assert.Len(t, outs, 1) {
		assert.Equal(t, "SHIPPED", outs[0].Status)
	}
}

func TestAdminOrderUsecase_List_InvalidPaging(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newAdminOrderUsecase(w)

	_, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assertErrContains(t, err, "invalid page")

	_, err = uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 101})
	assertErrContains(t, err, "invalid limit")
}

func TestAdminOrderUsecase_UpdateStatus_ShippedWithTracking(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newAdminOrderUsecase(w)
	w.orders.orders[1].Status = model.OrderStatusProcessing

	err := uc.UpdateStatus(context.Background(), 100, 1, usecase.AdminUpdateOrderStatusInput{
		Status:         "SHIPPED",
		TrackingNumber: "TRK-0001",
		Note:           "shipped via yamato",
	})
	assert.NoError(t, err)

	o := w.orders.orders[1]
	assert.Equal(t, model.OrderStatusShipped, o.Status)
	assert.Equal(t, "TRK-0001", o.TrackingNumber)

	if assert.Len(t, w.orders.history, 1) {
		assert.Equal(t, model.OrderStatusShipped, w.orders.history[0].Status)
		assert.Equal(t, "shipped via yamato", w.orders.history[0].Note)
	}

	//監査ログにbefore/afterが残る
	if assert.Len(t, w.audits.logs, 1) {
		log := w.audits.logs[0]
		assert.Equal(t, int64(100), log.ActorUserID)
		assert.Equal(t, model.AuditActionUpdateOrderStatus, log.Action)
		assert.Equal(t, model.AuditResourceOrder, log.ResourceType)
		assert.Equal(t, int64(1), log.ResourceID)
		assert.Equal(t, `{"status":"PROCESSING"}`, log.BeforeJSON)
		assert.Equal(t, `{"status":"SHIPPED"}`, log.AfterJSON)
	}
}

// 管理者キャンセルは引き当て済み在庫を戻す
func TestAdminOrderUsecase_UpdateStatus_CancelRestocks(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newAdminOrderUsecase(w)
	w.orders.orders[1].Status = model.OrderStatusConfirmed
	w.orders.orders[1].StockCommitted = true
	w.products.variants[10].Stock = 3
	w.inventory.adjustments = append(w.inventory.adjustments, model.InventoryAdjustment{
		OrderID: 1, ProductID: 1, VariantID: 10, Delta: -2, Reason: "stock commit",
	})

	err := uc.UpdateStatus(context.Background(), 100, 1, usecase.AdminUpdateOrderStatusInput{
		Status: "CANCELED",
	})
	assert.NoError(t, err)

	assert.Equal(t, model.OrderStatusCanceled, w.orders.orders[1].Status)
	assert.Equal(t, int64(5), w.products.variants[10].Stock)
	if assert.Len(t, w.inventory.adjustments, 2) {
		assert.Equal(t, "canceled by admin", w.inventory.adjustments[1].Reason)
	}
}

// 引き当て前のキャンセルは在庫を触らない
func TestAdminOrderUsecase_UpdateStatus_CancelWithoutCommitNoRestock(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newAdminOrderUsecase(w)

	err := uc.UpdateStatus(context.Background(), 100, 1, usecase.AdminUpdateOrderStatusInput{
		Status: "CANCELED",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), w.products.variants[10].Stock)
	assert.Equal(t, 0, w.inventory.increments)
}

func TestAdminOrderUsecase_UpdateStatus_RejectsInvalidStatus(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newAdminOrderUsecase(w)

	for _, s := range []string{"PENDING", "UNKNOWN", ""} {
		err := uc.UpdateStatus(context.Background(), 100, 1, usecase.AdminUpdateOrderStatusInput{Status: s})
		he, ok := usecase.AsHTTPError(err)
		assert.True(t, ok, "status %q", s)
		assert.Equal(t, http.StatusBadRequest, he.Status)
		assert.Equal(t, usecase.CodeValidation, he.Code)
	}
	assert.Len(t, w.orders.history, 0)
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	w := newWorldWithOrder(t)
	uc := newAdminOrderUsecase(w)

	err := uc.UpdateStatus(context.Background(), 100, 999, usecase.AdminUpdateOrderStatusInput{Status: "SHIPPED"})
	assertErrContains(t, err, "not found")
}
