package unit

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
)

// 管理者操作が閲覧APIから読み出せる
func TestAuditLogUsecase_List_AfterAdminUpdate(t *testing.T) {
	w := newWorldWithOrder(t)
	adminUC := newAdminOrderUsecase(w)
	auditUC := usecase.NewAuditLogUsecase(w.audits)

	err := adminUC.UpdateStatus(context.Background(), 100, 1, usecase.AdminUpdateOrderStatusInput{
		Status: "PROCESSING",
	})
	assert.NoError(t, err)

	logs, err := auditUC.List(context.Background(), usecase.ListAuditLogsInput{
		Action: string(model.AuditActionUpdateOrderStatus),
	})
	assert.NoError(t, err)
	if assert.Len(t, logs, 1) {
		assert.Equal(t, int64(100), logs[0].ActorUserID)
		assert.Equal(t, int64(1), logs[0].ResourceID)
		assert.Equal(t, model.AuditResourceOrder, logs[0].ResourceType)
	}
}

func TestAuditLogUsecase_List_FilterByActor(t *testing.T) {
	w := newWorldWithOrder(t)
	auditUC := usecase.NewAuditLogUsecase(w.audits)

	now := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	w.audits.logs = append(w.audits.logs,
		model.AuditLog{ActorUserID: 100, Action: model.AuditActionUpdateOrderStatus, ResourceType: model.AuditResourceOrder, ResourceID: 1, CreatedAt: now},
		model.AuditLog{ActorUserID: 200, Action: model.AuditActionCancelOrder, ResourceType: model.AuditResourceOrder, ResourceID: 2, CreatedAt: now},
	)

	actor := int64(200)
	logs, err := auditUC.List(context.Background(), usecase.ListAuditLogsInput{ActorUserID: &actor})
	assert.NoError(t, err)
	if assert.Len(t, logs, 1) {
		assert.Equal(t, int64(200), logs[0].ActorUserID)
	}
}

func TestAuditLogUsecase_List_InvalidLimit(t *testing.T) {
	w := newWorldWithOrder(t)
	auditUC := usecase.NewAuditLogUsecase(w.audits)

	_, err := auditUC.List(context.Background(), usecase.ListAuditLogsInput{Limit: 101})
	assertErrContains(t, err, "invalid limit")

	_, err = auditUC.List(context.Background(), usecase.ListAuditLogsInput{Offset: -1})
	assertErrContains(t, err, "invalid offset")
}
