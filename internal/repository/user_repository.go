package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// ユーザーの取得を約束（発行系は外部コラボレータ）。
type UserRepository interface {
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
}
