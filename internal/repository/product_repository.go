package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

// 商品カタログの取得だけを約束。
// 在庫の書き込みはInventoryRepositoryが担当する。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//公開中（is_active=true）の商品だけを返す
	FindActiveByID(ctx context.Context, id int64) (model.Product, error)

	//(size, design) の完全一致でバリアントを1件取得
	FindVariant(ctx context.Context, productID int64, size string, design string) (model.Variant, error)
}
