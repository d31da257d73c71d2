package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "storefront/internal/repository"
)

// CartUsecase はクライアントが送ってきたカートをサーバー側で再計算する。
// 価格・在庫は必ずCatalog Storeの現在値を使い、クライアントの値は信用しない。
// 検証は読み取り専用で、在庫は一切変更しない（確定はwebhook時）。
type CartUsecase struct {
	productRepo repo.ProductRepository
}

func NewCartUsecase(productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{productRepo: productRepo}
}

type CartLineInput struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Design    string `json:"design"`
	Quantity  int64  `json:"quantity"`
}

type ValidatedCartItem struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int64   `json:"quantity"`
	Size      string  `json:"size"`
	Design    string  `json:"design"`
}

type CartQuote struct {
	Items    []ValidatedCartItem `json:"items"`
	Subtotal float64             `json:"subtotal"`
	Tax      float64             `json:"tax"`
	Shipping float64             `json:"shipping"`
	Total    float64             `json:"total"`
}

// Validate は全明細を検証して正規の金額を返す。1件でも不正なら全体を失敗させる。
func (u *CartUsecase) Validate(ctx context.Context, lines []CartLineInput) (CartQuote, error) {
	if len(lines) == 0 {
		return CartQuote{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "cart is empty")
	}

	items := make([]ValidatedCartItem, 0, len(lines))
	var subtotal float64 = 0

	for _, line := range lines {
		if line.ProductID <= 0 {
			return CartQuote{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "invalid product_id")
		}
		if line.Quantity < 1 || line.Quantity > maxLineQuantity {
			return CartQuote{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "quantity must be between 1 and 10")
		}

		//商品を再取得（非公開・削除済みは不可）
		p, err := u.productRepo.FindActiveByID(ctx, line.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return CartQuote{}, NewHTTPErrorWithDetails(http.StatusBadRequest, CodeValidation,
				"product unavailable", map[string]interface{}{"product_id": line.ProductID})
		}
		if err != nil {
			return CartQuote{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		//(size, design) の完全一致でバリアント解決
		v, err := u.productRepo.FindVariant(ctx, line.ProductID, line.Size, line.Design)
		if errors.Is(err, repo.ErrNotFound) {
			return CartQuote{}, NewHTTPErrorWithDetails(http.StatusBadRequest, CodeValidation,
				"variant unavailable", map[string]interface{}{
					"product_id": line.ProductID,
					"size":       line.Size,
					"design":     line.Design,
				})
		}
		if err != nil {
			return CartQuote{}, NewHTTPError(http.StatusInternalServerError, CodeInternal, "db error")
		}

		//在庫チェック（残数を返す。在庫はここでは減らさない）
		if line.Quantity > v.Stock {
			return CartQuote{}, NewHTTPErrorWithDetails(http.StatusConflict, CodeInsufficientStock,
				"insufficient stock", map[string]interface{}{
					"product_id":      line.ProductID,
					"size":            line.Size,
					"design":          line.Design,
					"available_stock": v.Stock,
				})
		}

		items = append(items, ValidatedCartItem{
			ProductID: p.ID,
			Title:     p.Title,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Design:    line.Design,
		})

		subtotal += p.Price * float64(line.Quantity)
	}

	sub, tax, shipping, total := computeTotals(subtotal)

	return CartQuote{
		Items:    items,
		Subtotal: sub,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}, nil
}
