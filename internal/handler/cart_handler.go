package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cart のHTTP。カートは永続化しない（クライアント提示の明細を検証するだけ）。
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type ValidateCartRequest struct {
	Items []usecase.CartLineInput `json:"items"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/cart/validate", h.validate)
}

func (h *CartHandler) validate(c echo.Context) error {
	var req ValidateCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Code: usecase.CodeValidation})
	}

	out, err := h.uc.Validate(c.Request().Context(), req.Items)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
