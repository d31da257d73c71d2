package handler

import (
	"io"
	"net/http"

	"storefront/internal/payment"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済プロバイダからのwebhook受け口。認証はJWTではなく署名検証。
type WebhookHandler struct {
	uc *usecase.WebhookUsecase
}

func NewWebhookHandler(uc *usecase.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{uc: uc}
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/payment", h.handle)
}

func (h *WebhookHandler) handle(c echo.Context) error {
	//署名は生のbodyに対して検証するので、bindせずに読む
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Code: usecase.CodeValidation})
	}

	sig := c.Request().Header.Get(payment.SignatureHeader)

	if err := h.uc.HandleEvent(c.Request().Context(), body, sig); err != nil {
		if he, ok := usecase.AsHTTPError(err); ok && he.Status < 500 {
			return c.JSON(he.Status, ErrorResponse{Error: he.Message, Code: he.Code})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: usecase.CodeInternal})
	}

	return c.JSON(http.StatusOK, WebhookResponse{Received: true})
}
