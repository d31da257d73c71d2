package unit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/handler"
	"storefront/internal/payment"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用
// =====================

type webhookOKResponse struct {
	Received bool `json:"received"`
}

type webhookErrResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func postWebhook(t *testing.T, h *handler.WebhookHandler, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(string(body)))
	req.Header.Set(payment.SignatureHeader, sig)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler_ValidEvent(t *testing.T) {
	w, uc := newWebhookWorld()
	orderID := seedPendingOrder(w)
	h := handler.NewWebhookHandler(uc)

	body, sig := sessionCompletedPayload(orderID)
	rec := postWebhook(t, h, body, sig)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp webhookOKResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Received)
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	w, uc := newWebhookWorld()
	orderID := seedPendingOrder(w)
	h := handler.NewWebhookHandler(uc)

	body, _ := sessionCompletedPayload(orderID)
	rec := postWebhook(t, h, body, "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp webhookErrResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_SIGNATURE", resp.Code)

	//署名が通るまで何も起きない
	assert.Equal(t, 0, w.inventory.decrements)
}

func TestWebhookHandler_MissingSignatureHeader(t *testing.T) {
	w, uc := newWebhookWorld()
	orderID := seedPendingOrder(w)
	h := handler.NewWebhookHandler(uc)

	body, _ := sessionCompletedPayload(orderID)
	rec := postWebhook(t, h, body, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, w.inventory.decrements)
}
