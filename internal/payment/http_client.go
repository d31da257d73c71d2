package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// REST APIで決済プロバイダに接続するクライアント。
// セッション作成はform-encodedのPOST、応答はJSON。
type HTTPClient struct {
	apiBase string
	apiKey  string
	http    *http.Client
}

func NewHTTPClient(apiBase string, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		apiBase: strings.TrimRight(apiBase, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)

	for i, li := range p.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[name]", li.Name)
		//金額は最小通貨単位で送る
		form.Set(prefix+"[unit_amount]", strconv.FormatInt(int64(li.UnitAmount*100+0.5), 10))
		form.Set(prefix+"[quantity]", strconv.FormatInt(li.Quantity, 10))
	}

	for k, v := range p.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if p.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", p.IdempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Session{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Session{}, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, string(body))
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}
	if s.ID == "" {
		return Session{}, fmt.Errorf("payment provider returned empty session id")
	}
	return s, nil
}
