package payment

import "encoding/json"

type EventType string

const (
	EventCheckoutSessionCompleted EventType = "checkout.session.completed"
	EventPaymentIntentSucceeded   EventType = "payment_intent.succeeded"
	EventPaymentIntentFailed      EventType = "payment_intent.payment_failed"
)

// プロバイダから届く非同期イベント。
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

// session / payment_intent の共通フィールドだけを読む。
type EventObject struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// 署名検証してからparseする。検証に失敗したらbodyは読まない。
func ParseEvent(payload []byte, sigHeader string, secret string) (Event, error) {
	if err := VerifySignature(payload, sigHeader, secret); err != nil {
		return Event{}, err
	}

	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}
