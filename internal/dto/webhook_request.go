package dto

import "orderenricher/internal/domain"

// WebhookPayload is the platform's webhook envelope.
type WebhookPayload struct {
	Scope    string       `json:"scope"`
	Producer string       `json:"producer"`
	Data     *WebhookData `json:"data"`
}

type WebhookData struct {
	Type string         `json:"type"`
	ID   domain.OrderID `json:"id"`
}

// OrderID returns the order referenced by the envelope, or "" when absent.
func (p WebhookPayload) OrderID() domain.OrderID {
	if p.Data == nil {
		return ""
	}
	return p.Data.ID
}

// TestWebhookPayload is accepted instead of the envelope when the request
// carries ?test=true.
type TestWebhookPayload struct {
	OrderID domain.OrderID `json:"orderId"`
}
