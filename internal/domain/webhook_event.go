package domain

import "time"

type WebhookEvent struct {
	ID          int64
	TraceID     string
	OrderID     string
	Status      string
	CompanyID   *int64
	E8CompanyID *string
	ErrorCode   *string
	CreatedAt   time.Time
}

const (
	WebhookEventSucceeded = "SUCCEEDED"
	WebhookEventFailed    = "FAILED"
	WebhookEventRejected  = "REJECTED"
)
