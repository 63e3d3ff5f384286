package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type EnrichedOrderResponse struct {
	Success      bool                      `json:"success"`
	TraceID      string                    `json:"traceId"`
	Order        OrderDTO                  `json:"order"`
	Products     []LineItemDTO             `json:"products"`
	Customer     *CustomerDTO              `json:"customer"`
	CompanyID    *int64                    `json:"companyId"`
	CompanyName  *string                   `json:"companyName,omitempty"`
	E8CompanyID  *string                   `json:"e8CompanyId"`
	SubResources map[string]SubResourceDTO `json:"subResources,omitempty"`
	Warnings     []string                  `json:"warnings,omitempty"`
	Timestamp    time.Time                 `json:"timestamp"`
}

type OrderDTO struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customerId"`
	Status       string          `json:"status"`
	CurrencyCode string          `json:"currencyCode"`
	Total        decimal.Decimal `json:"total"`
	DateCreated  string          `json:"dateCreated"`
	Coupons      []CouponDTO     `json:"coupons,omitempty"`
	Fees         []FeeDTO        `json:"fees,omitempty"`
}

type LineItemDTO struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CouponDTO struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

type FeeDTO struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type CustomerDTO struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Company   *string `json:"company"`
}

// SubResourceDTO carries either the upstream payload or an inline error.
type SubResourceDTO struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

type WebhookErrorResponse struct {
	Success        bool      `json:"success"`
	TraceID        string    `json:"traceId"`
	Status         int       `json:"status"`
	Code           string    `json:"code"`
	Message        string    `json:"message"`
	Resource       string    `json:"resource,omitempty"`
	UpstreamStatus int       `json:"upstreamStatus,omitempty"`
	OrderID        string    `json:"orderId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type WebhookEventDTO struct {
	ID          int64     `json:"id"`
	TraceID     string    `json:"traceId"`
	OrderID     string    `json:"orderId"`
	Status      string    `json:"status"`
	CompanyID   *int64    `json:"companyId"`
	E8CompanyID *string   `json:"e8CompanyId"`
	ErrorCode   *string   `json:"errorCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type WebhookEventsResponse struct {
	OrderID string            `json:"orderId"`
	Events  []WebhookEventDTO `json:"events"`
}
