package dto

import (
	"time"

	"orderenricher/internal/domain"
)

func NewEnrichedOrderResponse(traceID string, e *domain.EnrichedOrder) EnrichedOrderResponse {
	resp := EnrichedOrderResponse{
		Success:     true,
		TraceID:     traceID,
		Order:       newOrderDTO(e.Order),
		Products:    make([]LineItemDTO, 0, len(e.Products)),
		CompanyID:   e.Company.CompanyID,
		CompanyName: e.Company.CompanyName,
		E8CompanyID: e.Company.ExtraFieldValue,
		Warnings:    e.Warnings,
		Timestamp:   time.Now().UTC(),
	}

	for _, p := range e.Products {
		resp.Products = append(resp.Products, LineItemDTO{
			ID:        p.ID,
			ProductID: p.ProductID,
			Name:      p.Name,
			SKU:       p.SKU,
			Quantity:  p.Quantity,
			Price:     p.Price,
		})
	}

	if e.Customer != nil {
		c := &CustomerDTO{
			ID:        e.Customer.ID,
			Email:     e.Customer.Email,
			FirstName: e.Customer.FirstName,
			LastName:  e.Customer.LastName,
		}
		if e.Customer.HasCompany() {
			company := e.Customer.Company
			c.Company = &company
		}
		resp.Customer = c
	}

	if len(e.SubResources) > 0 {
		resp.SubResources = make(map[string]SubResourceDTO, len(e.SubResources))
		for name, sub := range e.SubResources {
			resp.SubResources[name] = SubResourceDTO{Data: sub.Data, Error: sub.Err}
		}
	}

	return resp
}

func newOrderDTO(o domain.Order) OrderDTO {
	dto := OrderDTO{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		Status:       o.Status,
		CurrencyCode: o.CurrencyCode,
		Total:        o.Total,
		DateCreated:  o.DateCreated,
	}
	for _, c := range o.Coupons {
		dto.Coupons = append(dto.Coupons, CouponDTO{Code: c.Code, Discount: c.Discount})
	}
	for _, f := range o.Fees {
		dto.Fees = append(dto.Fees, FeeDTO{Name: f.Name, Amount: f.Amount})
	}
	return dto
}

func NewWebhookEventDTO(e domain.WebhookEvent) WebhookEventDTO {
	return WebhookEventDTO{
		ID:          e.ID,
		TraceID:     e.TraceID,
		OrderID:     e.OrderID,
		Status:      e.Status,
		CompanyID:   e.CompanyID,
		E8CompanyID: e.E8CompanyID,
		ErrorCode:   e.ErrorCode,
		CreatedAt:   e.CreatedAt,
	}
}
