package bigcommerce

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"orderenricher/internal/domain"
	apperrors "orderenricher/internal/errors"
)

type orderPayload struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id"`
	Status       string          `json:"status"`
	CurrencyCode string          `json:"currency_code"`
	TotalIncTax  decimal.Decimal `json:"total_inc_tax"`
	DateCreated  string          `json:"date_created"`
}

var errMissingID = errors.New("response has no id")

// toDomain rejects payloads without an id; a null, empty or 204 body decodes
// to exactly that.
func (p orderPayload) toDomain() (domain.Order, error) {
	if p.ID <= 0 {
		return domain.Order{}, apperrors.NewMalformedResponseError(ResourceOrder, errMissingID)
	}
	return domain.Order{
		ID:           p.ID,
		CustomerID:   p.CustomerID,
		Status:       p.Status,
		CurrencyCode: p.CurrencyCode,
		Total:        p.TotalIncTax,
		DateCreated:  p.DateCreated,
	}, nil
}

type lineItemPayload struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	BasePrice decimal.Decimal `json:"base_price"`
}

func (p lineItemPayload) toDomain() domain.LineItem {
	return domain.LineItem{
		ID:        p.ID,
		ProductID: p.ProductID,
		Name:      p.Name,
		SKU:       p.SKU,
		Quantity:  p.Quantity,
		Price:     p.BasePrice,
	}
}

type customerPayload struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Company   *string `json:"company"`
}

func (p customerPayload) toDomain() (domain.Customer, error) {
	if p.ID <= 0 {
		return domain.Customer{}, apperrors.NewMalformedResponseError(ResourceCustomer, errMissingID)
	}
	c := domain.Customer{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	return c, nil
}

type couponPayload struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

type feePayload struct {
	Name        string              `json:"name"`
	DisplayName string              `json:"display_name"`
	Amount      decimal.NullDecimal `json:"amount"`
	CostIncTax  decimal.NullDecimal `json:"cost_inc_tax"`
}

// DecodeCoupons parses the payload returned for the coupons sub-resource.
func DecodeCoupons(raw json.RawMessage) ([]domain.Coupon, error) {
	var payload []couponPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.NewMalformedResponseError("coupons", err)
	}

	coupons := make([]domain.Coupon, 0, len(payload))
	for _, p := range payload {
		coupons = append(coupons, domain.Coupon{Code: p.Code, Discount: p.Discount})
	}
	return coupons, nil
}

// DecodeFees parses the payload returned for the fees sub-resource.
func DecodeFees(raw json.RawMessage) ([]domain.Fee, error) {
	var payload []feePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.NewMalformedResponseError("fees", err)
	}

	fees := make([]domain.Fee, 0, len(payload))
	for _, p := range payload {
		fee := domain.Fee{Name: p.DisplayName}
		if fee.Name == "" {
			fee.Name = p.Name
		}
		switch {
		case p.CostIncTax.Valid:
			fee.Amount = p.CostIncTax.Decimal
		case p.Amount.Valid:
			fee.Amount = p.Amount.Decimal
		}
		fees = append(fees, fee)
	}
	return fees, nil
}
