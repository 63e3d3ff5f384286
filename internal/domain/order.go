package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderID is the store order identifier as received from a webhook. The
// platform sends it either as a JSON number or as a string; both decode to
// the same canonical decimal string.
type OrderID string

var ErrInvalidOrderID = errors.New("order id must be a non-negative integer")

func (id *OrderID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*id = ""
			return nil
		}
	}

	parsed, err := ParseOrderID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseOrderID normalizes s to its canonical form ("007" becomes "7").
// Signs, fractions and non-digits are rejected.
func ParseOrderID(s string) (OrderID, error) {
	if s == "" || strings.ContainsAny(s, "+-") {
		return "", fmt.Errorf("%w, got %q", ErrInvalidOrderID, s)
	}
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return "", fmt.Errorf("%w, got %q", ErrInvalidOrderID, s)
	}
	return OrderID(strconv.FormatUint(n, 10)), nil
}

// IsZero reports whether the id is missing. Zero is never a valid order.
func (id OrderID) IsZero() bool {
	return id == "" || id == "0"
}

func (id OrderID) String() string {
	return string(id)
}

type Order struct {
	ID           int64
	CustomerID   int64
	Status       string
	CurrencyCode string
	Total        decimal.Decimal
	DateCreated  string
	Coupons      []Coupon
	Fees         []Fee
}

// HasCustomer is false for guest checkouts, where the store reports
// customer id 0.
func (o Order) HasCustomer() bool {
	return o.CustomerID > 0
}

type LineItem struct {
	ID        int64
	ProductID int64
	Name      string
	SKU       string
	Quantity  int
	Price     decimal.Decimal
}

type Coupon struct {
	Code     string
	Discount decimal.Decimal
}

type Fee struct {
	Name   string
	Amount decimal.Decimal
}
