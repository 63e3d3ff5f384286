package domain

import "encoding/json"

// SubResource holds either the raw payload of an optional order
// sub-resource or the error that prevented fetching it.
type SubResource struct {
	Data json.RawMessage
	Err  string
}

func (s SubResource) Failed() bool {
	return s.Err != ""
}

type EnrichedOrder struct {
	Order        Order
	Products     []LineItem
	Customer     *Customer
	Company      CompanyResolution
	SubResources map[string]SubResource
	Warnings     []string
}

func (e *EnrichedOrder) AddWarning(msg string) {
	e.Warnings = append(e.Warnings, msg)
}
