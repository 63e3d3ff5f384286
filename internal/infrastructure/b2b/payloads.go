package b2b

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"orderenricher/internal/domain"
)

type pagination struct {
	TotalCount int `json:"totalCount"`
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
}

type listResponse struct {
	Code int              `json:"code"`
	Data []companyPayload `json:"data"`
	Meta struct {
		Pagination *pagination `json:"pagination"`
	} `json:"meta"`
}

type detailResponse struct {
	Code int            `json:"code"`
	Data companyPayload `json:"data"`
}

// companyPayload accepts both the documented v3 keys (companyId,
// companyName) and the short ones (id, name).
type companyPayload struct {
	ID          *int64              `json:"id"`
	CompanyID   *int64              `json:"companyId"`
	Name        string              `json:"name"`
	CompanyName string              `json:"companyName"`
	ExtraFields []extraFieldPayload `json:"extraFields"`
}

func (p companyPayload) toDomain() (domain.Company, error) {
	c := domain.Company{Name: p.CompanyName}
	if c.Name == "" {
		c.Name = p.Name
	}

	switch {
	case p.CompanyID != nil:
		c.ID = *p.CompanyID
	case p.ID != nil:
		c.ID = *p.ID
	default:
		return domain.Company{}, fmt.Errorf("company %q has no id", c.Name)
	}

	c.ExtraFields = make([]domain.ExtraField, 0, len(p.ExtraFields))
	for _, f := range p.ExtraFields {
		c.ExtraFields = append(c.ExtraFields, domain.ExtraField{Name: f.Name, Value: f.Value})
	}
	return c, nil
}

type extraFieldPayload struct {
	Name  string
	Value string
}

// UnmarshalJSON reads {name|fieldName, value|fieldValue}. Values must be a
// string, a number or null; anything else is rejected.
func (f *extraFieldPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       *string         `json:"name"`
		FieldName  *string         `json:"fieldName"`
		Value      json.RawMessage `json:"value"`
		FieldValue json.RawMessage `json:"fieldValue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("extra field: %w", err)
	}

	switch {
	case raw.FieldName != nil:
		f.Name = *raw.FieldName
	case raw.Name != nil:
		f.Name = *raw.Name
	default:
		return fmt.Errorf("extra field has no name: %s", data)
	}

	value := raw.FieldValue
	if isNullValue(value) {
		value = raw.Value
	}
	v, err := scalarString(value)
	if err != nil {
		return fmt.Errorf("extra field %q: %w", f.Name, err)
	}
	f.Value = v
	return nil
}

func isNullValue(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if isNullValue(raw) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[', 't', 'f':
		return "", fmt.Errorf("value must be a string or a number, got %s", raw)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", err
	}
	return n.String(), nil
}
