package domain

import "strings"

// DefaultExtraFieldName is the B2B extra field holding the ERP company id.
// Upstream data has been seen spelled "E8 Company ID" and "E8 COMPANY ID";
// names are compared after NormalizeFieldName.
const DefaultExtraFieldName = "E8 Company ID"

type ExtraField struct {
	Name  string
	Value string
}

type Company struct {
	ID          int64
	Name        string
	ExtraFields []ExtraField
}

// NormalizeFieldName is the key used when comparing extra field names.
func NormalizeFieldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ExtraFieldMap indexes extra fields by normalized name. The first field in
// list order wins when names collide.
func (c Company) ExtraFieldMap() map[string]string {
	fields := make(map[string]string, len(c.ExtraFields))
	for _, f := range c.ExtraFields {
		key := NormalizeFieldName(f.Name)
		if _, ok := fields[key]; ok {
			continue
		}
		fields[key] = f.Value
	}
	return fields
}

// ExtraFieldValue returns the value of the named field. Empty values are
// reported as absent.
func (c Company) ExtraFieldValue(name string) (string, bool) {
	value, ok := c.ExtraFieldMap()[NormalizeFieldName(name)]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// MatchesName compares company names case-insensitively.
func (c Company) MatchesName(name string) bool {
	return strings.EqualFold(c.Name, name)
}

// FindCompanyByName returns the first company in list order whose name
// matches.
func FindCompanyByName(companies []Company, name string) (*Company, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	for i := range companies {
		if companies[i].MatchesName(name) {
			return &companies[i], true
		}
	}
	return nil, false
}

// CompanyResolution is the outcome of matching a customer to a B2B company.
// All fields are nil when no company could be matched.
type CompanyResolution struct {
	CompanyID       *int64
	CompanyName     *string
	ExtraFieldValue *string
}

func (r CompanyResolution) Matched() bool {
	return r.CompanyID != nil
}
