package domain

import "strings"

type Customer struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Company   string
}

func (c Customer) HasCompany() bool {
	return strings.TrimSpace(c.Company) != ""
}
