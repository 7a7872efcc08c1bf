// Package counterparty provides suppliers and customers: the parties that the
// procurement and distribution ledgers owe money to or are owed money by.
package counterparty

import (
	"context"
	"strings"
	"unicode/utf8"

	"khaata/internal/core/apperror"
	"khaata/internal/core/entity"
	"khaata/internal/core/id"
)

// Kind separates suppliers from customers.
type Kind string

const (
	KindSupplier Kind = "supplier"
	KindCustomer Kind = "customer"
)

// Counterparty is a supplier or a customer.
type Counterparty struct {
	entity.BaseCatalog

	Kind    Kind   `db:"kind" json:"kind"`
	Name    string `db:"name" json:"name"`
	Phone   string `db:"phone" json:"phone"`
	Company string `db:"company" json:"company,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
}

// NewSupplier creates a supplier with a generated id.
func NewSupplier(name, phone, company string) *Counterparty {
	return &Counterparty{
		BaseCatalog: entity.NewBaseCatalog(),
		Kind:        KindSupplier,
		Name:        strings.TrimSpace(name),
		Phone:       strings.TrimSpace(phone),
		Company:     strings.TrimSpace(company),
	}
}

// NewCustomer creates a customer with a generated id.
func NewCustomer(name, phone, address string) *Counterparty {
	return &Counterparty{
		BaseCatalog: entity.NewBaseCatalog(),
		Kind:        KindCustomer,
		Name:        strings.TrimSpace(name),
		Phone:       strings.TrimSpace(phone),
		Address:     strings.TrimSpace(address),
	}
}

// Validate implements entity.Validatable.
func (c *Counterparty) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Phone) == "" {
		return apperror.NewValidation("phone is required").WithDetail("field", "phone")
	}

	switch c.Kind {
	case KindSupplier:
		if !runesBetween(c.Name, 4, 35) {
			return apperror.NewValidation("name must be 4 to 35 characters").WithDetail("field", "name")
		}
		if !runesBetween(c.Company, 4, 35) {
			return apperror.NewValidation("company must be 4 to 35 characters").WithDetail("field", "company")
		}
	case KindCustomer:
		if !runesBetween(c.Name, 1, 50) {
			return apperror.NewValidation("name must be 1 to 50 characters").WithDetail("field", "name")
		}
	default:
		return apperror.NewValidation("unknown counterparty kind").WithDetail("field", "kind")
	}
	return nil
}

func runesBetween(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= lo && n <= hi
}

// Snapshot is the copy of a counterparty kept on a ledger record.
type Snapshot struct {
	ID      id.ID  `json:"id"`
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Company string `json:"company,omitempty"`
}

// Snapshot returns the immutable copy of c.
func (c *Counterparty) Snapshot() Snapshot {
	return Snapshot{
		ID:      c.ID,
		Kind:    c.Kind,
		Name:    c.Name,
		Phone:   c.Phone,
		Company: c.Company,
	}
}
