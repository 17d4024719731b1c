//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxCompanyNameLen = 255

// BankAccountType is the type of a payout bank account.
type BankAccountType string

const (
	BankAccountTypeChecking BankAccountType = "checking"
	BankAccountTypeSavings  BankAccountType = "savings"
)

// Valid reports whether the account type is supported.
func (t BankAccountType) Valid() bool {
	switch t {
	case BankAccountTypeChecking, BankAccountTypeSavings:
		return true
	default:
		return false
	}
}

// ParseBankAccountType normalizes an account type string and reports whether it is supported.
func ParseBankAccountType(value string) (BankAccountType, bool) {
	t := BankAccountType(strings.ToLower(strings.TrimSpace(value)))
	if t.Valid() {
		return t, true
	}
	return "", false
}

// BankAccount is a payout destination owned by a partner.
// Invariant: a partner with any accounts has exactly one with IsDefault=true;
// the repository enforces this transactionally.
type BankAccount struct {
	ID            string          `json:"id"             db:"id"`
	PartnerID     string          `json:"partner_id"     db:"partner_id"`
	CompanyName   string          `json:"company_name"   db:"company_name"`
	RoutingNumber string          `json:"routing_number" db:"routing_number"`
	AccountNumber string          `json:"account_number" db:"account_number"`
	AccountType   BankAccountType `json:"account_type"   db:"account_type"`
	IsDefault     bool            `json:"is_default"     db:"is_default"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"     db:"updated_at"`
}

// CreateBankAccountRequest carries fields for adding a bank account.
type CreateBankAccountRequest struct {
	CompanyName   string          `json:"company_name"`
	RoutingNumber string          `json:"routing_number"`
	AccountNumber string          `json:"account_number"`
	AccountType   BankAccountType `json:"account_type"`
}

// Validate checks the create request fields.
func (r *CreateBankAccountRequest) Validate() error {
	if err := validateCompanyName(r.CompanyName); err != nil {
		return err
	}
	if err := ValidateRoutingNumber(r.RoutingNumber); err != nil {
		return err
	}
	if err := validateAccountNumber(r.AccountNumber); err != nil {
		return err
	}
	if !r.AccountType.Valid() {
		return errors.New("account type must be one of: checking, savings")
	}
	return nil
}

// UpdateBankAccountRequest carries optional fields for editing a bank account.
// Nil fields are left unchanged. Default reassignment is a separate operation.
type UpdateBankAccountRequest struct {
	CompanyName   *string          `json:"company_name,omitempty"`
	RoutingNumber *string          `json:"routing_number,omitempty"`
	AccountNumber *string          `json:"account_number,omitempty"`
	AccountType   *BankAccountType `json:"account_type,omitempty"`
}

// Validate checks any provided fields. All-nil requests are valid no-ops.
func (r *UpdateBankAccountRequest) Validate() error {
	if r.CompanyName != nil {
		if err := validateCompanyName(*r.CompanyName); err != nil {
			return err
		}
	}
	if r.RoutingNumber != nil {
		if err := ValidateRoutingNumber(*r.RoutingNumber); err != nil {
			return err
		}
	}
	if r.AccountNumber != nil {
		if err := validateAccountNumber(*r.AccountNumber); err != nil {
			return err
		}
	}
	if r.AccountType != nil && !r.AccountType.Valid() {
		return errors.New("account type must be one of: checking, savings")
	}
	return nil
}

// ValidateRoutingNumber requires exactly 9 ASCII digits, no separators.
func ValidateRoutingNumber(v string) error {
	if len(v) != 9 {
		return errors.New("routing number must be exactly 9 digits")
	}
	for i := range len(v) {
		if v[i] < '0' || v[i] > '9' {
			return errors.New("routing number must be exactly 9 digits")
		}
	}
	return nil
}

func validateCompanyName(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return errors.New("company name is required and cannot be empty")
	}
	if utf8.RuneCountInString(n) > maxCompanyNameLen {
		return errors.New("company name cannot exceed 255 characters")
	}
	return nil
}

func validateAccountNumber(v string) error {
	n := strings.TrimSpace(v)
	if n == "" {
		return errors.New("account number is required and cannot be empty")
	}
	if len(n) < 4 || len(n) > 17 {
		return errors.New("account number must be between 4 and 17 digits")
	}
	for i := range len(n) {
		if n[i] < '0' || n[i] > '9' {
			return errors.New("account number must contain only digits")
		}
	}
	return nil
}
