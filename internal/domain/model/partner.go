//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
)

const (
	maxPartnerNameLen  = 255
	maxPartnerEmailLen = 255
	maxPartnerPhoneLen = 32
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^[0-9+\-(). ]+$`)
)

// PartnerStats holds the earnings and referral counters shown on the dashboard.
type PartnerStats struct {
	TotalEarnings   float64 `json:"total_earnings"   db:"total_earnings"`
	WalletBalance   float64 `json:"wallet_balance"   db:"wallet_balance"`
	TotalReferred   int     `json:"total_referred"   db:"total_referred"`
	TotalSubscribed int     `json:"total_subscribed" db:"total_subscribed"`
}

// Partner represents a partner profile document keyed by the IdP user id.
type Partner struct {
	ID              string          `json:"id"               db:"id"`
	Name            string          `json:"name"             db:"name"`
	Email           string          `json:"email"            db:"email"`
	Phone           string          `json:"phone"            db:"phone"`
	Role            domainauth.Role `json:"role"             db:"role"`
	ReferralCode    string          `json:"referral_code"    db:"referral_code"`
	TotalEarnings   float64         `json:"total_earnings"   db:"total_earnings"`
	WalletBalance   float64         `json:"wallet_balance"   db:"wallet_balance"`
	TotalReferred   int             `json:"total_referred"   db:"total_referred"`
	TotalSubscribed int             `json:"total_subscribed" db:"total_subscribed"`
	CreatedAt       time.Time       `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"       db:"updated_at"`
}

// Stats returns the partner's counters as a PartnerStats value.
func (p *Partner) Stats() PartnerStats {
	return PartnerStats{
		TotalEarnings:   p.TotalEarnings,
		WalletBalance:   p.WalletBalance,
		TotalReferred:   p.TotalReferred,
		TotalSubscribed: p.TotalSubscribed,
	}
}

// CreatePartnerRequest carries fields for provisioning a new partner profile.
type CreatePartnerRequest struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Role         domainauth.Role `json:"role"`
	ReferralCode string          `json:"referral_code"`
}

// Validate checks the create request fields.
func (r *CreatePartnerRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("id is required and cannot be empty")
	}
	if err := validatePartnerName(r.Name); err != nil {
		return err
	}
	if err := validatePartnerEmail(r.Email); err != nil {
		return err
	}
	if r.Phone != "" {
		if err := validatePartnerPhone(r.Phone); err != nil {
			return err
		}
	}
	if r.Role != "" && !domainauth.CanonicalRole(string(r.Role)).IsKnown() {
		return errors.New("role must be one of: super_admin, agent, cpa")
	}
	return nil
}

// UpdatePartnerRequest carries optional fields for a partial profile update.
// Nil fields are left unchanged.
type UpdatePartnerRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Validate checks any provided fields. All-nil requests are valid no-ops.
func (r *UpdatePartnerRequest) Validate() error {
	if r.Name != nil {
		if err := validatePartnerName(*r.Name); err != nil {
			return err
		}
	}
	if r.Email != nil {
		if err := validatePartnerEmail(*r.Email); err != nil {
			return err
		}
	}
	if r.Phone != nil && *r.Phone != "" {
		if err := validatePartnerPhone(*r.Phone); err != nil {
			return err
		}
	}
	return nil
}

func validatePartnerName(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(n) > maxPartnerNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	return nil
}

func validatePartnerEmail(email string) error {
	e := strings.TrimSpace(email)
	if e == "" {
		return errors.New("email is required and cannot be empty")
	}
	if utf8.RuneCountInString(e) > maxPartnerEmailLen {
		return errors.New("email cannot exceed 255 characters")
	}
	if !emailRe.MatchString(e) {
		return errors.New("email must be a valid address")
	}
	return nil
}

func validatePartnerPhone(phone string) error {
	p := strings.TrimSpace(phone)
	if utf8.RuneCountInString(p) > maxPartnerPhoneLen {
		return errors.New("phone cannot exceed 32 characters")
	}
	if !phoneRe.MatchString(p) {
		return errors.New("phone may contain only digits, spaces, and + - ( ) .")
	}
	return nil
}
