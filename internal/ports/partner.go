package ports

import (
	"context"

	"github.com/taxlink/partner-portal/internal/domain/model"
)

// PartnerRepository provides access to partner profile documents keyed by
// the IdP user id.
type PartnerRepository interface {
	// GetByID returns the partner profile, or a NotFound error when no
	// document exists for the id.
	GetByID(ctx context.Context, id string) (*model.Partner, error)

	// Create provisions a new partner profile.
	Create(ctx context.Context, req *model.CreatePartnerRequest) (*model.Partner, error)

	// Update applies a partial update; nil fields are left unchanged.
	Update(ctx context.Context, id string, req model.UpdatePartnerRequest) (*model.Partner, error)
}

// BankAccountRepository manages a partner's payout bank accounts.
// Implementations must preserve the invariant that a partner with any
// accounts has exactly one default.
type BankAccountRepository interface {
	// List returns the partner's accounts, default first, then newest first.
	List(ctx context.Context, partnerID string) ([]*model.BankAccount, error)

	// Get returns a single account owned by the partner.
	Get(ctx context.Context, partnerID, accountID string) (*model.BankAccount, error)

	// Create adds an account. The partner's first account becomes the default.
	Create(ctx context.Context, partnerID string, req *model.CreateBankAccountRequest) (*model.BankAccount, error)

	// Update applies a partial edit; nil fields are left unchanged.
	Update(ctx context.Context, partnerID, accountID string, req model.UpdateBankAccountRequest) (*model.BankAccount, error)

	// Delete removes an account. When the default is deleted and others
	// remain, exactly one remaining account becomes the default.
	Delete(ctx context.Context, partnerID, accountID string) (bool, error)

	// SetDefault atomically clears the default flag across the partner's
	// accounts and sets it on the given one.
	SetDefault(ctx context.Context, partnerID, accountID string) error
}
