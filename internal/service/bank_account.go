package service

import (
	"context"
	"log/slog"

	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/ports"
)

// BankAccountServiceOptions groups dependencies for BankAccountService.
type BankAccountServiceOptions struct {
	Accounts ports.BankAccountRepository
	Logger   *slog.Logger
}

// BankAccountService provides payout bank-account operations scoped to the
// owning partner. The exactly-one-default invariant lives in the repository;
// this layer validates inputs and logs mutations.
type BankAccountService struct {
	accounts ports.BankAccountRepository
	logger   *slog.Logger
}

// NewBankAccountService constructs a new BankAccountService.
func NewBankAccountService(opts BankAccountServiceOptions) *BankAccountService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &BankAccountService{
		accounts: opts.Accounts,
		logger:   opts.Logger.With("component", "bank_account_service"),
	}
}

// List returns the partner's accounts, default first.
func (s *BankAccountService) List(ctx context.Context, partnerID string) ([]*model.BankAccount, error) {
	if partnerID == "" {
		return nil, apperrors.Validation("partner ID is required")
	}
	return s.accounts.List(ctx, partnerID)
}

// Get returns one account owned by the partner.
func (s *BankAccountService) Get(ctx context.Context, partnerID, accountID string) (*model.BankAccount, error) {
	if partnerID == "" || accountID == "" {
		return nil, apperrors.Validation("partner ID and account ID are required")
	}
	return s.accounts.Get(ctx, partnerID, accountID)
}

// Add creates an account for the partner.
func (s *BankAccountService) Add(ctx context.Context, partnerID string, req *model.CreateBankAccountRequest) (*model.BankAccount, error) {
	if partnerID == "" {
		return nil, apperrors.Validation("partner ID is required")
	}
	created, err := s.accounts.Create(ctx, partnerID, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account added",
		"partner_id", partnerID, "account_id", created.ID, "default", created.IsDefault)
	return created, nil
}

// Update applies a partial edit to an account.
func (s *BankAccountService) Update(ctx context.Context, partnerID, accountID string, req model.UpdateBankAccountRequest) (*model.BankAccount, error) {
	if partnerID == "" || accountID == "" {
		return nil, apperrors.Validation("partner ID and account ID are required")
	}
	updated, err := s.accounts.Update(ctx, partnerID, accountID, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account updated",
		"partner_id", partnerID, "account_id", accountID)
	return updated, nil
}

// Delete removes an account; the repository transfers the default flag when
// the default is deleted and other accounts remain.
func (s *BankAccountService) Delete(ctx context.Context, partnerID, accountID string) error {
	if partnerID == "" || accountID == "" {
		return apperrors.Validation("partner ID and account ID are required")
	}
	deleted, err := s.accounts.Delete(ctx, partnerID, accountID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFoundf("bank account %s not found", accountID)
	}
	s.logger.Info("bank account deleted",
		"partner_id", partnerID, "account_id", accountID)
	return nil
}

// SetDefault makes the given account the partner's default.
func (s *BankAccountService) SetDefault(ctx context.Context, partnerID, accountID string) error {
	if partnerID == "" || accountID == "" {
		return apperrors.Validation("partner ID and account ID are required")
	}
	if err := s.accounts.SetDefault(ctx, partnerID, accountID); err != nil {
		return err
	}
	s.logger.Info("bank account set default",
		"partner_id", partnerID, "account_id", accountID)
	return nil
}
