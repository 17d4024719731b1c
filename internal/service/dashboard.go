package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/ports"
)

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Partners ports.PartnerRepository
	Accounts ports.BankAccountRepository
	Logger   *slog.Logger
}

// DashboardService assembles the partner dashboard summary from the profile
// and bank-account stores.
type DashboardService struct {
	partners ports.PartnerRepository
	accounts ports.BankAccountRepository
	logger   *slog.Logger
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &DashboardService{
		partners: opts.Partners,
		accounts: opts.Accounts,
		logger:   opts.Logger.With("component", "dashboard_service"),
	}
}

// DashboardSummary is the aggregate shown on the partner dashboard.
type DashboardSummary struct {
	Profile      *model.Partner       `json:"profile"`
	Stats        model.PartnerStats   `json:"stats"`
	BankAccounts []*model.BankAccount `json:"bank_accounts"`
}

// Summary fetches the profile and bank accounts concurrently and combines
// them. A missing profile surfaces as NotFound; partial results are never
// returned.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}

	var (
		profile  *model.Partner
		accounts []*model.BankAccount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.partners.GetByID(gctx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		a, err := s.accounts.List(gctx, userID)
		if err != nil {
			return err
		}
		accounts = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DashboardSummary{
		Profile:      profile,
		Stats:        profile.Stats(),
		BankAccounts: accounts,
	}, nil
}
