// Package devseed provisions demo partner data for local development. It only
// runs in dev mode and is idempotent: existing partners are left untouched.
package devseed

import (
	"context"
	"log/slog"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/service"
)

// Options groups dependencies for seeding.
type Options struct {
	Partners *service.PartnerService
	Accounts *service.BankAccountService

	// DevUserID/DevEmail identify the mock-auth sign-in user; that user gets
	// the cpa demo profile so a dev login resolves to a real role.
	DevUserID string
	DevEmail  string

	Logger *slog.Logger
}

type seedPartner struct {
	in      service.ProvisionInput
	account *model.CreateBankAccountRequest
}

// Run provisions the demo partners. Already-provisioned partners are skipped.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "devseed")

	for _, p := range seedPartners(opts) {
		created, err := opts.Partners.Provision(ctx, p.in)
		if err != nil {
			if apperrors.IsConflict(err) {
				logger.Debug("partner already seeded", "user_id", p.in.UserID)
				continue
			}
			return err
		}
		logger.Info("seeded partner",
			"user_id", created.ID, "role", string(created.Role))

		if p.account == nil {
			continue
		}
		if _, err := opts.Accounts.Add(ctx, created.ID, p.account); err != nil {
			return err
		}
	}

	return nil
}

func seedPartners(opts Options) []seedPartner {
	devUserID := opts.DevUserID
	if devUserID == "" {
		devUserID = "dev-user"
	}
	devEmail := opts.DevEmail
	if devEmail == "" {
		devEmail = "dev@example.com"
	}

	return []seedPartner{
		{
			in: service.ProvisionInput{
				UserID: devUserID,
				Name:   "Dev CPA",
				Email:  devEmail,
				Phone:  "+1 (555) 010-0001",
				Role:   domainauth.RoleCPA,
			},
			account: &model.CreateBankAccountRequest{
				CompanyName:   "Dev CPA LLC",
				RoutingNumber: "021000021",
				AccountNumber: "000111222333",
				AccountType:   model.BankAccountTypeChecking,
			},
		},
		{
			in: service.ProvisionInput{
				UserID: "dev-agent",
				Name:   "Dev Agent",
				Email:  "dev.agent@example.com",
				Phone:  "+1 (555) 010-0002",
				Role:   domainauth.RoleAgent,
			},
		},
		{
			in: service.ProvisionInput{
				UserID: "dev-admin",
				Name:   "Dev Admin",
				Email:  "dev.admin@example.com",
				Role:   domainauth.RoleSuperAdmin,
			},
		},
	}
}
