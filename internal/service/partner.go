package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/ports"
)

// PartnerServiceOptions groups dependencies for PartnerService.
type PartnerServiceOptions struct {
	Partners ports.PartnerRepository
	Logger   *slog.Logger
}

// PartnerService provides partner profile operations.
type PartnerService struct {
	partners ports.PartnerRepository
	logger   *slog.Logger
}

// NewPartnerService constructs a new PartnerService.
func NewPartnerService(opts PartnerServiceOptions) *PartnerService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PartnerService{
		partners: opts.Partners,
		logger:   opts.Logger.With("component", "partner_service"),
	}
}

// GetProfile returns the partner profile for the user ID.
func (s *PartnerService) GetProfile(ctx context.Context, userID string) (*model.Partner, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}
	return s.partners.GetByID(ctx, userID)
}

// UpdateProfile applies a partial profile update. Nil fields are unchanged;
// role, referral code, and stats are not editable through this path.
func (s *PartnerService) UpdateProfile(ctx context.Context, userID string, req model.UpdatePartnerRequest) (*model.Partner, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	updated, err := s.partners.Update(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("partner profile updated", "user_id", userID)
	return updated, nil
}

// ProvisionInput carries fields for provisioning a new partner.
type ProvisionInput struct {
	UserID string
	Name   string
	Email  string
	Phone  string
	Role   domainauth.Role
}

// Provision creates a partner profile with a fresh referral code. The role
// defaults to cpa when unset.
func (s *PartnerService) Provision(ctx context.Context, in ProvisionInput) (*model.Partner, error) {
	req := &model.CreatePartnerRequest{
		ID:           in.UserID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         in.Role,
		ReferralCode: GenerateReferralCode(),
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	created, err := s.partners.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("provision partner: %w", err)
	}
	s.logger.Info("partner provisioned",
		"user_id", created.ID, "role", string(created.Role))
	return created, nil
}

// GenerateReferralCode produces a short shareable referral code. Uniqueness
// is enforced by the database; at 10 hex chars collisions are rare enough
// that a failed insert is acceptable.
func GenerateReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TL-" + strings.ToUpper(raw[:10])
}
