package service

import (
	"context"
	"log/slog"
	"unicode/utf8"

	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/ports"
)

const minPasswordLen = 8

// PasswordServiceOptions groups dependencies for PasswordService.
type PasswordServiceOptions struct {
	// Authenticator is nil when the configured identity provider does not
	// manage credentials (hosted OIDC); password changes are then rejected.
	Authenticator ports.PasswordAuthenticator
	Logger        *slog.Logger
}

// PasswordService changes a partner's password through a reauthenticate-then-
// replace flow against a credential-managing provider.
type PasswordService struct {
	authenticator ports.PasswordAuthenticator
	logger        *slog.Logger
}

// NewPasswordService constructs a new PasswordService.
func NewPasswordService(opts PasswordServiceOptions) *PasswordService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PasswordService{
		authenticator: opts.Authenticator,
		logger:        opts.Logger.With("component", "password_service"),
	}
}

// ChangePasswordInput carries the full change-password form.
type ChangePasswordInput struct {
	Email           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword validates the form, reauthenticates with the current
// password, and replaces the credential. Wrong current passwords map to an
// auth error; everything else rejected up front is a validation error.
func (s *PasswordService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if s.authenticator == nil {
		return apperrors.Validation("password management is not available for this sign-in method")
	}
	if in.Email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if in.CurrentPassword == "" {
		return apperrors.ValidationField("current_password", "current password is required")
	}
	if utf8.RuneCountInString(in.NewPassword) < minPasswordLen {
		return apperrors.ValidationField("new_password", "new password must be at least 8 characters")
	}
	if in.NewPassword != in.ConfirmPassword {
		return apperrors.ValidationField("confirm_password", "password confirmation does not match")
	}

	if err := s.authenticator.Reauthenticate(ctx, in.Email, in.CurrentPassword); err != nil {
		s.logger.Warn("reauthentication failed", "email", in.Email)
		return apperrors.Auth("current password is incorrect")
	}

	if err := s.authenticator.ChangePassword(ctx, in.NewPassword); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "change password failed")
	}

	s.logger.Info("password changed", "email", in.Email)
	return nil
}
