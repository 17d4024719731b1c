package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taxlink/partner-portal/internal/domain/model"
	"github.com/taxlink/partner-portal/internal/service"
)

// PartnerHandlers provides HTTP handlers for partner profile operations.
// All routes require an authenticated session; the partner is always the
// session's own user, never a path parameter.
type PartnerHandlers struct {
	Partners  *service.PartnerService
	Passwords *service.PasswordService
	Logger    *slog.Logger
}

// GetProfile handles GET /api/profile.
func (h *PartnerHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	partner, err := h.Partners.GetProfile(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, partner)
}

// UpdateProfile handles PUT /api/profile. Omitted fields are unchanged.
func (h *PartnerHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var req model.UpdatePartnerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	partner, err := h.Partners.UpdateProfile(r.Context(), session.UserID, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, partner)
}

// changePasswordRequest is the POST /api/profile/password body. The email is
// taken from the session, not the client.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword handles POST /api/profile/password.
func (h *PartnerHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var req changePasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.Passwords.ChangePassword(r.Context(), service.ChangePasswordInput{
		Email:           session.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
