package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taxlink/partner-portal/internal/domain/model"
	"github.com/taxlink/partner-portal/internal/service"
)

// BankAccountHandlers provides HTTP handlers for payout bank accounts.
// Accounts are always scoped to the session's partner; account IDs from other
// partners read as not found.
type BankAccountHandlers struct {
	Accounts *service.BankAccountService
	Logger   *slog.Logger
}

func (h *BankAccountHandlers) partnerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return "", false
	}
	return session.UserID, true
}

// List handles GET /api/bank-accounts. The default account sorts first.
func (h *BankAccountHandlers) List(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := h.partnerID(w, r)
	if !ok {
		return
	}

	accounts, err := h.Accounts.List(r.Context(), partnerID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"bank_accounts": accounts})
}

// Get handles GET /api/bank-accounts/{id}.
func (h *BankAccountHandlers) Get(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := h.partnerID(w, r)
	if !ok {
		return
	}

	account, err := h.Accounts.Get(r.Context(), partnerID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, account)
}

// Create handles POST /api/bank-accounts. The first account a partner adds
// becomes the default automatically.
func (h *BankAccountHandlers) Create(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := h.partnerID(w, r)
	if !ok {
		return
	}

	var req model.CreateBankAccountRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	account, err := h.Accounts.Add(r.Context(), partnerID, &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, account)
}

// Update handles PUT /api/bank-accounts/{id}. Omitted fields are unchanged.
func (h *BankAccountHandlers) Update(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := h.partnerID(w, r)
	if !ok {
		return
	}

	var req model.UpdateBankAccountRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	account, err := h.Accounts.Update(r.Context(), partnerID, r.PathValue("id"), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, account)
}

// Delete handles DELETE /api/bank-accounts/{id}. Deleting the default
// transfers the flag to the most recently added remaining account.
func (h *BankAccountHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := h.partnerID(w, r)
	if !ok {
		return
	}

	if err := h.Accounts.Delete(r.Context(), partnerID, r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetDefault handles POST /api/bank-accounts/{id}/default.
func (h *BankAccountHandlers) SetDefault(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := h.partnerID(w, r)
	if !ok {
		return
	}

	accountID := r.PathValue("id")
	if err := h.Accounts.SetDefault(r.Context(), partnerID, accountID); err != nil {
		WriteAppError(w, err)
		return
	}

	account, err := h.Accounts.Get(r.Context(), partnerID, accountID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, account)
}
