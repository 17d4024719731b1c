package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taxlink/partner-portal/internal/service"
)

// DashboardHandlers provides the aggregated dashboard endpoint.
type DashboardHandlers struct {
	Dashboard *service.DashboardService
	Logger    *slog.Logger
}

// Summary handles GET /api/dashboard: the partner profile, referral stats,
// and payout accounts in a single response.
func (h *DashboardHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	summary, err := h.Dashboard.Summary(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}
