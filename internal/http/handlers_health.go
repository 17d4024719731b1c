package httpx

import "net/http"

// Health handles GET/HEAD /healthz. Liveness only; dependency health is
// observed through request errors, not probed here.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
