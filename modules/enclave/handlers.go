package enclave

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
)

func (m *Module) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// handleReadiness additionally verifies local dependencies. Upstream
// availability is deliberately excluded so a platform outage does not make
// the gateway get restarted.
func (m *Module) handleReadiness(w http.ResponseWriter, r *http.Request) {
	for _, check := range m.readiness {
		if err := check(r.Context()); err != nil {
			m.log.ErrorContext(r.Context(), "readiness check failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "NOT_READY")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// handleRandom is the example unauthenticated endpoint.
func (m *Module) handleRandom(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"random": rand.Float64()})
}

// vendorList mirrors the platform's filter response shape.
type vendorList struct {
	List []struct {
		Code string `json:"code"`
	} `json:"list"`
}

// handleProtectedRandom is the example authenticated endpoint. It forwards
// the caller's session token upstream, not the gateway's service token.
func (m *Module) handleProtectedRandom(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())

	var vendors vendorList
	err := m.upstream.Call(r.Context(), token, http.MethodPost, "/api/vendors/filter",
		map[string]any{"is_active": true, "count": -1}, &vendors)
	if err != nil {
		m.log.ErrorContext(r.Context(), "upstream call failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Upstream call failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"random":  rand.Float64(),
		"vendors": vendors.List,
	})
}
