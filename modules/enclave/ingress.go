package enclave

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/enclavekit/pkg/cookie"
)

// handleIngress exchanges a one-time ingress token for a session cookie and
// redirects the visitor into the UI.
//
// In development mode the exchange is bypassed entirely: the cookie carries
// the gateway's own service token with a short fixed expiry, so the widget
// can be exercised without the embedding platform issuing tokens.
func (m *Module) handleIngress(w http.ResponseWriter, r *http.Request) {
	var sessionToken string
	var maxAge int

	if m.cfg.Production {
		token := chi.URLParam(r, "token")
		if token == "" {
			writeError(w, http.StatusBadRequest, "Missing token")
			return
		}

		ingress, err := m.upstream.VerifyIngress(r.Context(), m.sessions.Token(), token)
		if err != nil {
			m.log.ErrorContext(r.Context(), "ingress verification failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "Ingress verification failed")
			return
		}

		sessionToken = ingress.SessionToken
		maxAge = int(time.Until(ingress.ExpiresAt) / time.Second)
	} else {
		sessionToken = m.sessions.Token()
		maxAge = devCookieMaxAge
	}

	m.cookies.SetSigned(w, m.cookieName, sessionToken,
		cookie.WithPath("/"),
		cookie.WithMaxAge(maxAge),
		cookie.WithHTTPOnly(true),
	)

	http.Redirect(w, r, m.prefix+"/ui", http.StatusTemporaryRedirect)
}
