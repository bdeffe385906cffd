package enclave

import (
	"log/slog"
	"net/http"
)

// authGuard gates protected routes on the signed session cookie. A missing
// cookie, a failed signature check, or an empty decoded value rejects the
// request before the protected handler runs.
func (m *Module) authGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := m.cookies.GetSigned(r, m.cookieName)
		if err != nil || token == "" {
			if err != nil {
				m.log.DebugContext(r.Context(), "rejected unauthenticated request",
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
			}
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(withToken(r.Context(), token)))
	})
}
