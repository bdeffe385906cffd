package enclave

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/enclavekit/pkg/requestid"
)

// Handler builds the enclave's HTTP surface.
func (m *Module) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))

	r.Route(m.prefix, func(r chi.Router) {
		// Built front-end assets.
		fileServer := http.StripPrefix(m.prefix+"/resources/dist", http.FileServer(http.Dir(m.cfg.StaticDir)))
		r.Get("/resources/dist/*", fileServer.ServeHTTP)

		r.Get("/health/startup", m.handleHealth)
		r.Get("/health/liveliness", m.handleHealth)
		r.Get("/health/readiness", m.handleReadiness)

		r.Get("/api/random", m.handleRandom)

		page := m.renderer.Handler()
		r.Get("/ui", page)
		r.Get("/ui/*", page)

		r.Get("/ingress/{token}", m.handleIngress)

		r.Route("/protected", func(r chi.Router) {
			r.Use(m.authGuard)
			r.Get("/api/random", m.handleProtectedRandom)
		})
	})

	// Direct-URL entry point.
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, m.prefix+"/ui", http.StatusTemporaryRedirect)
	})

	// Anything unmatched lands back at the entry point.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/", http.StatusTemporaryRedirect)
	})

	return r
}
