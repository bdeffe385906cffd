// Package webpage serves the SPA entry page with cache-busted asset links.
package webpage

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrReadPage is returned when the entry page cannot be read from disk.
var ErrReadPage = errors.New("webpage.read_failed")

// versionFormat renders the cache-busting token with second resolution.
const versionFormat = "20060102150405"

// Renderer serves a single HTML file for all SPA routes. In production the
// file is read once and cached; in development it is re-read on every
// request so edits show up live.
type Renderer struct {
	file       string
	prefix     string
	production bool
	now        func() time.Time

	once   sync.Once
	cached string
	err    error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock overrides the time source for the cache-busting token.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRenderer creates a Renderer for the page at file, rewriting asset
// links under the enclave URL prefix.
func NewRenderer(file, prefix string, production bool, opts ...Option) *Renderer {
	r := &Renderer{
		file:       file,
		prefix:     prefix,
		production: production,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the cache-busted page to w, or a 500 if the file is
// unreadable.
func (r *Renderer) Render(w http.ResponseWriter) error {
	page, err := r.page()
	if err != nil {
		http.Error(w, "Index page not found.", http.StatusInternalServerError)
		return errors.Join(ErrReadPage, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write([]byte(r.bustCaches(page)))
	return err
}

// Handler adapts Render to http.HandlerFunc for mounting on SPA routes.
func (r *Renderer) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		_ = r.Render(w)
	}
}

func (r *Renderer) page() (string, error) {
	if !r.production {
		content, err := os.ReadFile(r.file)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}

	r.once.Do(func() {
		content, err := os.ReadFile(r.file)
		if err != nil {
			r.err = err
			return
		}
		r.cached = string(content)
	})
	return r.cached, r.err
}

// bustCaches appends a version query parameter to the three fixed asset
// references. A reference that is not present in the page is left alone.
func (r *Renderer) bustCaches(page string) string {
	version := r.now().Format(versionFormat)

	jsRef := r.prefix + "/resources/dist/js/bundle.src.min.js"
	cssRef := r.prefix + "/resources/dist/css/bundle.css"

	page = strings.ReplaceAll(page,
		`<link rel="preload" as="script" href="`+jsRef+`">`,
		`<link rel="preload" as="script" href="`+jsRef+`?v=`+version+`">`)
	page = strings.ReplaceAll(page,
		`<script src="`+jsRef+`"></script>`,
		`<script src="`+jsRef+`?v=`+version+`"></script>`)
	page = strings.ReplaceAll(page,
		`<link rel="stylesheet" href="`+cssRef+`">`,
		`<link rel="stylesheet" href="`+cssRef+`?v=`+version+`">`)

	return page
}
