package enclave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/enclavekit/pkg/cookie"
	"github.com/dmitrymomot/enclavekit/pkg/upstream"
	"github.com/dmitrymomot/enclavekit/pkg/webpage"
)

// devCookieMaxAge is the fixed session cookie lifetime issued by the
// development-mode ingress bypass.
const devCookieMaxAge = int(time.Hour / time.Second)

var (
	ErrNoName     = errors.New("enclave.no_name")
	ErrNoCookies  = errors.New("enclave.no_cookie_manager")
	ErrNoSessions = errors.New("enclave.no_session_manager")
	ErrNoUpstream = errors.New("enclave.no_upstream_client")
)

// Config identifies the enclave and its serving mode.
type Config struct {
	// Name is the unique enclave name; it determines the URL prefix and the
	// session cookie name.
	Name string `env:"ENCLAVE_NAME,required"`
	// Production disables the ingress verification bypass and the
	// per-request re-read of the SPA shell.
	Production bool `env:"PRODUCTION" envDefault:"false"`
	// IndexFile is the SPA entry page served for all UI routes.
	IndexFile string `env:"INDEX_FILE" envDefault:"index.html"`
	// StaticDir holds the built front-end assets.
	StaticDir string `env:"STATIC_DIR" envDefault:"resources/dist"`
}

// TokenSource yields the gateway's current service-level token.
// *session.Manager satisfies this interface.
type TokenSource interface {
	Token() string
}

// Upstream is the slice of the platform API the HTTP surface needs.
// *upstream.Client satisfies this interface.
type Upstream interface {
	VerifyIngress(ctx context.Context, serviceToken, ingressToken string) (upstream.Ingress, error)
	Call(ctx context.Context, token, method, path string, body, out any) error
}

// Deps carries the collaborators the module is wired with.
type Deps struct {
	Cookies  *cookie.Manager
	Sessions TokenSource
	Upstream Upstream
	Logger   *slog.Logger
	// Readiness checks run by the readiness probe. Health never depends on
	// upstream availability, so only local dependencies belong here.
	Readiness []func(context.Context) error
}

// Module holds the wired HTTP surface for one enclave.
type Module struct {
	cfg        Config
	prefix     string
	cookieName string
	cookies    *cookie.Manager
	sessions   TokenSource
	upstream   Upstream
	renderer   *webpage.Renderer
	log        *slog.Logger
	readiness  []func(context.Context) error
}

// Prefix returns the URL prefix for an enclave name.
func Prefix(name string) string {
	return "/enclave/" + name
}

// CookieName returns the session cookie name for an enclave.
func CookieName(name string) string {
	return name + "_auth_token"
}

// New wires a Module from its config and collaborators.
func New(cfg Config, deps Deps) (*Module, error) {
	switch {
	case cfg.Name == "":
		return nil, ErrNoName
	case deps.Cookies == nil:
		return nil, ErrNoCookies
	case deps.Sessions == nil:
		return nil, ErrNoSessions
	case deps.Upstream == nil:
		return nil, ErrNoUpstream
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	prefix := Prefix(cfg.Name)
	return &Module{
		cfg:        cfg,
		prefix:     prefix,
		cookieName: CookieName(cfg.Name),
		cookies:    deps.Cookies,
		sessions:   deps.Sessions,
		upstream:   deps.Upstream,
		renderer:   webpage.NewRenderer(cfg.IndexFile, prefix, cfg.Production),
		log:        log,
		readiness:  deps.Readiness,
	}, nil
}
