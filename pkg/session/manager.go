package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/enclavekit/pkg/backoff"
)

// Authenticator performs the credential login against the platform API.
// *upstream.Client satisfies this interface.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Config describes the service credentials and refresh schedule.
type Config struct {
	Username string `env:"USERNAME,required"`
	Password string `env:"PASSWORD,required"`
	// RefreshInterval is how often the service token is re-obtained. The
	// platform reference deployment uses 12 hours.
	RefreshInterval time.Duration `env:"SESSION_REFRESH_INTERVAL" envDefault:"12h"`
	// StartupAttempts bounds the initial login retries before Run gives up.
	// Dependent services may start before the platform API is reachable, so
	// the first login retries with backoff instead of failing outright.
	StartupAttempts int `env:"SESSION_STARTUP_ATTEMPTS" envDefault:"5"`
}

// TickerFunc abstracts time.NewTicker so tests can drive the refresh loop
// without waiting on the wall clock. It returns the tick channel and a stop
// function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func defaultTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Manager holds the current service-level token and refreshes it
// periodically. It is safe for concurrent use.
type Manager struct {
	cfg  Config
	auth Authenticator
	log  *slog.Logger

	retry  backoff.Strategy
	ticker TickerFunc

	mu         sync.RWMutex
	token      string
	obtainedAt time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger supplies the logger used by the refresh loop.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithBackoff overrides the startup-login retry strategy.
func WithBackoff(s backoff.Strategy) Option {
	return func(m *Manager) {
		if s != nil {
			m.retry = s
		}
	}
}

// WithTicker overrides the refresh ticker, letting tests trigger refreshes
// deterministically.
func WithTicker(fn TickerFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.ticker = fn
		}
	}
}

// NewManager creates a Manager. Run must be called to obtain a token.
func NewManager(cfg Config, auth Authenticator, opts ...Option) (*Manager, error) {
	if auth == nil {
		return nil, ErrNoAuthenticator
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 12 * time.Hour
	}
	if cfg.StartupAttempts <= 0 {
		cfg.StartupAttempts = 5
	}

	m := &Manager{
		cfg:    cfg,
		auth:   auth,
		log:    slog.Default(),
		retry:  backoff.Default(),
		ticker: defaultTicker,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Token returns the last successfully obtained service token, or "" before
// the first login completes.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// ObtainedAt reports when the current token was obtained.
func (m *Manager) ObtainedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.obtainedAt
}

// Run performs the initial login and then refreshes on the configured
// interval until ctx is cancelled. The initial login retries with backoff
// up to the startup attempt budget; exhausting it returns ErrStartupLogin.
// A failed scheduled refresh is logged and the previous token stays in
// effect until the next tick.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.initialLogin(ctx); err != nil {
		return err
	}

	ticks, stop := m.ticker(m.cfg.RefreshInterval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks:
			if err := m.refresh(ctx); err != nil {
				m.log.ErrorContext(ctx, "service token refresh failed, keeping previous token",
					slog.Any("error", err))
			}
		}
	}
}

func (m *Manager) initialLogin(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= m.cfg.StartupAttempts; attempt++ {
		lastErr = m.refresh(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == m.cfg.StartupAttempts {
			break
		}

		m.log.WarnContext(ctx, "initial login failed, retrying",
			slog.Int("attempt", attempt),
			slog.Any("error", lastErr))

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrStartupLogin, ctx.Err())
		case <-time.After(m.retry.NextInterval(attempt)):
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrStartupLogin, m.cfg.StartupAttempts, lastErr)
}

func (m *Manager) refresh(ctx context.Context) error {
	token, err := m.auth.Login(ctx, m.cfg.Username, m.cfg.Password)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.token = token
	m.obtainedAt = time.Now()
	m.mu.Unlock()

	m.log.InfoContext(ctx, "service token obtained")
	return nil
}
