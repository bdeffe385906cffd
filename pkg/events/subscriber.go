package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/enclavekit/pkg/backoff"
)

// Config describes the pub/sub channel carrying workflow events.
type Config struct {
	Channel string `env:"WORKFLOW_EVENTS_CHANNEL,required"`
}

// Subscriber consumes workflow events from a redis channel for the lifetime
// of the process. It must run on its own goroutine; the receive loop blocks
// waiting for the next message.
type Subscriber struct {
	client    redis.UniversalClient
	channel   string
	registry  *Registry
	log       *slog.Logger
	reconnect backoff.Strategy
}

// SubscriberOption configures a Subscriber.
type SubscriberOption func(*Subscriber)

// WithLogger supplies the logger used by the receive loop.
func WithLogger(l *slog.Logger) SubscriberOption {
	return func(s *Subscriber) {
		if l != nil {
			s.log = l
		}
	}
}

// WithReconnectBackoff overrides the delay strategy between reconnect
// attempts after the broker connection drops.
func WithReconnectBackoff(b backoff.Strategy) SubscriberOption {
	return func(s *Subscriber) {
		if b != nil {
			s.reconnect = b
		}
	}
}

// NewSubscriber creates a Subscriber reading cfg.Channel from client and
// dispatching through registry.
func NewSubscriber(client redis.UniversalClient, cfg Config, registry *Registry, opts ...SubscriberOption) (*Subscriber, error) {
	if cfg.Channel == "" {
		return nil, ErrNoChannel
	}
	if registry == nil {
		registry = NewRegistry()
	}

	s := &Subscriber{
		client:    client,
		channel:   cfg.Channel,
		registry:  registry,
		log:       slog.Default(),
		reconnect: backoff.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run blocks consuming messages until ctx is cancelled. Malformed messages
// and handler errors are logged and skipped. When the subscription channel
// closes (broker connection lost), Run resubscribes with backoff.
func (s *Subscriber) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		sub := s.client.Subscribe(ctx, s.channel)
		s.log.InfoContext(ctx, "subscribed to workflow events", slog.String("channel", s.channel))

		alive := s.receive(ctx, sub)
		_ = sub.Close()

		if ctx.Err() != nil {
			return nil
		}

		if alive {
			// At least one message arrived on this connection; start the
			// backoff schedule over.
			attempt = 0
		}
		attempt++
		delay := s.reconnect.NextInterval(attempt)
		s.log.WarnContext(ctx, "workflow event subscription lost, reconnecting",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// receive drains one subscription until ctx is cancelled or the channel
// closes. It reports whether any message was received on this connection.
func (s *Subscriber) receive(ctx context.Context, sub *redis.PubSub) bool {
	received := false
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return received
		case msg, ok := <-ch:
			if !ok {
				return received
			}
			received = true
			s.handle(ctx, []byte(msg.Payload))
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload []byte) {
	ev, err := Decode(payload)
	if err != nil {
		s.log.ErrorContext(ctx, "dropping malformed workflow event", slog.Any("error", err))
		return
	}

	s.log.DebugContext(ctx, "workflow event received",
		slog.String("rule_code", ev.RuleCode),
		slog.String("service", string(ev.ServiceName)))

	if err := s.registry.Dispatch(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "workflow event skipped",
			slog.String("rule_code", ev.RuleCode),
			slog.Any("error", err))
	}
}
