package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handler processes one decoded workflow event.
type Handler func(ctx context.Context, ev WorkflowEvent) error

// Registry maps rule codes to handlers. New event types are supported by
// registering a handler, without touching the dispatch loop.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a rule code, replacing any previous binding.
// The empty rule code is the platform's generic order event.
func (r *Registry) Register(ruleCode string, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[ruleCode] = h
}

// Dispatch routes an event to the handler registered for its rule code.
// An unregistered rule code returns ErrUnhandledRule so the caller can log
// and skip it.
func (r *Registry) Dispatch(ctx context.Context, ev WorkflowEvent) error {
	r.mu.RLock()
	h, ok := r.handlers[ev.RuleCode]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnhandledRule, ev.RuleCode)
	}
	return h(ctx, ev)
}

// SalesOrderHandler returns the reference handler for the generic order
// event: it decodes the nested SalesOrder payload and hands it to fn.
// Enclave-specific business logic plugs in through fn.
func SalesOrderHandler(log *slog.Logger, fn func(ctx context.Context, order SalesOrder) error) Handler {
	return func(ctx context.Context, ev WorkflowEvent) error {
		var order SalesOrder
		if err := ev.DecodePayload(&order); err != nil {
			return err
		}
		log.InfoContext(ctx, "sales order event received",
			slog.Uint64("order_id", order.ID),
			slog.String("status", order.Status))
		if fn == nil {
			return nil
		}
		return fn(ctx, order)
	}
}
