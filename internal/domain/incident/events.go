package incident

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// CreatedEvent is published after an incident row is durably written.
type CreatedEvent struct {
	TenantID string
	Incident *Incident
}

// CreatedHandler receives created-incident events. Handlers must tolerate
// duplicate delivery.
type CreatedHandler func(ctx context.Context, ev CreatedEvent)

// Bus is a minimal in-process event bus. Delivery is synchronous and
// sequential per publish; a handler panic or misbehavior is logged and never
// reaches the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers []CreatedHandler
	log      zerolog.Logger
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log.With().Str("component", "incident_bus").Logger()}
}

func (b *Bus) Subscribe(h CreatedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, ev CreatedEvent) {
	b.mu.RLock()
	handlers := make([]CreatedHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(ctx, h, ev)
	}
}

func (b *Bus) deliver(ctx context.Context, h CreatedHandler, ev CreatedEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("tenant_id", ev.TenantID).
				Str("incident_id", ev.Incident.ID.String()).
				Msg("incident event handler panicked")
		}
	}()
	h(ctx, ev)
}
