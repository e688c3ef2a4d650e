package services

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/realtime"
)

// Publisher delivers realtime events to a user's room. *realtime.Hub
// implements it.
type Publisher interface {
	Publish(ctx context.Context, userID string, ev realtime.Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, realtime.Event) error { return nil }

// publish runs after the mutation committed. A failed broadcast never fails
// the mutation; it is logged and swallowed.
func publish(ctx context.Context, p Publisher, log logging.Logger, userID string, evs ...realtime.Event) {
	for _, ev := range evs {
		if err := p.Publish(ctx, userID, ev); err != nil {
			log.Warn(ctx, "broadcast failed", "event", ev.Name(), "user_id", userID, "error", err)
		}
	}
}
