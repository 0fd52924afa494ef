package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// EventPublisher pushes budget-check requests onto the event bus. The AMQP
// client satisfies it; a nil publisher disables events entirely.
type EventPublisher interface {
	PublishBudgetCheck(ctx context.Context, userID uuid.UUID, reason string) error
}

// publishCheck is best-effort: a broker outage must never fail the request
// that triggered it.
func publishCheck(ctx context.Context, events EventPublisher, userID uuid.UUID, reason string) {
	if events == nil {
		return
	}
	if err := events.PublishBudgetCheck(ctx, userID, reason); err != nil {
		slog.WarnContext(ctx, "Failed to publish budget check",
			"error", err,
			"user_id", userID,
			"reason", reason)
	}
}
