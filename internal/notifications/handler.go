package notifications

import (
	"context"

	"ticketflow/pkg/logger"
)

// LoggingOrderEventHandler records consumed order events. It stands in for
// downstream delivery (email, SMS) which runs out of process.
type LoggingOrderEventHandler struct {
	log *logger.Logger
}

func NewLoggingOrderEventHandler(log *logger.Logger) *LoggingOrderEventHandler {
	return &LoggingOrderEventHandler{log: log}
}

func (h *LoggingOrderEventHandler) HandleOrderEvent(ctx context.Context, event *OrderEvent) error {
	h.log.InfoContext(ctx, "Order Event Consumed",
		"type", string(event.Type),
		"order_id", event.OrderID.String(),
		"user_email", event.UserEmail,
		"total_cents", event.TotalCents,
	)
	return nil
}
