package constants

import (
	"fmt"
	"time"
)

// Redis Key Registry
// Centralizes all Redis keys and TTL values for the ticketflow application.
// Pattern: ticketflow:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

// Semi-static data (changes occasionally)
const (
	TTL_EVENT_DETAIL  = 2 * time.Hour   // event summaries
	TTL_EVENT_LISTING = 1 * time.Hour   // event listings
	TTL_TICKET_TYPES  = 5 * time.Minute // ticket-type catalog, invalidated on sale
)

// Highly dynamic data
const (
	TTL_ORDER_STATUS  = 10 * time.Second // order status snapshots for polling
	TTL_PROMO_LOOKUP  = 1 * time.Minute  // promo code lookups
	TTL_POLL_ATTEMPTS = 10 * time.Minute // reconciliation attempt counters
)

// ================== KEY BUILDERS ==================

func EventDetailKey(eventID string) string {
	return fmt.Sprintf("ticketflow:events:detail:%s", eventID)
}

func EventTicketTypesKey(eventID string) string {
	return fmt.Sprintf("ticketflow:events:ticket_types:%s", eventID)
}

func PromoLookupKey(code string) string {
	return fmt.Sprintf("ticketflow:promotions:code:%s", code)
}

// OrderStatusKey caches short-lived order status snapshots for polling.
func OrderStatusKey(orderID string) string {
	return fmt.Sprintf("ticketflow:orders:status:%s", orderID)
}

// CheckoutSessionKey stores the serialized checkout session.
func CheckoutSessionKey(sessionID string) string {
	return fmt.Sprintf("ticketflow:checkout:session:%s", sessionID)
}

// TicketTypeHeldKey is the per-ticket-type counter of quantities currently
// held by live checkout sessions.
func TicketTypeHeldKey(ticketTypeID string) string {
	return fmt.Sprintf("ticketflow:checkout:held:%s", ticketTypeID)
}

// SessionHoldKey records the per-session hold line items so a release can
// decrement exactly what was acquired.
func SessionHoldKey(sessionID string) string {
	return fmt.Sprintf("ticketflow:checkout:hold:%s", sessionID)
}

// ReconcileAttemptsKey counts provider verification attempts per payment so
// the poller's attempt cap survives process restarts.
func ReconcileAttemptsKey(paymentID string) string {
	return fmt.Sprintf("ticketflow:reconcile:attempts:%s", paymentID)
}

func RateLimitKey(clientIP, limitType string) string {
	return fmt.Sprintf("ticketflow:ratelimit:%s:%s", clientIP, limitType)
}
