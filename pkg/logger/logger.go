package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithUserID adds user ID to logger context
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("user_id", userID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Business logic logging methods

// LogCheckoutSessionStarted logs when a checkout session acquires its hold
func (l *Logger) LogCheckoutSessionStarted(ctx context.Context, sessionID, eventID, userID string, ttl time.Duration) {
	l.Logger.InfoContext(ctx,
		"Checkout Session Started",
		slog.String("session_id", sessionID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
		slog.Duration("hold_ttl", ttl),
	)
}

// LogOrderCreated logs when an order is created
func (l *Logger) LogOrderCreated(ctx context.Context, orderID, eventID, userID string, totalCents int64) {
	l.Logger.InfoContext(ctx,
		"Order Created",
		slog.String("order_id", orderID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
		slog.Int64("total_cents", totalCents),
	)
}

// LogPaymentInitiated logs when a provider payment is initiated
func (l *Logger) LogPaymentInitiated(ctx context.Context, orderID, provider, reference string) {
	l.Logger.InfoContext(ctx,
		"Payment Initiated",
		slog.String("order_id", orderID),
		slog.String("provider", provider),
		slog.String("reference", reference),
	)
}

// LogOrderPaid logs when an order reaches its terminal paid state
func (l *Logger) LogOrderPaid(ctx context.Context, orderID, intentID, source string) {
	l.Logger.InfoContext(ctx,
		"Order Paid",
		slog.String("order_id", orderID),
		slog.String("payment_intent_id", intentID),
		slog.String("confirmation_source", source),
	)
}

// LogPaymentFailed logs a failed payment
func (l *Logger) LogPaymentFailed(ctx context.Context, orderID, reference, reason string) {
	l.Logger.WarnContext(ctx,
		"Payment Failed",
		slog.String("order_id", orderID),
		slog.String("reference", reference),
		slog.String("reason", reason),
	)
}

// LogReconcileGaveUp logs when the poller exhausts its attempt cap
func (l *Logger) LogReconcileGaveUp(ctx context.Context, paymentID string, attempts int) {
	l.Logger.WarnContext(ctx,
		"Reconciliation Exhausted",
		slog.String("payment_id", paymentID),
		slog.Int("attempts", attempts),
	)
}

// Security logging methods

// LogWebhookRejected logs a webhook that failed signature verification
func (l *Logger) LogWebhookRejected(ctx context.Context, provider, ip, reason string) {
	l.Logger.WarnContext(ctx,
		"Webhook Rejected",
		slog.String("provider", provider),
		slog.String("ip", ip),
		slog.String("reason", reason),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
