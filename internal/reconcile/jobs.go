package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ticketflow/internal/orders"
	"ticketflow/internal/payments"
	"ticketflow/internal/shared/config"
	"ticketflow/internal/shared/constants"
	"ticketflow/pkg/logger"
)

// JobProcessor sweeps stale in-flight payments and re-verifies them with
// their provider. It is the safety net behind webhooks: a lost delivery
// still converges within the sweep interval.
type JobProcessor struct {
	service orders.Service
	redis   *redis.Client
	config  *JobConfig
	log     *logger.Logger
	done    chan struct{}

	// Fallback attempt counters for when Redis is unavailable. The cap
	// still holds, it just resets on restart.
	mu       sync.Mutex
	attempts map[string]int
}

// JobConfig contains configuration for the reconciliation sweep.
type JobConfig struct {
	SweepInterval time.Duration
	PollInterval  time.Duration
	MaxAttempts   int
	GracePeriod   time.Duration
	BatchSize     int
}

// DefaultJobConfig returns default reconciliation configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		SweepInterval: 30 * time.Second,
		PollInterval:  2 * time.Second,
		MaxAttempts:   10,
		GracePeriod:   1 * time.Minute,
		BatchSize:     50,
	}
}

// JobConfigFromSettings maps the application config onto a job config.
func JobConfigFromSettings(cfg config.ReconcileConfig) *JobConfig {
	jc := DefaultJobConfig()
	if cfg.SweepInterval > 0 {
		jc.SweepInterval = cfg.SweepInterval
	}
	if cfg.PollInterval > 0 {
		jc.PollInterval = cfg.PollInterval
	}
	if cfg.MaxAttempts > 0 {
		jc.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.GracePeriod > 0 {
		jc.GracePeriod = cfg.GracePeriod
	}
	if cfg.BatchSize > 0 {
		jc.BatchSize = cfg.BatchSize
	}
	return jc
}

// NewJobProcessor creates a new reconciliation job processor
func NewJobProcessor(service orders.Service, redisClient *redis.Client, config *JobConfig, log *logger.Logger) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		service:  service,
		redis:    redisClient,
		config:   config,
		log:      log,
		done:     make(chan struct{}),
		attempts: make(map[string]int),
	}
}

// Start starts the reconciliation sweep loop.
func (jp *JobProcessor) Start(ctx context.Context) {
	jp.log.Info("Starting payment reconciliation jobs",
		"sweep_interval", jp.config.SweepInterval,
		"max_attempts", jp.config.MaxAttempts,
	)
	go jp.startSweeper(ctx)
}

// Stop stops the reconciliation sweep loop.
func (jp *JobProcessor) Stop() {
	close(jp.done)
	jp.log.Info("Payment reconciliation jobs stopped")
}

func (jp *JobProcessor) startSweeper(ctx context.Context) {
	ticker := time.NewTicker(jp.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.sweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep verifies every stale initiated payment once, spacing provider calls
// by the poll interval. The per-payment attempt counter lives in Redis so
// the cap survives restarts; without Redis it lives in process memory.
func (jp *JobProcessor) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-jp.config.GracePeriod)
	stale, err := jp.service.InitiatedPaymentsBefore(ctx, cutoff, jp.config.BatchSize)
	if err != nil {
		jp.log.Error("Failed to list stale payments", "error", err)
		return
	}

	for i, payment := range stale {
		select {
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		if i > 0 {
			time.Sleep(jp.config.PollInterval)
		}
		jp.verifyOne(ctx, payment)
	}
}

func (jp *JobProcessor) verifyOne(ctx context.Context, payment orders.Payment) {
	attempts, err := jp.bumpAttempts(ctx, payment.ID.String())
	if err != nil {
		jp.log.Error("Failed to track reconcile attempts", "error", err, "payment_id", payment.ID.String())
		return
	}
	if attempts > jp.config.MaxAttempts {
		jp.log.LogReconcileGaveUp(ctx, payment.ID.String(), attempts-1)
		return
	}

	status, err := jp.service.VerifyAndApply(ctx, &payment, "reconcile")
	if err != nil {
		jp.log.Error("Failed to verify payment",
			"error", err,
			"payment_id", payment.ID.String(),
			"provider", payment.Provider,
			"attempt", attempts,
		)
		return
	}

	if status != payments.StatusPending {
		jp.clearAttempts(ctx, payment.ID.String())
	}
}

func (jp *JobProcessor) bumpAttempts(ctx context.Context, paymentID string) (int, error) {
	if jp.redis == nil {
		jp.mu.Lock()
		defer jp.mu.Unlock()
		jp.attempts[paymentID]++
		return jp.attempts[paymentID], nil
	}

	key := constants.ReconcileAttemptsKey(paymentID)
	count, err := jp.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		jp.redis.Expire(ctx, key, constants.TTL_POLL_ATTEMPTS)
	}
	return int(count), nil
}

func (jp *JobProcessor) clearAttempts(ctx context.Context, paymentID string) {
	if jp.redis == nil {
		jp.mu.Lock()
		defer jp.mu.Unlock()
		delete(jp.attempts, paymentID)
		return
	}
	jp.redis.Del(ctx, constants.ReconcileAttemptsKey(paymentID))
}
