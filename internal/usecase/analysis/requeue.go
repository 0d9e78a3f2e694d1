package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

// RequeueReport summarizes one re-enqueue pass
type RequeueReport struct {
	Considered   int   `json:"considered"`
	Requeued     int64 `json:"requeued"`
	NotRetryable int   `json:"not_retryable"`
	TooRecent    int   `json:"too_recent"`
	StaleReset   int64 `json:"stale_reset"`
}

// Requeuer moves failed queue items back to pending, bounded by a retry budget.
// It only runs when an operator asks.
type Requeuer struct {
	queueRepo  repositories.QueueRepository
	maxRetries int
	baseDelay  time.Duration
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewRequeuer creates a Requeuer. staleAfter bounds how long a claim may sit in
// processing before a forced pass resets it; zero disables the reset.
func NewRequeuer(queueRepo repositories.QueueRepository, maxRetries int, baseDelay, staleAfter time.Duration, logger *zap.Logger) *Requeuer {
	return &Requeuer{
		queueRepo:  queueRepo,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// RequeueFailed re-enqueues failed items with retry_count < maxRetries whose last
// error looks transient and whose backoff has elapsed. force skips both checks
// but still honours maxRetries, and also releases claims left in processing
// for longer than staleAfter.
func (r *Requeuer) RequeueFailed(ctx context.Context, force bool) (*RequeueReport, error) {
	report := &RequeueReport{}
	now := r.now()

	if force && r.staleAfter > 0 {
		n, err := r.queueRepo.ResetStale(ctx, now.Add(-r.staleAfter))
		if err != nil {
			return nil, fmt.Errorf("reset stale claims: %w", err)
		}
		report.StaleReset = n
	}

	items, err := r.queueRepo.ListFailed(ctx, r.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("list failed queue items: %w", err)
	}
	report.Considered = len(items)
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !force {
			msg := ""
			if item.ErrorMessage != nil {
				msg = *item.ErrorMessage
			}
			if !jobcontext.IsRetryableMessage(msg) {
				report.NotRetryable++
				continue
			}
			if now.Sub(item.UpdatedAt) < jobcontext.CalculateBackoff(item.RetryCount-1, r.baseDelay) {
				report.TooRecent++
				continue
			}
		}
		ids = append(ids, item.ID)
	}

	n, err := r.queueRepo.Requeue(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("requeue failed items: %w", err)
	}
	report.Requeued = n

	if r.logger != nil {
		r.logger.Info("🔁 Requeued failed analysis items",
			zap.Int("considered", report.Considered),
			zap.Int64("requeued", report.Requeued),
			zap.Int("not_retryable", report.NotRetryable),
			zap.Int("too_recent", report.TooRecent),
			zap.Int64("stale_reset", report.StaleReset),
			zap.Bool("force", force),
		)
	}
	return report, nil
}
