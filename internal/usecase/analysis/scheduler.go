package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// QueueRunner is the operation a Scheduler triggers
type QueueRunner interface {
	ProcessQueue(ctx context.Context) (*RunReport, error)
}

// Scheduler triggers ProcessQueue on a fixed interval. Ticks that arrive while
// a run is in progress are skipped.
type Scheduler struct {
	runner    QueueRunner
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

func NewScheduler(runner QueueRunner, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Start launches the ticker goroutine
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if s.isRunning {
		return fmt.Errorf("scheduler already running")
	}

	s.isRunning = true
	s.stopChan = make(chan struct{})

	if s.logger != nil {
		s.logger.Info("🚀 Starting analysis scheduler", zap.Duration("interval", s.interval))
	}

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop signals the loop and waits for an in-flight run to return
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return fmt.Errorf("scheduler not running")
	}

	if s.logger != nil {
		s.logger.Info("🛑 Stopping analysis scheduler...")
	}

	close(s.stopChan)
	s.wg.Wait()
	s.isRunning = false

	if s.logger != nil {
		s.logger.Info("✅ Analysis scheduler stopped")
	}
	return nil
}

func (s *Scheduler) loop(parentCtx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-parentCtx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithCancel(parentCtx)
			go func() {
				select {
				case <-s.stopChan:
					cancel()
				case <-ctx.Done():
				}
			}()
			report, err := s.runner.ProcessQueue(ctx)
			cancel()
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Scheduled queue run failed", zap.Error(err))
				}
				continue
			}
			if s.logger != nil && report.Processed > 0 {
				s.logger.Debug("Scheduled queue run done", zap.String("run_id", report.RunID), zap.Int("processed", report.Processed))
			}
		}
	}
}
