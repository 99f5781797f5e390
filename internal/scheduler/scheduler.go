package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/merchlab/ordersync/internal/clock"
	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/lock"
	"github.com/merchlab/ordersync/internal/metrics"
	statusdomain "github.com/merchlab/ordersync/internal/statusboard/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	syncJobName = "sync_status"
	syncLockKey = "ordersync:job:sync_status"
)

// jobLocker is the advisory-lock surface the scheduler needs. A nil
// *lock.Locker satisfies it in single-instance mode.
type jobLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Status statusdomain.Service
	Locker *lock.Locker
	Clock  clock.Clock
	Config config.Config
}

type Scheduler struct {
	log      *zap.Logger
	status   statusdomain.Service
	locker   jobLocker
	clock    clock.Clock
	interval time.Duration
	timeout  time.Duration
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Status == nil || p.Clock == nil {
		return nil, errors.New("scheduler: missing dependency")
	}
	interval := time.Duration(p.Config.Pipeline.SyncIntervalMins) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		log:      p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		status:   p.Status,
		locker:   p.Locker,
		clock:    p.Clock,
		interval: interval,
		timeout:  10 * time.Minute,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	runID := ulid.Make().String()
	log := s.log.With(
		zap.String("job", name),
		zap.String("run_id", runID),
	)
	log.Info("job started")

	err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	metrics.SyncDuration.Observe(duration.Seconds())

	if err == nil {
		metrics.SyncRunsTotal.WithLabelValues("ok").Inc()
		log.Info("job finished", zap.Duration("duration", duration))
		return nil
	}

	// A deadline is a soft failure: the next tick picks up where this run
	// left off.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		metrics.SyncRunsTotal.WithLabelValues("timeout").Inc()
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	metrics.SyncRunsTotal.WithLabelValues("error").Inc()
	log.Error("job failed", zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce executes a single guarded sync pass. When another instance holds
// the job lock the pass is skipped, not queued.
func (s *Scheduler) RunOnce(parent context.Context) error {
	token, ok, err := s.locker.TryLock(parent, syncLockKey, s.timeout)
	if err != nil {
		return fmt.Errorf("acquire job lock: %w", err)
	}
	if !ok {
		s.log.Info("sync already running elsewhere, skipping")
		return nil
	}
	defer func() {
		if releaseErr := s.locker.Release(parent, syncLockKey, token); releaseErr != nil {
			s.log.Warn("failed to release job lock", zap.Error(releaseErr))
		}
	}()

	return s.runJob(parent, syncJobName, s.timeout, s.syncStatusJob)
}

func (s *Scheduler) syncStatusJob(ctx context.Context) error {
	overview, err := s.status.Overview(ctx)
	if err != nil {
		return err
	}
	s.log.Info("sync completed",
		zap.Int("orders", overview.TotalOrders),
		zap.Int("stuck", overview.StuckOrders),
	)
	return nil
}

// RunForever runs an immediate pass and then one per interval until the
// context is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		s.log.Error("sync run failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Error("sync run failed", zap.Error(err))
			}
		}
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
)
