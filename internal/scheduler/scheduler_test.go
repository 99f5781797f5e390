package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/merchlab/ordersync/internal/clock"
	"github.com/merchlab/ordersync/internal/config"
	statusdomain "github.com/merchlab/ordersync/internal/statusboard/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type statusStub struct {
	calls    atomic.Int64
	err      error
	overview statusdomain.Overview
	block    bool
}

func (s *statusStub) Overview(ctx context.Context) (statusdomain.Overview, error) {
	s.calls.Add(1)
	if s.block {
		<-ctx.Done()
		return statusdomain.Overview{}, ctx.Err()
	}
	if s.err != nil {
		return statusdomain.Overview{}, s.err
	}
	return s.overview, nil
}

func (s *statusStub) ExportCSV(ctx context.Context) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *statusStub) ExportPDF(ctx context.Context) (io.Reader, error) {
	return nil, errors.New("not implemented")
}

func newTestScheduler(t *testing.T, status statusdomain.Service) *Scheduler {
	t.Helper()

	fc := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	s, err := New(Params{
		Log:    zap.NewNop(),
		Status: status,
		Locker: nil,
		Clock:  fc,
		Config: config.Config{Pipeline: config.PipelineConfig{SyncIntervalMins: 30}},
	})
	require.NoError(t, err)
	return s
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	require.Error(t, err)
}

func TestRunOnceSuccess(t *testing.T) {
	status := &statusStub{overview: statusdomain.Overview{TotalOrders: 5, StuckOrders: 1}}
	s := newTestScheduler(t, status)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, int64(1), status.calls.Load())
}

func TestRunOnceJobErrorPropagates(t *testing.T) {
	boom := errors.New("upstream unavailable")
	status := &statusStub{err: boom}
	s := newTestScheduler(t, status)

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "sync_status")
}

func TestRunOnceTimeoutIsSoftFailure(t *testing.T) {
	status := &statusStub{block: true}
	s := newTestScheduler(t, status)
	s.timeout = 50 * time.Millisecond

	require.NoError(t, s.RunOnce(context.Background()), "a deadline is not a job failure")
	assert.Equal(t, int64(1), status.calls.Load())
}

type lockStub struct {
	held     bool
	err      error
	tryCalls atomic.Int64
	releases atomic.Int64
}

func (l *lockStub) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.tryCalls.Add(1)
	if l.err != nil {
		return "", false, l.err
	}
	if l.held {
		return "", false, nil
	}
	return "lock-token", true, nil
}

func (l *lockStub) Release(ctx context.Context, key, token string) error {
	l.releases.Add(1)
	return nil
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	status := &statusStub{}
	s := newTestScheduler(t, status)
	guard := &lockStub{held: true}
	s.locker = guard

	require.NoError(t, s.RunOnce(context.Background()), "a held lock skips the pass, it does not fail it")
	assert.Equal(t, int64(0), status.calls.Load(), "sync must not run while another instance holds the lock")
	assert.Equal(t, int64(1), guard.tryCalls.Load())
	assert.Equal(t, int64(0), guard.releases.Load(), "a lock we did not take must not be released")
}

func TestRunOnceReleasesLockAfterRun(t *testing.T) {
	status := &statusStub{}
	s := newTestScheduler(t, status)
	guard := &lockStub{}
	s.locker = guard

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, int64(1), status.calls.Load())
	assert.Equal(t, int64(1), guard.releases.Load())
}

func TestRunOnceLockErrorFailsRun(t *testing.T) {
	status := &statusStub{}
	s := newTestScheduler(t, status)
	s.locker = &lockStub{err: errors.New("redis unavailable")}

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire job lock")
	assert.Equal(t, int64(0), status.calls.Load())
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	status := &statusStub{}
	s := newTestScheduler(t, status)
	s.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunForever(ctx)
		close(done)
	}()

	// Let the immediate pass and at least one tick land.
	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.GreaterOrEqual(t, status.calls.Load(), int64(2))
}
