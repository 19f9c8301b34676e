package worker_test

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/worker"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsJobs(t *testing.T) {
	pool := worker.NewPool(2, 8)
	pool.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}

	pool.Stop()
	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_SubmitDoesNotBlock(t *testing.T) {
	m := metrics.New()
	pool := worker.NewPool(1, 1, worker.WithMetrics(m))

	noop := funcJob{name: "noop", fn: func(context.Context) error { return nil }}
	require.NoError(t, pool.Submit(noop))
	assert.ErrorIs(t, pool.Submit(noop), worker.ErrQueueFull)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Jobs().WithLabelValues("noop", "dropped")))
	assert.Equal(t, 1, pool.QueueSize())

	pool.Stop()
	assert.ErrorIs(t, pool.Submit(noop), worker.ErrPoolClosed)
	assert.NotPanics(t, pool.Stop)
}

func TestPool_CountsOutcomes(t *testing.T) {
	m := metrics.New()
	pool := worker.NewPool(1, 4, worker.WithMetrics(m))
	pool.Start(context.Background())

	require.NoError(t, pool.Submit(funcJob{name: "flaky", fn: func(context.Context) error { return stderrors.New("boom") }}))
	require.NoError(t, pool.Submit(funcJob{name: "flaky", fn: func(context.Context) error { return nil }}))
	pool.Stop()

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Jobs().WithLabelValues("flaky", "error")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Jobs().WithLabelValues("flaky", "ok")))
}

type mockLoader struct{ mock.Mock }

func (m *mockLoader) LoadLeaderboard(ctx context.Context, st *session.State) error {
	return m.Called(ctx, st).Error(0)
}

type mockSweeper struct{ mock.Mock }

func (m *mockSweeper) Sweep(ctx context.Context, ttl time.Duration) (int, int64, error) {
	args := m.Called(ctx, ttl)
	return args.Int(0), args.Get(1).(int64), args.Error(2)
}

func TestJobs_Delegate(t *testing.T) {
	st := session.New("sess")

	loader := new(mockLoader)
	loader.On("LoadLeaderboard", mock.Anything, st).Return(nil).Once()
	refresh := &worker.RefreshLeaderboardJob{Leaderboard: loader, Session: st}
	assert.Equal(t, "refresh_leaderboard", refresh.Name())
	require.NoError(t, refresh.Run(context.Background()))
	loader.AssertExpectations(t)

	sweeper := new(mockSweeper)
	sweeper.On("Sweep", mock.Anything, time.Hour).Return(2, int64(1), nil).Once()
	sweep := &worker.SweepSessionsJob{Sweeper: sweeper, TTL: time.Hour}
	require.NoError(t, sweep.Run(context.Background()))
	sweeper.AssertExpectations(t)
}
