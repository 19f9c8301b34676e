package jobs

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/models"
	"github.com/vytor/codearena/internal/services"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/testutil/mocks"
	"github.com/vytor/codearena/internal/worker"
)

func TestPollLeaderboards_OnlyRecentLeaderboardViewers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := now.Add(-10 * time.Minute)
	store := session.NewStore(nil, session.WithStoreClock(func() time.Time { return clock }))

	gone, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Touch(ctx, gone, session.ViewLeaderboard))

	clock = now
	watching, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Touch(ctx, watching, session.ViewLeaderboard))
	browsing, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Touch(ctx, browsing, session.ViewChallenges))

	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueLeaderboardRefresh", watching).Return(nil).Once()

	s := NewScheduler(queue, store, 30*time.Second, time.Minute)
	s.clock = func() time.Time { return now.Add(30 * time.Second) }

	assert.Equal(t, 1, s.PollLeaderboards(ctx))
	queue.AssertExpectations(t)
}

func TestPollLeaderboards_EnqueueFailureDoesNotStopPolling(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(nil)

	a, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Touch(ctx, a, session.ViewLeaderboard))
	b, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Touch(ctx, b, session.ViewLeaderboard))

	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueLeaderboardRefresh", mock.Anything).Return(worker.ErrQueueFull).Once()
	queue.On("EnqueueLeaderboardRefresh", mock.Anything).Return(nil).Once()

	s := NewScheduler(queue, store, 30*time.Second, time.Minute)
	assert.Equal(t, 1, s.PollLeaderboards(ctx))
	queue.AssertNumberOfCalls(t, "EnqueueLeaderboardRefresh", 2)
}

type loaderFunc func(ctx context.Context, st *session.State) error

func (f loaderFunc) LoadLeaderboard(ctx context.Context, st *session.State) error { return f(ctx, st) }

type sweeperFunc func(ctx context.Context, ttl time.Duration) (int, int64, error)

func (f sweeperFunc) Sweep(ctx context.Context, ttl time.Duration) (int, int64, error) {
	return f(ctx, ttl)
}

func TestWorkerQueue_RunsJobsOnPool(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())

	refreshed := make(chan string, 1)
	swept := make(chan time.Duration, 1)
	queue := NewWorkerQueue(pool,
		loaderFunc(func(_ context.Context, st *session.State) error {
			refreshed <- st.ID()
			return stderrors.New("upstream down")
		}),
		sweeperFunc(func(_ context.Context, ttl time.Duration) (int, int64, error) {
			swept <- ttl
			return 0, 0, nil
		}),
		12*time.Hour,
	)

	require.NoError(t, queue.EnqueueLeaderboardRefresh(session.New("sess")))
	require.NoError(t, queue.EnqueueSessionSweep())
	pool.Stop()

	assert.Equal(t, "sess", <-refreshed)
	assert.Equal(t, 12*time.Hour, <-swept)
}

func TestPollLeaderboards_FailedRefreshKeepsSnapshotAndPollingContinues(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(nil)
	st, err := store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Touch(ctx, st, session.ViewLeaderboard))

	client := new(mocks.MockChallengeClient)
	client.On("Leaderboard", mock.Anything).
		Return([]models.LeaderboardEntry{{Rank: 1, ParticipantName: "Alice", TotalScore: 300}}, nil).Once()
	client.On("Leaderboard", mock.Anything).
		Return(nil, errors.NewNetworkError("leaderboard", stderrors.New("connection refused"))).Twice()
	leaderboard := services.NewLeaderboardService(client, nil)
	require.NoError(t, leaderboard.LoadLeaderboard(ctx, st))

	attempts := make(chan error, 2)
	pool := worker.NewPool(1, 4)
	pool.Start(ctx)
	queue := NewWorkerQueue(pool,
		loaderFunc(func(ctx context.Context, st *session.State) error {
			err := leaderboard.LoadLeaderboard(ctx, st)
			attempts <- err
			return err
		}),
		sweeperFunc(func(context.Context, time.Duration) (int, int64, error) { return 0, 0, nil }),
		time.Hour,
	)
	s := NewScheduler(queue, store, 30*time.Second, time.Minute)

	for tick := 1; tick <= 2; tick++ {
		require.Equal(t, 1, s.PollLeaderboards(ctx), "tick %d", tick)
		select {
		case err := <-attempts:
			require.Error(t, err)
		case <-time.After(time.Second):
			t.Fatalf("refresh for tick %d never ran", tick)
		}
	}
	pool.Stop()

	entries, _ := st.Leaderboard()
	require.Len(t, entries, 1)
	assert.Equal(t, "Alice", entries[0].ParticipantName)
	assert.Equal(t, session.StatusError, st.Status().Kind)

	notices := st.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Failed to load leaderboard", notices[0].Message)
	client.AssertExpectations(t)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueSessionSweep").Return(nil).Maybe()

	s := NewScheduler(queue, session.NewStore(nil), 5*time.Millisecond, 5*time.Millisecond)
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
