package jobs

import (
	"time"

	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool        *worker.Pool
	leaderboard worker.LeaderboardLoader
	sweeper     worker.SessionSweeper
	sessionTTL  time.Duration
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(
	pool *worker.Pool,
	leaderboard worker.LeaderboardLoader,
	sweeper worker.SessionSweeper,
	sessionTTL time.Duration,
) JobQueue {
	return &WorkerQueue{
		pool:        pool,
		leaderboard: leaderboard,
		sweeper:     sweeper,
		sessionTTL:  sessionTTL,
	}
}

func (q *WorkerQueue) EnqueueLeaderboardRefresh(st *session.State) error {
	return q.pool.Submit(&worker.RefreshLeaderboardJob{
		Leaderboard: q.leaderboard,
		Session:     st,
	})
}

func (q *WorkerQueue) EnqueueSessionSweep() error {
	return q.pool.Submit(&worker.SweepSessionsJob{
		Sweeper: q.sweeper,
		TTL:     q.sessionTTL,
	})
}
