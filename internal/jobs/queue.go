package jobs

import "github.com/vytor/codearena/internal/session"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueLeaderboardRefresh(st *session.State) error
	EnqueueSessionSweep() error
}
