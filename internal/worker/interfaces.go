package worker

import (
	"context"
	"time"

	"github.com/vytor/codearena/internal/session"
)

// LeaderboardLoader refreshes a session's leaderboard snapshot.
// This avoids import cycles by not importing the services package
type LeaderboardLoader interface {
	LoadLeaderboard(ctx context.Context, st *session.State) error
}

// SessionSweeper drops sessions idle for longer than ttl.
type SessionSweeper interface {
	Sweep(ctx context.Context, ttl time.Duration) (live int, persisted int64, err error)
}
