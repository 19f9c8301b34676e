package worker

import (
	"context"
	"time"

	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/session"
)

// RefreshLeaderboardJob reloads the leaderboard of one session that is
// looking at it.
type RefreshLeaderboardJob struct {
	Leaderboard LeaderboardLoader
	Session     *session.State
}

func (j *RefreshLeaderboardJob) Name() string { return "refresh_leaderboard" }

func (j *RefreshLeaderboardJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("session", j.Session.ID())
	log.Debug("polling leaderboard")
	return j.Leaderboard.LoadLeaderboard(ctx, j.Session)
}

// SweepSessionsJob drops idle sessions.
type SweepSessionsJob struct {
	Sweeper SessionSweeper
	TTL     time.Duration
}

func (j *SweepSessionsJob) Name() string { return "sweep_sessions" }

func (j *SweepSessionsJob) Run(ctx context.Context) error {
	live, persisted, err := j.Sweeper.Sweep(ctx, j.TTL)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("sweep removed %d live and %d persisted sessions", live, persisted)
	return nil
}
