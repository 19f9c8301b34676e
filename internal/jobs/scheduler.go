package jobs

import (
	"context"
	"time"

	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/session"
)

// ActiveSessions lists sessions currently looking at a view.
type ActiveSessions interface {
	Viewing(view session.View, since time.Time) []*session.State
}

// Scheduler enqueues the periodic jobs: a leaderboard refresh for every
// session on the leaderboard view, and the idle session sweep.
type Scheduler struct {
	queue         JobQueue
	sessions      ActiveSessions
	pollInterval  time.Duration
	sweepInterval time.Duration
	clock         func() time.Time
}

func NewScheduler(queue JobQueue, sessions ActiveSessions, pollInterval, sweepInterval time.Duration) *Scheduler {
	return &Scheduler{
		queue:         queue,
		sessions:      sessions,
		pollInterval:  pollInterval,
		sweepInterval: sweepInterval,
		clock:         time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	log.Info("polling leaderboard every %v, sweeping sessions every %v", s.pollInterval, s.sweepInterval)

	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()
	sweep := time.NewTicker(s.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("scheduler stopped")
			return
		case <-poll.C:
			s.PollLeaderboards(ctx)
		case <-sweep.C:
			if err := s.queue.EnqueueSessionSweep(); err != nil {
				log.Warn("failed to enqueue session sweep: %v", err)
			}
		}
	}
}

// PollLeaderboards enqueues one refresh per session seen on the leaderboard
// view within the last two poll intervals. It returns the number enqueued.
// A session whose browser went away stops being polled once it falls out
// of that window.
func (s *Scheduler) PollLeaderboards(ctx context.Context) int {
	log := logger.FromContext(ctx).WithPrefix("scheduler")

	since := s.clock().Add(-2 * s.pollInterval)
	enqueued := 0
	for _, st := range s.sessions.Viewing(session.ViewLeaderboard, since) {
		if err := s.queue.EnqueueLeaderboardRefresh(st); err != nil {
			log.Warn("failed to enqueue leaderboard refresh for %s: %v", st.ID(), err)
			continue
		}
		enqueued++
	}
	if enqueued > 0 {
		log.Debug("enqueued %d leaderboard refreshes", enqueued)
	}
	return enqueued
}
