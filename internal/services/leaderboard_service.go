package services

import (
	"context"

	"github.com/vytor/codearena/internal/challengeapi"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/session"
)

// LeaderboardService keeps a session's leaderboard snapshot current
type LeaderboardService interface {
	LoadLeaderboard(ctx context.Context, st *session.State) error
}

type leaderboardService struct {
	client  challengeapi.ClientInterface
	metrics *metrics.Metrics
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(client challengeapi.ClientInterface, m *metrics.Metrics) LeaderboardService {
	return &leaderboardService{client: client, metrics: m}
}

// LoadLeaderboard replaces the snapshot with the server's ranking. On failure
// the previous snapshot stays.
func (s *leaderboardService) LoadLeaderboard(ctx context.Context, st *session.State) error {
	log := logger.FromContext(ctx).WithPrefix("leaderboard")

	ticket := st.Begin(session.CacheLeaderboard)
	st.SetStatus(msgLoadingLeaderboard, session.StatusLoading)

	entries, err := s.client.Leaderboard(ctx)
	if err != nil {
		if !st.IsCurrent(ticket) {
			discardStale(ctx, s.metrics, ticket)
			return err
		}
		log.Warn("failed to load leaderboard: %v", err)
		st.Notify(session.NoticeError, msgLeaderboardFailed)
		st.SetStatus("Error", session.StatusError)
		return err
	}

	if !st.ApplyLeaderboard(ticket, entries) {
		discardStale(ctx, s.metrics, ticket)
		return nil
	}
	log.Debug("loaded %d leaderboard entries", len(entries))
	st.Connected()
	return nil
}
