package services

import (
	"context"

	"github.com/vytor/codearena/internal/challengeapi"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/models"
	"github.com/vytor/codearena/internal/session"
)

// PortalService starts sessions and reports upstream health
type PortalService interface {
	Initialize(ctx context.Context, st *session.State) error
	Health(ctx context.Context) (*models.Health, error)
}

type portalService struct {
	client      challengeapi.ClientInterface
	challenges  ChallengeService
	leaderboard LeaderboardService
}

// NewPortalService creates a new PortalService
func NewPortalService(client challengeapi.ClientInterface, challenges ChallengeService, leaderboard LeaderboardService) PortalService {
	return &portalService{
		client:      client,
		challenges:  challenges,
		leaderboard: leaderboard,
	}
}

// Initialize checks the server, then loads the catalog and the leaderboard.
// The loaders report their own failures; only an unreachable server marks
// the session disconnected.
func (s *portalService) Initialize(ctx context.Context, st *session.State) error {
	log := logger.FromContext(ctx).WithPrefix("portal")
	st.SetStatus(msgInitializing, session.StatusConnecting)

	health, err := s.client.Health(ctx)
	if err != nil {
		log.Error("challenge server health check failed: %v", err)
		st.SetStatus(msgDisconnected, session.StatusDisconnected)
		st.Notify(session.NoticeError, msgConnectFailed)
		return err
	}
	log.Debug("challenge server healthy: status=%s service=%s", health.Status, health.Service)

	challengesErr := s.challenges.LoadChallenges(ctx, st)
	leaderboardErr := s.leaderboard.LoadLeaderboard(ctx, st)
	st.MarkUpdated()

	if challengesErr != nil {
		return challengesErr
	}
	if leaderboardErr != nil {
		return leaderboardErr
	}
	st.Connected()
	log.Info("session %s initialized", st.ID())
	return nil
}

func (s *portalService) Health(ctx context.Context) (*models.Health, error) {
	return s.client.Health(ctx)
}
