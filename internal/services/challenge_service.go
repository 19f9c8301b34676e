package services

import (
	"context"
	"fmt"

	"github.com/vytor/codearena/internal/challengeapi"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/models"
	"github.com/vytor/codearena/internal/session"
)

// ChallengeService loads and browses the challenge catalog
type ChallengeService interface {
	LoadChallenges(ctx context.Context, st *session.State) error
	FilterChallenges(st *session.State, difficulty string) []models.Challenge
	SelectChallenge(st *session.State, id int) (*models.Challenge, bool)
}

type challengeService struct {
	client  challengeapi.ClientInterface
	metrics *metrics.Metrics
}

// NewChallengeService creates a new ChallengeService
func NewChallengeService(client challengeapi.ClientInterface, m *metrics.Metrics) ChallengeService {
	return &challengeService{client: client, metrics: m}
}

// LoadChallenges replaces the cached catalog with the server's. On failure the
// previous catalog stays.
func (s *challengeService) LoadChallenges(ctx context.Context, st *session.State) error {
	log := logger.FromContext(ctx).WithPrefix("challenges")

	ticket := st.Begin(session.CacheChallenges)
	st.SetStatus(msgLoadingChallenges, session.StatusLoading)

	list, err := s.client.ListChallenges(ctx)
	if err != nil {
		if !st.IsCurrent(ticket) {
			discardStale(ctx, s.metrics, ticket)
			return err
		}
		log.Warn("failed to load challenges: %v", err)
		st.Notify(session.NoticeError, msgLoadChallengesFailed)
		st.SetStatus("Error", session.StatusError)
		return err
	}

	if !st.ApplyChallenges(ticket, list) {
		discardStale(ctx, s.metrics, ticket)
		return nil
	}
	log.Debug("loaded %d challenges", len(list))
	st.Connected()
	return nil
}

func (s *challengeService) FilterChallenges(st *session.State, difficulty string) []models.Challenge {
	return FilterByDifficulty(st.Challenges(), difficulty)
}

// SelectChallenge pre-selects id in the submit form and announces it when the
// challenge is known.
func (s *challengeService) SelectChallenge(st *session.State, id int) (*models.Challenge, bool) {
	st.SelectChallenge(id)
	c, ok := st.Challenge(id)
	if !ok {
		return nil, false
	}
	st.Notify(session.NoticeInfo, fmt.Sprintf("Selected: %s (%s - %d points)", c.Title, c.Difficulty, c.Points))
	return &c, true
}

// FilterByDifficulty returns the challenges whose difficulty matches, in
// their original order. An empty difficulty matches everything.
func FilterByDifficulty(list []models.Challenge, difficulty string) []models.Challenge {
	out := make([]models.Challenge, 0, len(list))
	for _, c := range list {
		if difficulty == "" || models.EqualDifficulty(c.Difficulty, difficulty) {
			out = append(out, c)
		}
	}
	return out
}
