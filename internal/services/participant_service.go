package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/session"
)

// ParticipantService manages the display name a session submits under
type ParticipantService interface {
	SetParticipant(ctx context.Context, st *session.State, name string) error
}

type participantService struct {
	persister Persister
}

// NewParticipantService creates a new ParticipantService
func NewParticipantService(persister Persister) ParticipantService {
	return &participantService{persister: persister}
}

// SetParticipant replaces the session's name and starts a fresh submission
// history. The name is not checked against the server.
func (s *participantService) SetParticipant(ctx context.Context, st *session.State, name string) error {
	log := logger.FromContext(ctx).WithPrefix("participant")

	name = strings.TrimSpace(name)
	if name == "" {
		log.Debug("rejected empty participant name")
		return fail(st, "participant_name", msgInvalidName)
	}

	st.SetParticipant(name)
	st.Notify(session.NoticeSuccess, fmt.Sprintf("Welcome, %s! You can now submit solutions.", name))
	save(ctx, s.persister, st)

	log.Info("session %s is now %q", st.ID(), name)
	return nil
}
