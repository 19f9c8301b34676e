package services

import (
	"context"

	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/session"
)

// Persister saves the durable part of a session. session.Store implements it.
type Persister interface {
	Save(ctx context.Context, st *session.State) error
}

// User-facing messages.
const (
	msgInvalidName          = "Please enter a valid name"
	msgLoadingChallenges    = "Loading challenges..."
	msgLoadChallengesFailed = "Failed to load challenges. Please try again."
	msgSelectChallenge      = "Please select a challenge"
	msgEnterSolution        = "Please enter your solution code"
	msgSetName              = "Please set your name first"
	msgSubmitting           = "Submitting solution..."
	msgSubmitFailed         = "Failed to submit solution. Please try again."
	msgDetailsFailed        = "Failed to load submission details"
	msgLoadingLeaderboard   = "Loading leaderboard..."
	msgLeaderboardFailed    = "Failed to load leaderboard"
	msgInitializing         = "Initializing..."
	msgDisconnected         = "Disconnected"
	msgConnectFailed        = "Failed to connect to the challenge server. Please make sure the server is running."
	msgEnterURL             = "Please enter a URL"
	msgInvalidJSONBody      = "Invalid JSON in request body"
)

// save persists st, logging instead of failing the operation.
func save(ctx context.Context, p Persister, st *session.State) {
	if p == nil {
		return
	}
	if err := p.Save(ctx, st); err != nil {
		logger.FromContext(ctx).Error("failed to persist session %s: %v", st.ID(), err)
	}
}

// discardStale records a result that arrived after a newer request was issued.
func discardStale(ctx context.Context, m *metrics.Metrics, t session.Ticket) {
	logger.FromContext(ctx).Debug("discarding stale %s response (gen=%d)", t.Cache, t.Gen)
	m.CountStale(t.Cache)
}

// fail reports a local validation failure as an error notice.
func fail(st *session.State, field, message string) error {
	st.Notify(session.NoticeError, message)
	return errors.NewValidationError(field, message)
}

// networkCause is the text shown after "Network error: ".
func networkCause(err error) string {
	appErr, ok := errors.As(err)
	if !ok {
		return err.Error()
	}
	if appErr.Err != nil {
		return appErr.Err.Error()
	}
	return appErr.Message
}
