package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/codearena/internal/challengeapi"
	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/models"
	"github.com/vytor/codearena/internal/session"
)

// DefaultResultDisplay is how long a submission result stays on screen.
const DefaultResultDisplay = 10 * time.Second

// SubmissionForm is what the participant typed into the submit view.
// ChallengeID is zero when nothing is selected.
type SubmissionForm struct {
	ChallengeID int
	Solution    string
}

// SubmissionService handles solution submission and lookups
type SubmissionService interface {
	SubmitSolution(ctx context.Context, st *session.State, form SubmissionForm) (*models.SubmissionReceipt, error)
	GetSubmissionDetails(ctx context.Context, st *session.State, id string) (*models.SubmissionDetail, error)
	ClearSolution(st *session.State)
}

type submissionService struct {
	client        challengeapi.ClientInterface
	persister     Persister
	metrics       *metrics.Metrics
	resultDisplay time.Duration
}

// NewSubmissionService creates a new SubmissionService. A non-positive
// resultDisplay uses DefaultResultDisplay.
func NewSubmissionService(client challengeapi.ClientInterface, persister Persister, m *metrics.Metrics, resultDisplay time.Duration) SubmissionService {
	if resultDisplay <= 0 {
		resultDisplay = DefaultResultDisplay
	}
	return &submissionService{
		client:        client,
		persister:     persister,
		metrics:       m,
		resultDisplay: resultDisplay,
	}
}

// SubmitSolution checks the form locally, then submits it. Nothing is sent
// when a precondition fails. On any failure the draft is kept.
func (s *submissionService) SubmitSolution(ctx context.Context, st *session.State, form SubmissionForm) (*models.SubmissionReceipt, error) {
	log := logger.FromContext(ctx).WithPrefix("submit")

	st.SetDraft(session.Draft{ChallengeID: form.ChallengeID, Solution: form.Solution})

	if form.ChallengeID <= 0 {
		return nil, fail(st, "challenge_id", msgSelectChallenge)
	}
	solution := strings.TrimSpace(form.Solution)
	if solution == "" {
		return nil, fail(st, "solution", msgEnterSolution)
	}
	if !st.HasParticipant() {
		return nil, fail(st, "participant_name", msgSetName)
	}

	participant := st.Participant()
	st.SetStatus(msgSubmitting, session.StatusLoading)
	log.Info("submitting challenge %d for %q", form.ChallengeID, participant)

	receipt, err := s.client.Submit(ctx, models.SubmissionRequest{
		ChallengeID:     form.ChallengeID,
		Solution:        solution,
		ParticipantName: participant,
	})
	now := st.Now()
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Code == errors.ErrCodeProtocol && appErr.UpstreamStatus != 0 {
			// The server answered and refused the submission.
			log.Warn("submission refused: %v", err)
			st.ShowResult(session.ResultPanel{
				Message:       appErr.Message,
				MissingFields: appErr.MissingFields,
				ShownAt:       now,
				ExpiresAt:     now.Add(s.resultDisplay),
			})
			st.SetStatus("Error", session.StatusError)
			s.metrics.CountSubmission("refused")
			return nil, err
		}
		log.Error("submission failed: %v", err)
		st.Notify(session.NoticeError, msgSubmitFailed)
		st.SetStatus("Error", session.StatusError)
		s.metrics.CountSubmission("failed")
		return nil, err
	}

	st.PrependSubmission(models.SubmissionFromReceipt(form.ChallengeID, *receipt))
	st.ClearSolution()
	st.ShowResult(session.ResultPanel{
		Success:   true,
		Receipt:   receipt,
		ShownAt:   now,
		ExpiresAt: now.Add(s.resultDisplay),
	})
	st.Connected()
	save(ctx, s.persister, st)
	s.metrics.CountSubmission(receipt.Status)

	log.Info("submission %s: status=%s score=%d", receipt.SubmissionID, receipt.Status, receipt.Score)
	return receipt, nil
}

// GetSubmissionDetails fetches one submission. It is never cached. st may be
// nil when there is no session to notify.
func (s *submissionService) GetSubmissionDetails(ctx context.Context, st *session.State, id string) (*models.SubmissionDetail, error) {
	log := logger.FromContext(ctx).WithPrefix("submission")

	detail, err := s.client.GetSubmission(ctx, strings.TrimSpace(id))
	if err != nil {
		log.Warn("failed to get submission %s: %v", id, err)
		if st != nil {
			st.Notify(session.NoticeError, msgDetailsFailed)
		}
		return nil, err
	}
	return detail, nil
}

// ClearSolution empties the editor and hides the result panel.
func (s *submissionService) ClearSolution(st *session.State) {
	st.ClearSolution()
	st.HideResult()
}
