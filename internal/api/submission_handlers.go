package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/services"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/view"
)

func (s *Server) handleSubmitPage(w http.ResponseWriter, r *http.Request) {
	st := sessionFromContext(r.Context())
	s.renderView(w, r, st, session.ViewSubmit, "submit", "Submit Solution", view.BuildSubmit(st, st.Now()))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := sessionFromContext(ctx)

	// An empty or malformed selection is reported by the service.
	id, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("challenge_id")))
	form := services.SubmissionForm{
		ChallengeID: id,
		Solution:    r.FormValue("solution"),
	}

	if _, err := s.Submissions.SubmitSolution(ctx, st, form); err != nil {
		logger.FromContext(ctx).Debug("submission not accepted: %v", err)
	}
	redirect(w, r, "/submit")
}

func (s *Server) handleClearSolution(w http.ResponseWriter, r *http.Request) {
	st := sessionFromContext(r.Context())
	if id, err := strconv.Atoi(r.FormValue("challenge_id")); err == nil {
		st.SelectChallenge(id)
	}
	s.Submissions.ClearSolution(st)
	redirect(w, r, "/submit")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := sessionFromContext(r.Context())
	s.renderView(w, r, st, session.ViewStatus, "status", "My Submissions", view.BuildStatus(st.Submissions(), nil))
}

// handleSubmissionDetail shows one submission inside the status view. A
// failed lookup leaves a notice and renders the list alone.
func (s *Server) handleSubmissionDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := sessionFromContext(ctx)
	id := chi.URLParam(r, "id")

	detail, err := s.Submissions.GetSubmissionDetails(ctx, st, id)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to load submission %s: %v", id, err)
	}
	s.renderView(w, r, st, session.ViewStatus, "status", "Submission Details", view.BuildStatus(st.Submissions(), detail))
}
