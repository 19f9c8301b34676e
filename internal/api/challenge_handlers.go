package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/view"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/challenges", http.StatusFound)
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	st := sessionFromContext(r.Context())
	difficulty := r.URL.Query().Get("difficulty")

	list := s.Challenges.FilterChallenges(st, difficulty)
	logger.FromContext(r.Context()).Debug("rendering %d challenges (difficulty=%q)", len(list), difficulty)

	s.renderView(w, r, st, session.ViewChallenges, "challenges", "Challenges", view.BuildChallenges(list, difficulty))
}

func (s *Server) handleRefreshChallenges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := sessionFromContext(ctx)

	if err := s.Challenges.LoadChallenges(ctx, st); err != nil {
		logger.FromContext(ctx).Warn("challenge refresh failed: %v", err)
	}

	to := "/challenges"
	if d := r.FormValue("difficulty"); d != "" {
		to += "?difficulty=" + url.QueryEscape(d)
	}
	redirect(w, r, to)
}

// handleSolve pre-selects a challenge and switches to the submit view.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := sessionFromContext(ctx)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		handleError(w, r, s.Renderer, errors.NewBadRequestError("invalid challenge id"))
		return
	}

	if _, ok := s.Challenges.SelectChallenge(st, id); !ok {
		logger.FromContext(ctx).Debug("challenge %d is not in the cached catalog", id)
	}
	redirect(w, r, "/submit")
}
