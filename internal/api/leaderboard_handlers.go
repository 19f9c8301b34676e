package api

import (
	"net/http"

	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/view"
)

// handleLeaderboard fetches a fresh snapshot and renders it. On failure the
// previous snapshot stays visible.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := sessionFromContext(ctx)

	if err := s.Leaderboard.LoadLeaderboard(ctx, st); err != nil {
		logger.FromContext(ctx).Warn("leaderboard load failed: %v", err)
	}
	s.renderView(w, r, st, session.ViewLeaderboard, "leaderboard", "Leaderboard", s.leaderboardView(st))
}

// handleLeaderboardFragment serves the snapshot for the page's poll. The
// scheduler refreshes it while the page is open; a snapshot older than one
// poll interval is reloaded here so the page never lags a full tick behind.
func (s *Server) handleLeaderboardFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	st := sessionFromContext(ctx)

	if err := s.Sessions.Touch(ctx, st, session.ViewLeaderboard); err != nil {
		log.Warn("failed to record activity for session %s: %v", st.ID(), err)
	}

	if _, at := st.Leaderboard(); s.PollInterval > 0 && st.Now().Sub(at) >= s.PollInterval {
		if err := s.Leaderboard.LoadLeaderboard(ctx, st); err != nil {
			log.Warn("leaderboard reload failed: %v", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.Renderer.Fragment(w, "leaderboard_table", s.leaderboardView(st)); err != nil {
		log.Error("failed to render leaderboard fragment: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) leaderboardView(st *session.State) view.LeaderboardView {
	entries, at := st.Leaderboard()
	v := view.BuildLeaderboard(entries, st.Participant(), at, s.PollInterval)
	v.Status = st.Status()
	v.Errors = view.ErrorMessages(st.Notices())
	return v
}
