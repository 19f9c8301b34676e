package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/services"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/view"
)

// Pinger is satisfied by *db.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB           Pinger
	Sessions     *session.Store
	Participants services.ParticipantService
	Challenges   services.ChallengeService
	Submissions  services.SubmissionService
	Leaderboard  services.LeaderboardService
	External     services.ExternalService
	Portal       services.PortalService
	Renderer     *view.Renderer
	Metrics      *metrics.Metrics
	RateLimiter  *RateLimiter

	PollInterval  time.Duration
	SessionTTL    time.Duration
	SecureCookies bool
}

// renderView records that st is looking at v and renders the page.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, st *session.State, v session.View, page, title string, content any) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if err := s.Sessions.Touch(ctx, st, v); err != nil {
		log.Warn("failed to record activity for session %s: %v", st.ID(), err)
	}
	st.MarkUpdated()

	s.render(w, r, page, view.NewPage(st, v, title, r.URL.RequestURI(), content))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data view.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Renderer.Page(w, name, data); err != nil {
		logger.FromContext(r.Context()).Error("failed to render template %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// redirect finishes a form post. Outcomes were already recorded on the
// session as notices or panel state.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// safeNext returns next if it is a local path, otherwise the challenges view.
func safeNext(next string) string {
	if len(next) > 0 && next[0] == '/' && (len(next) == 1 || (next[1] != '/' && next[1] != '\\')) {
		return next
	}
	return "/challenges"
}
