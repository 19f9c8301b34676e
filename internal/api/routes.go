package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/view"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", view.Static()))

	r.With(s.existingSessionMiddleware).Get("/leaderboard/fragment", s.handleLeaderboardFragment)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.handleIndex)
		r.Get("/challenges", s.handleChallenges)
		r.Get("/challenges/{id}/solve", s.handleSolve)
		r.Get("/submit", s.handleSubmitPage)
		r.Get("/status", s.handleStatus)
		r.Get("/submissions/{id}", s.handleSubmissionDetail)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/external", s.handleExternal)
		r.Post("/notices/dismiss", s.handleDismissNotices)

		r.Group(func(r chi.Router) {
			if s.RateLimiter != nil {
				r.Use(s.rateLimitMiddleware)
			}
			r.Post("/participant", s.handleSetParticipant)
			r.Post("/challenges/refresh", s.handleRefreshChallenges)
			r.Post("/submit", s.handleSubmit)
			r.Post("/submit/clear", s.handleClearSolution)
			r.Post("/external/{kind}", s.handleExternalAction)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, s.Renderer, errors.NewNotFoundError("page", r.URL.Path))
	})
	return r
}
