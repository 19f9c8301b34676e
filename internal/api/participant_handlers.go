package api

import (
	"net/http"

	"github.com/vytor/codearena/internal/logger"
)

func (s *Server) handleSetParticipant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := sessionFromContext(ctx)

	if err := s.Participants.SetParticipant(ctx, st, r.FormValue("participant_name")); err != nil {
		logger.FromContext(ctx).Debug("participant name rejected: %v", err)
	}
	redirect(w, r, safeNext(r.FormValue("next")))
}

func (s *Server) handleDismissNotices(w http.ResponseWriter, r *http.Request) {
	st := sessionFromContext(r.Context())
	st.DismissNotices()
	redirect(w, r, safeNext(r.FormValue("next")))
}
