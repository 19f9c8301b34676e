package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/session"
	"github.com/vytor/codearena/internal/view"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, renderer *view.Renderer, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	if wantsJSON(r) || renderer == nil {
		writeJSONError(w, appErr)
		return
	}

	st := sessionFromContext(r.Context())
	if st == nil {
		st = session.New("")
	}
	page := view.NewPage(st, "", http.StatusText(appErr.Status), r.URL.RequestURI(), view.ErrorView{
		Status:     appErr.Status,
		StatusText: http.StatusText(appErr.Status),
		Message:    appErr.Message,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(appErr.Status)
	if err := renderer.Page(w, "error", page); err != nil {
		log.Error("failed to render error page: %v", err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSONError(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	body := map[string]any{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.MissingFields) > 0 {
		body["missing_fields"] = appErr.MissingFields
	}
	json.NewEncoder(w).Encode(map[string]any{"error": body})
}
