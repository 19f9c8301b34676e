package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/session"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

type contextKey string

const (
	sessionContextKey contextKey = "session"
	sessionCookieName            = "session_id"
)

func sessionFromContext(ctx context.Context) *session.State {
	if v := ctx.Value(sessionContextKey); v != nil {
		if st, ok := v.(*session.State); ok {
			return st
		}
	}
	return nil
}

// sessionMiddleware attaches the browser's session, creating one when the
// cookie is missing or unknown. A session's first request runs the
// connect-and-load sequence before the handler.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContext(ctx)

		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			id = cookie.Value
		}

		st, created, err := s.Sessions.GetOrCreate(ctx, id)
		if err != nil {
			handleError(w, r, s.Renderer, err)
			return
		}
		if created {
			if id != "" {
				log.Debug("unknown session cookie, issued a new session")
			}
			s.setSessionCookie(w, st.ID())
		}

		log = log.WithField("session", st.ID())
		ctx = logger.NewContext(ctx, log)

		if st.MarkInitialized() {
			if err := s.Portal.Initialize(ctx, st); err != nil {
				log.Warn("session initialization incomplete: %v", err)
			}
		}

		ctx = context.WithValue(ctx, sessionContextKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// existingSessionMiddleware attaches the browser's session without creating
// one or running the connect sequence. Polling endpoints use it so clients
// that drop cookies cannot start sessions.
func (s *Server) existingSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			id = cookie.Value
		}

		st, err := s.Sessions.Get(ctx, id)
		if err != nil {
			handleError(w, r, s.Renderer, err)
			return
		}
		if st == nil {
			handleError(w, r, s.Renderer, errors.NewNotFoundError("session", id))
			return
		}

		ctx = logger.NewContext(ctx, logger.FromContext(ctx).WithField("session", st.ID()))
		ctx = context.WithValue(ctx, sessionContextKey, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(s.SessionTTL),
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateRequestID creates a random request ID.
func generateRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// loggingMiddleware logs HTTP requests with timing, status codes, and request IDs.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		log := logger.Default().WithFields(map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		if r.RemoteAddr != "" {
			log = log.WithField("remote_addr", r.RemoteAddr)
		}

		ctx := logger.NewContext(r.Context(), log)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		log.Debug("request started")
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log = log.WithFields(map[string]any{
			"status":      wrapped.status,
			"size":        wrapped.size,
			"duration_ms": duration.Milliseconds(),
		})

		if wrapped.status >= 500 {
			log.Error("request completed with server error")
		} else if wrapped.status >= 400 {
			log.Warn("request completed with client error")
		} else {
			log.Info("request completed")
		}
	})
}

// recoveryMiddleware recovers from panics and logs them.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log := logger.FromContext(r.Context())
				log.Error("panic recovered: %v", rec)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}
