package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/model"
)

type contextKey string

const userContextKey contextKey = "user"

// basicAuthMiddleware authenticates operational calls against the preloaded
// user directory. The credential check itself is the legacy plaintext
// comparison; see UserDirectory.Authenticate.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := s.users.Authenticate(email, password)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrw := newResponseWriterWrapper(w)

		next.ServeHTTP(wrw, r)

		s.logger.Debug("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrw.GetStatusCode()),
			zap.Duration("duration", time.Since(start)))
	})
}

func userFrom(r *http.Request) *model.User {
	user, _ := r.Context().Value(userContextKey).(*model.User)
	return user
}
