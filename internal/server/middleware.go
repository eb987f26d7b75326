package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"ecoreport/internal"
	"ecoreport/internal/auth"
	"ecoreport/internal/mutation"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyClaims contextKey = "claims"
)

var errMissingToken = errors.New("no session token presented")

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RecoverMiddleware turns a handler panic into a 500 so one bad request
// cannot take the connection down without a response.
func (s *Service) RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.WithFields(logrus.Fields{
				"path":  r.URL.Path,
				"stack": string(debug.Stack()),
			}).Error("recovered from handler panic")
			s.respond(w, r, mutation.InternalError{Err: fmt.Errorf("panic: %v", rec)})
		}()

		next.ServeHTTP(w, r)
	})
}

// RequireBearer only accepts a token from the Authorization header.
func (s *Service) RequireBearer(next http.Handler) http.Handler {
	return s.requireAuth(next, false)
}

// RequireSession accepts the Authorization header or the session cookie.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return s.requireAuth(next, true)
}

func (s *Service) requireAuth(next http.Handler, allowCookie bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Find the token
		raw, source := bearerToken(r), "header"
		if raw == "" && allowCookie {
			raw, source = s.sessionToken(r), "cookie"
		}

		if raw == "" {
			s.logger.WithField("path", r.URL.Path).Debug("no session token found")
			s.respond(w, r, mutation.Unauthorized{Message: mutation.MsgUnauthenticated, Cause: errMissingToken})
			return
		}

		// 2. Verify signature and expiry
		claims, err := s.tokens.VerifyToken(raw)
		if err != nil {
			entry := s.logger.WithError(err).WithField("source", source)
			if errors.Is(err, auth.ErrExpiredToken) {
				entry.Info("expired session token")
			} else {
				entry.Warn("invalid session token")
			}
			s.respond(w, r, mutation.Unauthorized{Message: mutation.MsgUnauthenticated, Cause: err})
			return
		}

		s.logger.WithFields(logrus.Fields{
			"account_id": claims.AccountID,
			"role":       claims.Role,
		}).Debug("authenticated account")

		// 3. Hand identity to the handler through the request context
		ctx := context.WithValue(r.Context(), contextKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func (s *Service) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err != nil {
		return ""
	}

	var token string
	if err := s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &token); err != nil {
		s.logger.WithError(err).Warn("failed to decrypt session cookie")
		return ""
	}

	return token
}

// StripTrailingSlash rewrites /api/issues/ to /api/issues in place. It wraps
// the mux because route matching happens before route middleware runs.
func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			r.URL.Path = strings.TrimRight(path, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
		}

		next.ServeHTTP(w, r)
	})
}
