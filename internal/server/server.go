package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"ecoreport/internal/auth"
	"ecoreport/internal/mutation"
	"ecoreport/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

type Pinger interface {
	Ping(ctx context.Context) error
}

type Service struct {
	logger *logrus.Logger
	config *types.Config
	exec   *mutation.Executor
	tokens *auth.Issuer
	health Pinger
	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	exec *mutation.Executor,
	tokens *auth.Issuer,
	health Pinger,
) (*Service, error) {
	mux := flow.New()

	cookie, err := newSecureCookie(config, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger: logger,
		config: config,
		exec:   exec,
		tokens: tokens,
		health: health,
		cookie: cookie,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)
	s.server.Handler = s.StripTrailingSlash(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.respond(w, req, mutation.NotFound{Resource: "Route"})
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	r.Use(s.LoggingMiddleware)
	r.Use(s.RecoverMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/auth/signup", s.handleSignup, http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.handleLogout, http.MethodPost)
	r.HandleFunc("/api/issues", s.handleListIssues, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireBearer)

		r.HandleFunc("/api/auth/user", s.handleGetUser, http.MethodGet)
		r.HandleFunc("/api/auth/user/profile", s.handleUpdateProfile, http.MethodPut)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireSession)

		r.HandleFunc("/api/experts/register", s.handleRegisterExpert, http.MethodPost)
		r.HandleFunc("/api/issues", s.handleCreateIssue, http.MethodPost)
		r.HandleFunc("/api/uploads", s.handleSignUpload, http.MethodPost)
	})
}

func newSecureCookie(config *types.Config, logger *logrus.Logger) (*securecookie.SecureCookie, error) {
	var hashKey, blockKey []byte

	if config.CookieHashKey == "" {
		if config.IsProduction() {
			return nil, fmt.Errorf("set COOKIE_HASH_KEY")
		}
		logger.Warn("COOKIE_HASH_KEY not set, using a random key; sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(32)
		blockKey = securecookie.GenerateRandomKey(32)
	} else {
		var err error
		hashKey, err = base64.StdEncoding.DecodeString(config.CookieHashKey)
		if err != nil {
			return nil, fmt.Errorf("decode COOKIE_HASH_KEY: %w", err)
		}

		if config.CookieBlockKey != "" {
			blockKey, err = base64.StdEncoding.DecodeString(config.CookieBlockKey)
			if err != nil {
				return nil, fmt.Errorf("decode COOKIE_BLOCK_KEY: %w", err)
			}
		}
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(int(auth.RememberMeTTL.Seconds()))

	return cookie, nil
}

func (s *Service) claimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(contextKeyClaims).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}
