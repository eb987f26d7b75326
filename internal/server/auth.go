package server

import (
	"net/http"
	"time"

	"ecoreport/internal"
	"ecoreport/internal/mutation"
	"ecoreport/internal/validate"
)

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)

	decoded, violations := validate.DecodeTagged(r.Body, "userType", mutation.SignupVariants)
	if violations != nil {
		s.respond(w, r, mutation.ValidationFailed{Violations: violations})
		return
	}

	cmd, ok := decoded.(mutation.SignupCommand)
	if !ok {
		s.respond(w, r, mutation.InternalError{})
		return
	}

	s.respond(w, r, s.exec.Signup(r.Context(), cmd))
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)

	var cmd mutation.LoginCommand
	if violations := validate.DecodeJSON(r.Body, &cmd); violations != nil {
		s.respond(w, r, mutation.ValidationFailed{Violations: violations})
		return
	}

	out := s.exec.Login(r.Context(), &cmd)

	if res, ok := out.(mutation.Succeeded); ok {
		if login, ok := res.Value.(*mutation.LoginResult); ok {
			if err := s.setSessionCookie(w, login.Token, login.MaxAge); err != nil {
				s.respond(w, r, mutation.InternalError{Err: err})
				return
			}
		}
	}

	s.respond(w, r, out)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	s.respond(w, r, mutation.Succeeded{})
}

func (s *Service) handleGetUser(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claimsFromContext(r.Context())
	if err != nil {
		s.respond(w, r, mutation.InternalError{Err: err})
		return
	}

	s.respond(w, r, s.exec.CurrentUser(r.Context(), claims))
}

func (s *Service) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claimsFromContext(r.Context())
	if err != nil {
		s.respond(w, r, mutation.InternalError{Err: err})
		return
	}

	limitBody(w, r)

	var cmd mutation.UpdateProfileCommand
	if violations := validate.DecodeJSON(r.Body, &cmd); violations != nil {
		s.respond(w, r, mutation.ValidationFailed{Violations: violations})
		return
	}

	s.respond(w, r, s.exec.UpdateProfile(r.Context(), claims, &cmd))
}

func (s *Service) setSessionCookie(w http.ResponseWriter, token string, age time.Duration) error {
	sealed, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, token)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    sealed,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})

	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
