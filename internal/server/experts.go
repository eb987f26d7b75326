package server

import (
	"net/http"

	"ecoreport/internal/mutation"
	"ecoreport/internal/validate"
)

func (s *Service) handleRegisterExpert(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claimsFromContext(r.Context())
	if err != nil {
		s.respond(w, r, mutation.InternalError{Err: err})
		return
	}

	limitBody(w, r)

	var cmd mutation.RegisterExpertCommand
	if violations := validate.DecodeJSON(r.Body, &cmd); violations != nil {
		s.respond(w, r, mutation.ValidationFailed{Violations: violations})
		return
	}

	s.respond(w, r, s.exec.RegisterExpert(r.Context(), claims, &cmd))
}
