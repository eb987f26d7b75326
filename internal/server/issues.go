package server

import (
	"net/http"

	"ecoreport/internal/mutation"
	"ecoreport/internal/validate"
)

func (s *Service) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	claims, err := s.claimsFromContext(r.Context())
	if err != nil {
		s.respond(w, r, mutation.InternalError{Err: err})
		return
	}

	limitBody(w, r)

	var cmd mutation.CreateReportCommand
	if violations := validate.DecodeJSON(r.Body, &cmd); violations != nil {
		s.respond(w, r, mutation.ValidationFailed{Violations: violations})
		return
	}

	s.respond(w, r, s.exec.CreateReport(r.Context(), claims, &cmd))
}

func (s *Service) handleListIssues(w http.ResponseWriter, r *http.Request) {
	var query mutation.ListReportsQuery
	if violations := validate.DecodeQuery(r.URL.Query(), &query); violations != nil {
		s.respond(w, r, mutation.ValidationFailed{Violations: violations})
		return
	}

	s.respond(w, r, s.exec.ListReports(r.Context(), &query))
}
