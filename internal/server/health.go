package server

import (
	"context"
	"net/http"
	"time"
)

type healthBody struct {
	Status string `json:"status"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Ping(ctx); err != nil {
		s.logger.WithError(err).Error("health check failed")
		s.writeJSON(w, http.StatusServiceUnavailable, healthBody{Status: "unavailable"})
		return
	}

	s.writeJSON(w, http.StatusOK, healthBody{Status: "ok"})
}
