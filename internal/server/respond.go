package server

import (
	"encoding/json"
	"net/http"

	"ecoreport/internal/mutation"
	"ecoreport/internal/validate"

	"github.com/sirupsen/logrus"
)

const msgInternal = "Internal server error"

type errorBody struct {
	Error   string              `json:"error"`
	Details validate.Violations `json:"details,omitempty"`
}

type successBody struct {
	Success bool `json:"success"`
}

// wireResponse maps an outcome onto a status code and body. Every outcome
// type must have a case; anything else is treated as a server error.
func wireResponse(out mutation.Outcome) (int, any) {
	switch o := out.(type) {
	case mutation.Created:
		return http.StatusCreated, o.Value
	case mutation.PartialFailure:
		return http.StatusCreated, o.Value
	case mutation.Succeeded:
		if o.Value == nil {
			return http.StatusOK, successBody{Success: true}
		}
		return http.StatusOK, o.Value
	case mutation.ValidationFailed:
		return http.StatusBadRequest, errorBody{Error: "Validation failed", Details: o.Violations}
	case mutation.Unauthorized:
		msg := o.Message
		if msg == "" {
			msg = mutation.MsgUnauthenticated
		}
		return http.StatusUnauthorized, errorBody{Error: string(msg)}
	case mutation.Conflict:
		return http.StatusConflict, errorBody{Error: o.Reason}
	case mutation.NotFound:
		return http.StatusNotFound, errorBody{Error: o.Resource + " not found"}
	case mutation.InternalError:
		return http.StatusInternalServerError, errorBody{Error: msgInternal}
	default:
		return http.StatusInternalServerError, errorBody{Error: msgInternal}
	}
}

func (s *Service) respond(w http.ResponseWriter, r *http.Request, out mutation.Outcome) {
	entry := s.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	})

	switch o := out.(type) {
	case mutation.InternalError:
		entry.WithError(o.Err).Error("request failed")
	case mutation.PartialFailure:
		entry.WithError(o.Err).Warn("request completed with partial failure")
	case mutation.Unauthorized:
		entry.WithError(o.Cause).Debug("request unauthorized")
	case nil:
		entry.Error("handler produced no outcome")
	}

	status, body := wireResponse(out)
	s.writeJSON(w, status, body)
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

// limitBody caps the request body read by the decoders.
func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
}
