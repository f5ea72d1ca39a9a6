package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Clark-Hu/movierank/internal/service"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.As(err, &maxBytesError):
		s.respondError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "Request body too large")
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

// respondServiceError maps service error kinds to status codes. Anything
// unrecognized is logged and reported as a storage failure.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "All fields are required.",
			Details: service.ValidationDetails(err),
		})
	case errors.Is(err, service.ErrInvalidID):
		s.respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid ID format.")
	case errors.Is(err, service.ErrInvalidCredentials):
		s.respondError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid credentials.")
	case errors.Is(err, service.ErrAlreadyPresent):
		s.respondError(w, http.StatusBadRequest, "ALREADY_PRESENT", "Movie already in watchlist.")
	case errors.Is(err, service.ErrAuthRequired):
		s.respondError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Access denied. No token provided.")
	case errors.Is(err, service.ErrInvalidToken):
		s.respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token.")
	case errors.Is(err, service.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Administrator role required.")
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrDuplicateKey):
		s.respondError(w, http.StatusConflict, "DUPLICATE_KEY", "Email or username already exists.")
	default:
		s.logger.Error().Err(err).Str("op", op).Str("request_id", requestID(r)).Msg("request failed")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Server error")
	}
}
