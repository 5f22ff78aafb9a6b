package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"statree-backend/internal/leetcode"
	"statree-backend/internal/middleware"
	"statree-backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *leetcode.ValidationError
		notFound   *leetcode.NotFoundError
		gqlErr     *leetcode.GraphQLError
		decodeErr  *leetcode.DecodeError
		transport  *leetcode.TransportError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{validation.Field: validation.Message}, r))
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Resource not found", r))
	case errors.As(err, &gqlErr):
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", gqlErr.Message, r))
	case errors.As(err, &decodeErr):
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_BAD_RESPONSE", "Unexpected response from LeetCode", r))
	case errors.As(err, &transport):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("UPSTREAM_UNAVAILABLE", "LeetCode is unreachable. Please try again later.", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
