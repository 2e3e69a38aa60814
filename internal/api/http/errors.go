package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/security"
)

// errorResponse is the stable error body: a machine-readable code plus a
// human-readable message.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// mapError translates the core's error taxonomy to an HTTP status and a
// stable error code without leaking internals.
func mapError(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, domain.ErrVehicleUnavailable):
		return http.StatusUnprocessableEntity, errorResponse{Code: "VEHICLE_UNAVAILABLE", Message: "vehicle is not available for rent"}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Code: "DEPENDENCY_UNAVAILABLE", Message: "a downstream service is unavailable, try again later"}
	case errors.Is(err, security.ErrInvalidToken), errors.Is(err, security.ErrExpiredToken):
		return http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "invalid or expired token"}
	default:
		return http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal error"}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := mapError(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
