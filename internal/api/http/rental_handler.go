package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/service"
)

// RentalHandler exposes the orchestration core's public operation surface.
type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type startRequest struct {
	TransportID int64   `json:"transport_id"`
	StartLat    float64 `json:"start_lat"`
	StartLng    float64 `json:"start_lng"`
}

type endRequest struct {
	EndLat float64 `json:"end_lat"`
	EndLng float64 `json:"end_lng"`
}

func (h *RentalHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("malformed request body"))
		return
	}

	projection, err := h.rentalSvc.Start(r.Context(), claims.UserID, req.TransportID, req.StartLat, req.StartLng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, projection)
}

func (h *RentalHandler) End(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("malformed request body"))
		return
	}

	projection, err := h.rentalSvc.End(r.Context(), callerID(r), rentalID, req.EndLat, req.EndLng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	projection, err := h.rentalSvc.Cancel(r.Context(), callerID(r), rentalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

// ForceEnd is reserved for system and admin callers, e.g. the transport
// subsystem signalling battery depletion.
func (h *RentalHandler) ForceEnd(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if !hasRole(claims, "admin") && !hasRole(claims, "service") {
		writeJSON(w, http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: "force-end requires an admin or service role"})
		return
	}

	rentalID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("malformed request body"))
		return
	}

	projection, err := h.rentalSvc.ForceEnd(r.Context(), rentalID, req.EndLat, req.EndLng)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *RentalHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	projection, err := h.rentalSvc.GetActive(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if projection == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (h *RentalHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	page, size, err := pagingParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.rentalSvc.History(r.Context(), claims.UserID, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListAll is the operator view across all users.
func (h *RentalHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if !hasRole(claims, "admin") && !hasRole(claims, "service") {
		writeJSON(w, http.StatusForbidden, errorResponse{Code: "FORBIDDEN", Message: "listing all rentals requires an admin or service role"})
		return
	}

	page, size, err := pagingParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.rentalSvc.ListAll(r.Context(), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// callerID scopes terminal transitions to the rental owner. Admin and
// service callers act on any rental, the same set force-end admits.
func callerID(r *http.Request) int64 {
	claims := ClaimsFromContext(r.Context())
	if hasRole(claims, "admin") || hasRole(claims, "service") {
		return 0
	}
	return claims.UserID
}

func pagingParams(r *http.Request) (page, size int32, err error) {
	page, size = 0, 10
	if v := r.URL.Query().Get("page"); v != "" {
		parsed, parseErr := strconv.ParseInt(v, 10, 32)
		if parseErr != nil {
			return 0, 0, domain.ValidationError("invalid page parameter")
		}
		page = int32(parsed)
	}
	if v := r.URL.Query().Get("size"); v != "" {
		parsed, parseErr := strconv.ParseInt(v, 10, 32)
		if parseErr != nil {
			return 0, 0, domain.ValidationError("invalid size parameter")
		}
		size = int32(parsed)
	}
	return page, size, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError("invalid rental id %q", raw)
	}
	return id, nil
}
