package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/luminacare/pipeline-service/internal/contracts"
	"github.com/luminacare/pipeline-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, contracts.SuccessResponse{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, contracts.ErrorResponse{Status: "error", Code: code, Message: message})
}

// mapDomainError keeps not-found distinct from validation failures so callers
// can tell a missing record (404) from a rejected command (4xx).
func mapDomainError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrDuplicateSlug):
		return http.StatusConflict, "duplicate_slug"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusBadRequest, "index_out_of_range"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrTerminalState):
		return http.StatusConflict, "terminal_state"
	case errors.Is(err, domain.ErrInvalidCommissionRate):
		return http.StatusBadRequest, "invalid_commission_rate"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
