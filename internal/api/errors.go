package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/boardswarmd/internal/broker"
	"github.com/nerrad567/boardswarmd/internal/device"
)

// Error is the structured error response body.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes, one per taxonomy kind.
const (
	ErrCodeNotFound           = "not_found"
	ErrCodePreconditionFailed = "precondition_failed"
	ErrCodeInvalidArgument    = "invalid_argument"
	ErrCodeAborted            = "aborted"
	ErrCodeInternal           = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

// writeError maps err onto the taxonomy's HTTP status code and writes
// the structured response. Sentinel errors from internal/device and
// internal/broker classify as Not found, Precondition failed, or
// Aborted; anything else is Unknown. Invalid argument is written
// directly by handlers through writeBadRequest.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrNotFound), errors.Is(err, broker.ErrDeviceNotFound), errors.Is(err, device.ErrModeNotFound):
		writeErrorCode(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, device.ErrDependencyNotMet):
		writeErrorCode(w, http.StatusPreconditionFailed, ErrCodePreconditionFailed, err.Error())
	case errors.Is(err, device.ErrActuatorFailed), errors.Is(err, device.ErrTransitionInProgress):
		writeErrorCode(w, http.StatusConflict, ErrCodeAborted, err.Error())
	default:
		writeErrorCode(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeErrorCode(w, http.StatusBadRequest, ErrCodeInvalidArgument, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeErrorCode(w, http.StatusNotFound, ErrCodeNotFound, message)
}
