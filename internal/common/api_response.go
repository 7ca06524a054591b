package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/models/dtos"
)

// RespondSuccess writes data in an "ok" envelope. The status code
// defaults to 200.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	body := envelope(constants.APIStatusOk, message, initTime)
	body.Data = data
	writeJSON(w, pickStatus(http.StatusOK, statusCode), body)
}

// RespondError writes an "error" envelope. A non-nil err replaces message
// and, for ledger errors, fills in the machine-readable code.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	body := envelope(constants.APIStatusError, message, initTime)
	if err != nil {
		if text := err.Error(); text != "" {
			body.Message = text
		}
		body.Code = ledger.CodeOf(err)
	}
	writeJSON(w, pickStatus(http.StatusInternalServerError, statusCode), body)
}

func envelope(status constants.APIStatus, message string, initTime time.Time) dtos.APIResponse {
	return dtos.APIResponse{
		Status:       string(status),
		Message:      message,
		ResponseTime: fmt.Sprintf("%dms", time.Since(initTime).Milliseconds()),
	}
}

func pickStatus(fallback int, statusCode []int) int {
	if len(statusCode) > 0 {
		return statusCode[0]
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("Failed to encode response", "status", code, "error", err)
	}
}
