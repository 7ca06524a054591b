package api

import (
	"errors"
	"net/http"

	"infinite-experiment/flightsurety/internal/ledger"
)

// statusForError maps a ledger failure onto an HTTP status
func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotOperational):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrInsufficientEscrowBalance):
		return http.StatusInternalServerError
	}

	switch ledger.KindOf(err) {
	case ledger.KindAuthorization:
		return http.StatusForbidden
	case ledger.KindAdmission:
		if errors.Is(err, ledger.ErrAlreadyRegistered) {
			return http.StatusConflict
		}
		return http.StatusForbidden
	case ledger.KindLookup:
		if errors.Is(err, ledger.ErrAirlineNotActivated) {
			return http.StatusForbidden
		}
		return http.StatusNotFound
	case ledger.KindValidation:
		if errors.Is(err, ledger.ErrDuplicatePolicy) || errors.Is(err, ledger.ErrDuplicateFlight) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case ledger.KindConsensus, ledger.KindSettlement:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
