package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/auth"
	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/models/entities"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// callerIdentity writes a 401 and returns false when no caller token was presented
func callerIdentity(w http.ResponseWriter, r *http.Request, initTime time.Time) (entities.Address, bool) {
	claims := auth.GetCallerClaims(r.Context())
	if claims == nil {
		common.RespondError(w, initTime, nil, constants.MsgMissingCaller, http.StatusUnauthorized)
		return "", false
	}
	return claims.Identity(), true
}

// decodeBody writes a 400 and returns false on malformed JSON
func decodeBody(w http.ResponseWriter, r *http.Request, initTime time.Time, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondError(w, initTime, nil, constants.MsgInvalidBody, http.StatusBadRequest)
		return false
	}
	return true
}

// flightKeyFromPath reads {airline}/{flight}/{timestamp}
func flightKeyFromPath(r *http.Request) (entities.FlightKey, error) {
	airline, err := entities.ParseAddress(chi.URLParam(r, "airline"))
	if err != nil {
		return entities.FlightKey{}, fmt.Errorf("%s: %w", constants.MsgInvalidAddress, err)
	}
	flight := chi.URLParam(r, "flight")
	if flight == "" {
		return entities.FlightKey{}, fmt.Errorf("flight is required")
	}
	ts, err := strconv.ParseInt(chi.URLParam(r, "timestamp"), 10, 64)
	if err != nil {
		return entities.FlightKey{}, fmt.Errorf("%s: %w", constants.MsgInvalidTimestamp, err)
	}
	return entities.FlightKey{Airline: airline, Flight: flight, Timestamp: ts}, nil
}

func flightKeyFromBody(airline, flight string, timestamp int64) (entities.FlightKey, error) {
	id, err := entities.ParseAddress(airline)
	if err != nil {
		return entities.FlightKey{}, fmt.Errorf("%s: %w", constants.MsgInvalidAddress, err)
	}
	return entities.FlightKey{Airline: id, Flight: flight, Timestamp: timestamp}, nil
}

// respondLedgerError reports a service failure with its mapped status
func respondLedgerError(w http.ResponseWriter, r *http.Request, initTime time.Time, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError && ledger.CodeOf(err) == "" {
		logging.Error("Request failed", "path", r.URL.Path, "error", err)
		common.RespondError(w, initTime, nil, "Internal error", status)
		return
	}
	common.RespondError(w, initTime, err, "", status)
}

// parseAmount reads a decimal ether string
func parseAmount(s string) (uint256.Int, error) {
	amount, err := common.ParseEther(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%s: %w", constants.MsgInvalidAmount, err)
	}
	return amount, nil
}

func respondBadRequest(w http.ResponseWriter, initTime time.Time, err error) {
	common.RespondError(w, initTime, nil, err.Error(), http.StatusBadRequest)
}
