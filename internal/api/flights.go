package api

import (
	"net/http"
	"time"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/dtos"
)

// RegisterFlight godoc
// @Summary      Register a flight for the caller's airline
// @Tags         Flights
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                  true  "Bearer caller token"
// @Param        body           body    dtos.RegisterFlightReq  true  "Flight"
// @Success      201            {object} dtos.APIResponse
// @Failure      400,403,409    {object} dtos.APIResponse
// @Router       /api/v1/flights [post]
func (h *Handlers) RegisterFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.RegisterFlightReq
		if !decodeBody(w, r, initTime, &req) {
			return
		}

		flight, err := h.deps.Services.Surety.RegisterFlight(r.Context(), caller, req.Flight, req.Timestamp)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, constants.StatusRegistered, toFlightResponse(flight), http.StatusCreated)
	}
}

func (h *Handlers) GetFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		key, err := flightKeyFromPath(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		flight, err := h.deps.Services.Surety.FetchFlight(key)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight fetched", toFlightResponse(flight))
	}
}

// FetchFlightStatus opens the oracle request for a flight, or returns the
// one already open.
func (h *Handlers) FetchFlightStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}
		key, err := flightKeyFromPath(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		req, opened, err := h.deps.Services.Surety.FetchFlightStatus(r.Context(), caller, key)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}

		code := http.StatusOK
		if opened {
			code = http.StatusAccepted
		}
		common.RespondSuccess(w, initTime, constants.StatusRequested, toStatusRequestResponse(req, opened), code)
	}
}

// FlightsBoard lists every persisted flight with its policy count
func (h *Handlers) FlightsBoard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		entries, err := h.deps.Repo.Queries.FlightsBoard(r.Context())
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}

		board := make([]dtos.FlightBoardResponse, 0, len(entries))
		for _, e := range entries {
			board = append(board, toBoardResponse(e))
		}
		common.RespondSuccess(w, initTime, "Flights fetched", board)
	}
}
