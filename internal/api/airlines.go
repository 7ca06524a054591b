package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// RegisterAirline godoc
// @Summary      Register or vote for an airline
// @Description  Below the bootstrap threshold an activated airline admits the candidate directly; above it every call is one vote.
// @Tags         Airlines
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                   true  "Bearer caller token"
// @Param        body           body    dtos.RegisterAirlineReq  true  "Candidate"
// @Success      200            {object} dtos.APIResponse
// @Failure      400,403,409    {object} dtos.APIResponse
// @Router       /api/v1/airlines [post]
func (h *Handlers) RegisterAirline() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.RegisterAirlineReq
		if !decodeBody(w, r, initTime, &req) {
			return
		}
		candidate, err := entities.ParseAddress(req.Candidate)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		airline, outcome, err := h.deps.Services.Surety.RegisterAirline(r.Context(), caller, candidate, req.Name)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}

		resp := toAirlineResponse(airline)
		resp.Outcome = outcome.String()
		common.RespondSuccess(w, initTime, "Airline registration "+outcome.String(), resp)
	}
}

// FundAirline credits the caller's airline. Amount is decimal ether.
func (h *Handlers) FundAirline() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.FundReq
		if !decodeBody(w, r, initTime, &req) {
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		airline, err := h.deps.Services.Surety.Fund(r.Context(), caller, amount)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, constants.StatusFunded, toAirlineResponse(airline))
	}
}

func (h *Handlers) GetAirline() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		identity, err := entities.ParseAddress(chi.URLParam(r, "address"))
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		airline, err := h.deps.Services.Surety.Airline(identity)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Airline fetched", toAirlineResponse(airline))
	}
}
