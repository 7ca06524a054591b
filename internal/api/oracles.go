package api

import (
	"net/http"
	"time"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// RegisterOracle godoc
// @Summary      Register the caller as an oracle
// @Description  Fee is decimal ether; the response carries the three assigned indexes.
// @Tags         Oracles
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                  true  "Bearer caller token (oracle)"
// @Param        body           body    dtos.RegisterOracleReq  true  "Fee"
// @Success      201            {object} dtos.APIResponse
// @Failure      400,409        {object} dtos.APIResponse
// @Router       /api/v1/oracles [post]
func (h *Handlers) RegisterOracle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.RegisterOracleReq
		if !decodeBody(w, r, initTime, &req) {
			return
		}
		fee, err := parseAmount(req.Fee)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		oracle, err := h.deps.Services.Surety.RegisterOracle(r.Context(), caller, fee)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, constants.StatusRegistered, toOracleResponse(oracle), http.StatusCreated)
	}
}

func (h *Handlers) GetMyIndexes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		indexes, err := h.deps.Services.Surety.GetMyIndexes(caller)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Indexes fetched", toOracleResponse(entities.Oracle{
			Identity: caller,
			Indexes:  indexes,
		}))
	}
}

// SubmitOracleResponse reports a flight status for an open request
func (h *Handlers) SubmitOracleResponse() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.OracleResponseReq
		if !decodeBody(w, r, initTime, &req) {
			return
		}
		key, err := flightKeyFromBody(req.Airline, req.Flight, req.Timestamp)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		code, err := entities.ParseStatusCode(req.StatusCode)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		sub, err := h.deps.Services.Surety.SubmitOracleResponse(r.Context(), caller, req.Index, key, code)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, constants.StatusResponseStored, toSubmissionResponse(sub))
	}
}
