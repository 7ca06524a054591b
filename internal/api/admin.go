package api

import (
	"net/http"
	"time"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// GetOperational reports whether the ledger accepts calls
func (h *Handlers) GetOperational() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		svc := h.deps.Services.Surety
		common.RespondSuccess(w, initTime, "Operating status fetched", dtos.OperationalResponse{
			Operational:      svc.IsOperational(),
			AuthorizedCaller: svc.AuthorizedCaller().String(),
		})
	}
}

// SetOperatingStatus pauses or resumes the ledger. Owner only.
func (h *Handlers) SetOperatingStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.OperatingStatusReq
		if !decodeBody(w, r, initTime, &req) {
			return
		}

		svc := h.deps.Services.Surety
		if err := svc.SetOperatingStatus(r.Context(), caller, req.Operational); err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Operating status updated", dtos.OperationalResponse{
			Operational:      svc.IsOperational(),
			AuthorizedCaller: svc.AuthorizedCaller().String(),
		})
	}
}

// SetAuthorizedCaller swaps the identity the ledger trusts. Owner only.
// Authorizing anything but the running app locks the API out until the
// owner restores it.
func (h *Handlers) SetAuthorizedCaller() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.AuthorizedCallerReq
		if !decodeBody(w, r, initTime, &req) {
			return
		}
		authorized, err := entities.ParseAddress(req.Caller)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		svc := h.deps.Services.Surety
		if err := svc.SetAuthorizedCaller(r.Context(), caller, authorized); err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Authorized caller updated", dtos.OperationalResponse{
			Operational:      svc.IsOperational(),
			AuthorizedCaller: svc.AuthorizedCaller().String(),
		})
	}
}
