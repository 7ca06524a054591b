package api

import (
	"context"
	"net/http"
	"time"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// BuyInsurance godoc
// @Summary      Buy delay insurance on a flight
// @Description  Amount is decimal ether and may not exceed the per-policy cap.
// @Tags         Insurance
// @Accept       json
// @Produce      json
// @Param        Authorization  header  string                true  "Bearer caller token"
// @Param        body           body    dtos.BuyInsuranceReq  true  "Policy"
// @Success      201            {object} dtos.APIResponse
// @Failure      400,404,409    {object} dtos.APIResponse
// @Router       /api/v1/insurance [post]
func (h *Handlers) BuyInsurance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.BuyInsuranceReq
		if !decodeBody(w, r, initTime, &req) {
			return
		}
		key, err := flightKeyFromBody(req.Airline, req.Flight, req.Timestamp)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		policy, err := h.deps.Services.Surety.BuyInsurance(r.Context(), caller, key, amount)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, constants.StatusPurchased, toPolicyResponse(policy), http.StatusCreated)
	}
}

// GetInsurance returns the caller's own policy on a flight
func (h *Handlers) GetInsurance() http.HandlerFunc {
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

		policy, err := h.deps.Services.Surety.GetInsurance(caller, key)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Insurance fetched", toPolicyResponse(policy))
	}
}

func (h *Handlers) WithdrawInsurance() http.HandlerFunc {
	return h.payout(h.deps.Services.Surety.WithdrawInsurance)
}

func (h *Handlers) ClaimInsurance() http.HandlerFunc {
	return h.payout(h.deps.Services.Surety.ClaimInsurance)
}

type payoutFunc func(ctx context.Context, caller entities.Address, flight entities.FlightKey) (entities.Policy, error)

func (h *Handlers) payout(fn payoutFunc) http.HandlerFunc {
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

		policy, err := fn(r.Context(), caller, key)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, constants.StatusWithdrawn, dtos.PayoutResponse{
			Policy:    toPolicyResponse(policy),
			PaidEther: common.FormatEther(policy.Claim),
		})
	}
}

// MyPolicies lists the caller's policies from the persisted tables
func (h *Handlers) MyPolicies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		caller, ok := callerIdentity(w, r, initTime)
		if !ok {
			return
		}

		records, err := h.deps.Repo.Queries.ListByPassenger(r.Context(), caller)
		if err != nil {
			respondLedgerError(w, r, initTime, err)
			return
		}

		policies := make([]dtos.PolicyResponse, 0, len(records))
		for _, rec := range records {
			p, err := toPolicyRecordResponse(rec)
			if err != nil {
				respondLedgerError(w, r, initTime, err)
				return
			}
			policies = append(policies, p)
		}
		common.RespondSuccess(w, initTime, "Policies fetched", policies)
	}
}
