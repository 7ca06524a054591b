package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/models/entities"
)

// State is a detached copy of every table, used for persistence and for
// rolling back a call whose commit could not be persisted.
type State struct {
	Owner            entities.Address
	AuthorizedCaller entities.Address
	Operational      bool
	Airlines         []entities.Airline
	Flights          []entities.Flight
	Policies         []entities.Policy
	Oracles          []entities.Oracle
	Requests         []entities.StatusRequest
	Balance          uint256.Int
	PaidOut          uint256.Int
	OracleFees       uint256.Int
	IndexCounter     uint64
}

func (s *Store) Snapshot() State {
	state := State{
		Owner:            s.gate.owner,
		AuthorizedCaller: s.gate.authorized,
		Operational:      s.gate.operational,
		Airlines:         s.airlines.List(),
		Flights:          s.flights.List(),
		Policies:         s.insurance.List(),
		Oracles:          s.oracles.List(),
		Balance:          s.insurance.balance,
		PaidOut:          s.insurance.paidOut,
		OracleFees:       s.oracles.fees,
		IndexCounter:     s.oracles.indexer.counter,
	}
	for _, f := range state.Flights {
		if req, ok := s.oracles.Request(f.Key); ok {
			state.Requests = append(state.Requests, req)
		}
	}
	return state
}

// Restore replaces every table with the content of state
func (s *Store) Restore(state State) error {
	if state.Owner != s.gate.owner {
		return fmt.Errorf("state owner %s does not match ledger owner %s", state.Owner, s.gate.owner)
	}

	airlines := newAirlineRegistry()
	for _, a := range state.Airlines {
		stored := a.Clone()
		airlines.airlines[a.Identity] = &stored
		airlines.order = append(airlines.order, a.Identity)
		if a.Activated {
			airlines.activated++
		}
	}

	flights := newFlightRegistry()
	for _, f := range state.Flights {
		stored := f
		flights.flights[f.Key] = &stored
		flights.order = append(flights.order, f.Key)
	}

	insurance := newInsuranceLedger()
	for _, p := range state.Policies {
		if _, ok := flights.flights[p.Key.Flight]; !ok {
			return fmt.Errorf("policy %s references unknown flight", p.Key)
		}
		stored := p
		insurance.policies[p.Key] = &stored
		insurance.byFlight[p.Key.Flight] = append(insurance.byFlight[p.Key.Flight], p.Key)
		insurance.order = append(insurance.order, p.Key)
	}
	insurance.balance = state.Balance
	insurance.paidOut = state.PaidOut

	oracles := newOracleConsensus(s.params.Seed)
	for _, o := range state.Oracles {
		stored := o
		oracles.oracles[o.Identity] = &stored
		oracles.order = append(oracles.order, o.Identity)
	}
	for _, r := range state.Requests {
		stored := r.Clone()
		oracles.requests[r.Flight] = &stored
	}
	oracles.fees = state.OracleFees
	oracles.indexer.counter = state.IndexCounter

	s.gate.authorized = state.AuthorizedCaller
	s.gate.operational = state.Operational
	s.airlines = airlines
	s.flights = flights
	s.insurance = insurance
	s.oracles = oracles
	return nil
}
