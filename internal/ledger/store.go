// Package ledger is the storage side of the marketplace: the access gate
// and the airline, flight, insurance and oracle tables. Every mutating
// method takes a Call and is rejected unless the gate admits it. Guards
// run before any write, so a failed call leaves every table untouched.
package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/models/entities"
)

type Store struct {
	params    Params
	gate      *Gate
	airlines  *AirlineRegistry
	flights   *FlightRegistry
	insurance *InsuranceLedger
	oracles   *OracleConsensus
}

// NewStore deploys an empty ledger owned by owner
func NewStore(owner entities.Address, params Params) (*Store, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("ledger owner is required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger params: %w", err)
	}
	return &Store{
		params:    params,
		gate:      NewGate(owner),
		airlines:  newAirlineRegistry(),
		flights:   newFlightRegistry(),
		insurance: newInsuranceLedger(),
		oracles:   newOracleConsensus(params.Seed),
	}, nil
}

func (s *Store) Params() Params { return s.params }

func (s *Store) SetOperatingStatus(call Call, operational bool) error {
	return s.gate.SetOperatingStatus(call, operational)
}

func (s *Store) SetAuthorizedCaller(call Call, caller entities.Address) error {
	return s.gate.SetAuthorizedCaller(call, caller)
}

func (s *Store) IsOperational() bool { return s.gate.IsOperational() }

func (s *Store) AuthorizedCaller() entities.Address { return s.gate.AuthorizedCaller() }

func (s *Store) Owner() entities.Address { return s.gate.Owner() }

// RegisterAirline records voter's support for candidate
func (s *Store) RegisterAirline(call Call, candidate entities.Address, name string, voter entities.Address) (entities.Airline, AdmissionOutcome, error) {
	if err := s.gate.check(call); err != nil {
		return entities.Airline{}, 0, err
	}
	return s.airlines.register(candidate, name, voter, s.params)
}

// Fund credits an airline's funding and the escrow pool
func (s *Store) Fund(call Call, airline entities.Address, amount uint256.Int) (entities.Airline, error) {
	if err := s.gate.check(call); err != nil {
		return entities.Airline{}, err
	}
	if err := s.insurance.canDeposit(amount); err != nil {
		return entities.Airline{}, err
	}
	funded, err := s.airlines.fund(airline, amount, s.params)
	if err != nil {
		return entities.Airline{}, err
	}
	s.insurance.credit(amount)
	return funded, nil
}

func (s *Store) RegisterFlight(call Call, airline entities.Address, name string, timestamp int64) (entities.Flight, error) {
	if err := s.gate.check(call); err != nil {
		return entities.Flight{}, err
	}
	owner, ok := s.airlines.Get(airline)
	if !ok {
		return entities.Flight{}, ErrAirlineNotActivated
	}
	return s.flights.register(owner, name, timestamp)
}

func (s *Store) BuyInsurance(call Call, passenger entities.Address, flight entities.FlightKey, amount uint256.Int) (entities.Policy, error) {
	if err := s.gate.check(call); err != nil {
		return entities.Policy{}, err
	}
	if _, err := s.flights.Get(flight); err != nil {
		return entities.Policy{}, err
	}
	return s.insurance.buy(entities.PolicyKey{Passenger: passenger, Flight: flight}, amount, s.params)
}

// Withdraw pays out a credit-eligible policy and returns it Withdrawn
func (s *Store) Withdraw(call Call, passenger entities.Address, flight entities.FlightKey) (entities.Policy, error) {
	if err := s.gate.check(call); err != nil {
		return entities.Policy{}, err
	}
	return s.insurance.withdraw(entities.PolicyKey{Passenger: passenger, Flight: flight})
}

func (s *Store) RegisterOracle(call Call, identity entities.Address, fee uint256.Int) (entities.Oracle, error) {
	if err := s.gate.check(call); err != nil {
		return entities.Oracle{}, err
	}
	return s.oracles.register(identity, fee, s.params)
}

// RequestStatus opens a status request for a registered flight. The bool
// is false when a request already existed and nothing changed.
func (s *Store) RequestStatus(call Call, requester entities.Address, flight entities.FlightKey) (entities.StatusRequest, bool, error) {
	if err := s.gate.check(call); err != nil {
		return entities.StatusRequest{}, false, err
	}
	if _, err := s.flights.Get(flight); err != nil {
		return entities.StatusRequest{}, false, err
	}
	req, opened := s.oracles.open(requester, flight, s.params)
	return req, opened, nil
}

// SubmitResponse counts an oracle report. Reaching quorum writes the
// flight status and credits passengers in the same call.
func (s *Store) SubmitResponse(call Call, oracle entities.Address, index uint8, flight entities.FlightKey, code entities.StatusCode) (Submission, error) {
	if err := s.gate.check(call); err != nil {
		return Submission{}, err
	}
	req, err := s.oracles.validateResponse(oracle, index, flight, code)
	if err != nil {
		return Submission{}, err
	}

	next, counted, finalized := tally(*req, oracle, code, s.params.Quorum)
	if !counted {
		return Submission{Request: req.Clone()}, nil
	}
	*req = next

	result := Submission{Request: next.Clone(), Counted: true, Finalized: finalized}
	if finalized {
		s.flights.setStatus(flight, next.Status)
		result.Credited = s.insurance.creditPassengers(flight, next.Status, s.params)
	}
	return result, nil
}

func (s *Store) Airline(identity entities.Address) (entities.Airline, bool) {
	return s.airlines.Get(identity)
}

func (s *Store) Airlines() []entities.Airline { return s.airlines.List() }

func (s *Store) ActivatedAirlines() int { return s.airlines.ActivatedCount() }

func (s *Store) Flight(key entities.FlightKey) (entities.Flight, error) {
	return s.flights.Get(key)
}

func (s *Store) Flights() []entities.Flight { return s.flights.List() }

func (s *Store) Policy(passenger entities.Address, flight entities.FlightKey) (entities.Policy, error) {
	return s.insurance.Get(entities.PolicyKey{Passenger: passenger, Flight: flight})
}

func (s *Store) PoliciesForFlight(flight entities.FlightKey) []entities.Policy {
	return s.insurance.ForFlight(flight)
}

func (s *Store) Oracle(identity entities.Address) (entities.Oracle, error) {
	return s.oracles.Oracle(identity)
}

func (s *Store) Oracles() []entities.Oracle { return s.oracles.List() }

func (s *Store) StatusRequest(flight entities.FlightKey) (entities.StatusRequest, bool) {
	return s.oracles.Request(flight)
}

// Balance is the pooled escrow available for payouts
func (s *Store) Balance() uint256.Int { return s.insurance.Balance() }

func (s *Store) PaidOut() uint256.Int { return s.insurance.PaidOut() }

func (s *Store) OracleFees() uint256.Int { return s.oracles.Fees() }
