package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/metrics"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// LedgerPersister saves a committed ledger state
type LedgerPersister interface {
	Save(ctx context.Context, state ledger.State) error
}

// OracleRequestPublisher notifies oracle daemons of an open status request
type OracleRequestPublisher interface {
	PublishOracleRequest(ctx context.Context, event dtos.OracleRequestEvent) error
}

const flightCacheTTL = 5 * time.Minute

// SuretyService is the caller-facing surface of the marketplace. It is
// the ledger's authorized caller: every mutation runs under one lock,
// is persisted before the lock is released, and is rolled back in memory
// when persistence fails.
type SuretyService struct {
	mu        sync.Mutex
	store     *ledger.Store
	app       entities.Address
	persister LedgerPersister
	publisher OracleRequestPublisher
	cache     common.CacheInterface
	metrics   *metrics.MetricsRegistry
	now       func() time.Time
}

// NewSuretyService wires the facade. persister, publisher, cache and m
// may be nil.
func NewSuretyService(
	store *ledger.Store,
	app entities.Address,
	persister LedgerPersister,
	publisher OracleRequestPublisher,
	cache common.CacheInterface,
	m *metrics.MetricsRegistry,
) *SuretyService {
	return &SuretyService{
		store:     store,
		app:       app,
		persister: persister,
		publisher: publisher,
		cache:     cache,
		metrics:   m,
		now:       time.Now,
	}
}

// AppAddress is the identity the ledger must authorize
func (s *SuretyService) AppAddress() entities.Address { return s.app }

// mutate runs fn as one atomic ledger transaction
func (s *SuretyService) mutate(ctx context.Context, op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var before ledger.State
	if s.persister != nil {
		before = s.store.Snapshot()
	}

	if err := fn(); err != nil {
		s.countOperation(op, err)
		return err
	}

	if s.persister != nil {
		start := time.Now()
		err := s.persister.Save(ctx, s.store.Snapshot())
		s.observePersist(time.Since(start), err)
		if err != nil {
			if rerr := s.store.Restore(before); rerr != nil {
				logging.Error("Failed to roll back ledger after persistence error", "operation", op, "error", rerr)
			}
			s.countOperation(op, err)
			return fmt.Errorf("failed to persist %s: %w", op, err)
		}
	}

	s.countOperation(op, nil)
	s.refreshGauges()
	return nil
}

// RegisterAirline records caller's vote for candidate
func (s *SuretyService) RegisterAirline(ctx context.Context, caller, candidate entities.Address, name string) (entities.Airline, ledger.AdmissionOutcome, error) {
	var (
		airline entities.Airline
		outcome ledger.AdmissionOutcome
	)
	err := s.mutate(ctx, "register_airline", func() error {
		var err error
		airline, outcome, err = s.store.RegisterAirline(ledger.As(s.app), candidate, name, caller)
		return err
	})
	if err != nil {
		logging.Warn("Airline registration rejected", "caller", caller, "candidate", candidate, "error", err)
		return entities.Airline{}, 0, err
	}

	logging.Info("Airline registration",
		"caller", caller,
		"candidate", candidate,
		"outcome", outcome.String(),
		"votes", airline.VoteCount,
		"consensus", airline.Consensus,
	)
	return airline, outcome, nil
}

// Fund credits amount to the caller's airline
func (s *SuretyService) Fund(ctx context.Context, caller entities.Address, amount uint256.Int) (entities.Airline, error) {
	var airline entities.Airline
	err := s.mutate(ctx, "fund", func() error {
		var err error
		airline, err = s.store.Fund(ledger.As(s.app), caller, amount)
		return err
	})
	if err != nil {
		return entities.Airline{}, err
	}

	logging.Info("Airline funded",
		"airline", caller,
		"amount_ether", common.FormatEther(amount),
		"funding_ether", common.FormatEther(airline.Funding),
		"activated", airline.Activated,
	)
	return airline, nil
}

// RegisterFlight registers a flight owned by the caller's airline
func (s *SuretyService) RegisterFlight(ctx context.Context, caller entities.Address, name string, timestamp int64) (entities.Flight, error) {
	var flight entities.Flight
	err := s.mutate(ctx, "register_flight", func() error {
		var err error
		flight, err = s.store.RegisterFlight(ledger.As(s.app), caller, name, timestamp)
		return err
	})
	if err != nil {
		return entities.Flight{}, err
	}

	logging.Info("Flight registered", "flight", flight.Key.String())
	return flight, nil
}

func (s *SuretyService) BuyInsurance(ctx context.Context, caller entities.Address, flight entities.FlightKey, amount uint256.Int) (entities.Policy, error) {
	var policy entities.Policy
	err := s.mutate(ctx, "buy_insurance", func() error {
		var err error
		policy, err = s.store.BuyInsurance(ledger.As(s.app), caller, flight, amount)
		return err
	})
	if err != nil {
		return entities.Policy{}, err
	}

	if s.metrics != nil {
		s.metrics.PoliciesPurchased.Inc()
	}
	logging.Info("Insurance purchased",
		"passenger", caller,
		"flight", flight.String(),
		"premium_ether", common.FormatEther(amount),
	)
	return policy, nil
}

// FetchFlightStatus opens (or reuses) the flight's status request and
// publishes it to oracle daemons while it is still open.
func (s *SuretyService) FetchFlightStatus(ctx context.Context, caller entities.Address, flight entities.FlightKey) (entities.StatusRequest, bool, error) {
	var (
		req    entities.StatusRequest
		opened bool
	)
	err := s.mutate(ctx, "fetch_flight_status", func() error {
		var err error
		req, opened, err = s.store.RequestStatus(ledger.As(s.app), caller, flight)
		return err
	})
	if err != nil {
		return entities.StatusRequest{}, false, err
	}

	if !req.Finalized && s.publisher != nil {
		event := dtos.OracleRequestEvent{
			Index:       req.Index,
			Airline:     flight.Airline.String(),
			Flight:      flight.Flight,
			Timestamp:   flight.Timestamp,
			Requester:   caller.String(),
			RequestedAt: s.now().Unix(),
		}
		if perr := s.publisher.PublishOracleRequest(ctx, event); perr != nil {
			logging.Warn("Failed to publish oracle request", "flight", flight.String(), "error", perr)
		}
	}

	logging.Info("Flight status requested",
		"flight", flight.String(),
		"index", req.Index,
		"opened", opened,
		"finalized", req.Finalized,
	)
	return req, opened, nil
}

func (s *SuretyService) RegisterOracle(ctx context.Context, caller entities.Address, fee uint256.Int) (entities.Oracle, error) {
	var oracle entities.Oracle
	err := s.mutate(ctx, "register_oracle", func() error {
		var err error
		oracle, err = s.store.RegisterOracle(ledger.As(s.app), caller, fee)
		return err
	})
	if err != nil {
		return entities.Oracle{}, err
	}

	logging.Info("Oracle registered", "oracle", caller, "indexes", oracle.Indexes)
	return oracle, nil
}

// GetMyIndexes returns the caller's assigned oracle indexes
func (s *SuretyService) GetMyIndexes(caller entities.Address) ([3]uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oracle, err := s.store.Oracle(caller)
	if err != nil {
		return [3]uint8{}, err
	}
	return oracle.Indexes, nil
}

// SubmitOracleResponse records the caller's report for a flight
func (s *SuretyService) SubmitOracleResponse(ctx context.Context, caller entities.Address, index uint8, flight entities.FlightKey, code entities.StatusCode) (ledger.Submission, error) {
	var sub ledger.Submission
	err := s.mutate(ctx, "submit_oracle_response", func() error {
		var err error
		sub, err = s.store.SubmitResponse(ledger.As(s.app), caller, index, flight, code)
		if err == nil && sub.Finalized && s.cache != nil {
			s.cache.Delete(flightCacheKey(flight))
		}
		return err
	})
	if err != nil {
		return ledger.Submission{}, err
	}

	outcome := "ignored"
	switch {
	case sub.Finalized:
		outcome = "finalized"
	case sub.Counted:
		outcome = "counted"
	}
	if s.metrics != nil {
		s.metrics.OracleResponsesTotal.WithLabelValues(outcome).Inc()
	}

	if sub.Finalized {
		if s.metrics != nil {
			s.metrics.FlightsFinalizedTotal.WithLabelValues(sub.Request.Status.String()).Inc()
		}
		logging.Info("Flight status finalized",
			"flight", flight.String(),
			"status", sub.Request.Status.String(),
			"credited", len(sub.Credited),
		)
	} else {
		logging.Debug("Oracle response", "oracle", caller, "flight", flight.String(), "outcome", outcome)
	}
	return sub, nil
}

// WithdrawInsurance pays out the caller's credit-eligible policy
func (s *SuretyService) WithdrawInsurance(ctx context.Context, caller entities.Address, flight entities.FlightKey) (entities.Policy, error) {
	var policy entities.Policy
	err := s.mutate(ctx, "withdraw_insurance", func() error {
		var err error
		policy, err = s.store.Withdraw(ledger.As(s.app), caller, flight)
		return err
	})
	if err != nil {
		return entities.Policy{}, err
	}

	if s.metrics != nil {
		s.metrics.PayoutsEtherTotal.Add(common.EtherFloat(policy.Claim))
	}
	logging.Info("Payout withdrawn",
		"passenger", caller,
		"flight", flight.String(),
		"claim_ether", common.FormatEther(policy.Claim),
	)
	return policy, nil
}

// ClaimInsurance is the second entry point the dapp uses for a payout
func (s *SuretyService) ClaimInsurance(ctx context.Context, caller entities.Address, flight entities.FlightKey) (entities.Policy, error) {
	return s.WithdrawInsurance(ctx, caller, flight)
}

// FetchFlight reads a flight, served from cache until its status is finalized
func (s *SuretyService) FetchFlight(flight entities.FlightKey) (entities.Flight, error) {
	key := flightCacheKey(flight)
	if s.cache != nil {
		var cached entities.Flight
		if s.cache.Get(key, &cached) {
			s.countCache(true)
			return cached, nil
		}
		s.countCache(false)
	}

	// read and Set under the lock; finalization deletes under it too
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.store.Flight(flight)
	if err != nil {
		return entities.Flight{}, err
	}
	if s.cache != nil {
		s.cache.Set(key, f, flightCacheTTL)
	}
	return f, nil
}

// GetInsurance returns the caller's policy on a flight
func (s *SuretyService) GetInsurance(caller entities.Address, flight entities.FlightKey) (entities.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Policy(caller, flight)
}

func (s *SuretyService) Airline(identity entities.Address) (entities.Airline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	airline, ok := s.store.Airline(identity)
	if !ok {
		return entities.Airline{}, ledger.ErrAirlineNotRegistered
	}
	return airline, nil
}

func (s *SuretyService) Flights() []entities.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Flights()
}

func (s *SuretyService) Oracles() []entities.Oracle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Oracles()
}

func (s *SuretyService) IsOperational() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.IsOperational()
}

func (s *SuretyService) AuthorizedCaller() entities.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.AuthorizedCaller()
}

// SetOperatingStatus is an owner-only storage setting
func (s *SuretyService) SetOperatingStatus(ctx context.Context, caller entities.Address, operational bool) error {
	err := s.mutate(ctx, "set_operating_status", func() error {
		return s.store.SetOperatingStatus(ledger.As(caller), operational)
	})
	if err == nil {
		logging.Warn("Operating status changed", "caller", caller, "operational", operational)
	}
	return err
}

// SetAuthorizedCaller is an owner-only storage setting
func (s *SuretyService) SetAuthorizedCaller(ctx context.Context, caller, authorized entities.Address) error {
	err := s.mutate(ctx, "set_authorized_caller", func() error {
		return s.store.SetAuthorizedCaller(ledger.As(caller), authorized)
	})
	if err == nil {
		logging.Warn("Authorized caller changed", "caller", caller, "authorized", authorized)
	}
	return err
}

func flightCacheKey(flight entities.FlightKey) string {
	return string(constants.CachePrefixFlight) + flight.String()
}

func (s *SuretyService) countOperation(op string, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = ledger.CodeOf(err)
		if result == "" {
			result = "internal"
		}
	}
	s.metrics.LedgerOperationsTotal.WithLabelValues(op, result).Inc()
}

func (s *SuretyService) observePersist(d time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.DBQueriesTotal.WithLabelValues("ledger_save", result).Inc()
	s.metrics.DBQueryDuration.WithLabelValues("ledger_save").Observe(d.Seconds())
}

func (s *SuretyService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues("flight").Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues("flight").Inc()
	}
}

// refreshGauges must be called with s.mu held
func (s *SuretyService) refreshGauges() {
	if s.metrics == nil {
		return
	}
	s.metrics.ActivatedAirlines.Set(float64(s.store.ActivatedAirlines()))
	s.metrics.EscrowBalanceEther.Set(common.EtherFloat(s.store.Balance()))
}
