package main

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"

	"infinite-experiment/flightsurety/internal/client"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

var airlineNames = []string{"DApp Airlines", "Air India", "SpiceJet", "GoAir", "Vistara", "TruJet"}

// registration lists, per airline, the accounts that vote it in. The
// first four join on a single vote; past that a strict majority of the
// activated airlines is needed, three of four and then three of five.
var registration = [][]int{
	{0},
	{0},
	{1},
	{2},
	{1, 2, 3},
	{1, 2, 3},
}

const flightCount = 5

// deployment drives the API the way the deploy script drives the contracts
type deployment struct {
	api         *client.SuretyClient
	accounts    []entities.Address
	fundEther   string
	oracleFee   string
	concurrency int
	now         func() time.Time
	rng         *rand.Rand
}

// deriveAccounts produces n stable identities from seed
func deriveAccounts(seed string, n int) []entities.Address {
	accounts := make([]entities.Address, 0, n)
	for i := 0; i < n; i++ {
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(fmt.Sprintf("%s/%d", seed, i)))
		accounts = append(accounts, entities.AddressFromBytes(h.Sum(nil)))
	}
	return accounts
}

func (d *deployment) run(ctx context.Context) (*dtos.SuretyConfig, error) {
	if len(d.accounts) < len(airlineNames) {
		return nil, fmt.Errorf("need at least %d accounts, have %d", len(airlineNames), len(d.accounts))
	}

	if err := d.registerAirlines(ctx); err != nil {
		return nil, err
	}

	flights, err := d.registerFlights(ctx)
	if err != nil {
		return nil, err
	}

	oracles, err := d.registerOracles(ctx)
	if err != nil {
		return nil, err
	}

	return &dtos.SuretyConfig{
		Flights: flights,
		Oracles: oracles,
	}, nil
}

func (d *deployment) registerAirlines(ctx context.Context) error {
	for i, voters := range registration {
		candidate := d.accounts[i]
		for _, v := range voters {
			res, err := d.api.RegisterAirline(ctx, d.accounts[v], candidate, airlineNames[i])
			if err != nil {
				return fmt.Errorf("register %s (voter %d): %w", airlineNames[i], v, err)
			}
			if res.Outcome == ledger.AdmissionIgnored.String() {
				logging.Info("Airline vote already counted", "airline", candidate, "voter", d.accounts[v])
				continue
			}
			logging.Info("Airline registration",
				"name", airlineNames[i],
				"airline", candidate,
				"voter", d.accounts[v],
				"outcome", res.Outcome,
				"votes", res.VoteCount,
			)
		}

		airline, err := d.api.Fund(ctx, candidate, d.fundEther)
		if err != nil {
			return fmt.Errorf("fund %s: %w", airlineNames[i], err)
		}
		if !airline.Activated {
			return fmt.Errorf("airline %s not activated after funding %s ether", airlineNames[i], airline.FundingEther)
		}
	}
	return nil
}

// registerFlights gives airlines 1..5 one flight each, departing 1 to 9
// whole hours from now
func (d *deployment) registerFlights(ctx context.Context) ([]dtos.ConfigFlight, error) {
	now := d.now().Unix()
	flights := make([]dtos.ConfigFlight, 0, flightCount)
	for i := 0; i < flightCount; i++ {
		airline := d.accounts[i+1]
		name := fmt.Sprintf("FL-%d", i)
		timestamp := now + int64(1+d.rng.Intn(9))*3600

		if _, err := d.api.RegisterFlight(ctx, airline, name, timestamp); err != nil {
			return nil, fmt.Errorf("register flight %s: %w", name, err)
		}
		flights = append(flights, dtos.ConfigFlight{
			Airline:     airline.String(),
			AirlineName: airlineNames[i+1],
			Flight:      name,
			Timestamp:   timestamp,
		})
	}
	return flights, nil
}

// registerOracles registers every account as an oracle concurrently
func (d *deployment) registerOracles(ctx context.Context) (map[string][]int, error) {
	var mu sync.Mutex
	oracles := make(map[string][]int, len(d.accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, account := range d.accounts {
		account := account
		g.Go(func() error {
			res, err := d.api.RegisterOracle(gctx, account, d.oracleFee)
			if client.CodeOf(err) == constants.ErrCodeAlreadyRegistered {
				res, err = d.api.GetMyIndexes(gctx, account)
			}
			if err != nil {
				return fmt.Errorf("register oracle %s: %w", account, err)
			}

			mu.Lock()
			oracles[account.String()] = res.Indexes
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Info("Oracles registered", "count", len(oracles))
	return oracles, nil
}
