package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/models/entities"
	gormModels "infinite-experiment/flightsurety/internal/models/gorm"
)

// LedgerRepository persists ledger snapshots. Rows are never deleted, so
// a save upserts every table inside one transaction.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Migrate creates or updates the ledger tables
func (r *LedgerRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(gormModels.AllModels()...)
}

func (r *LedgerRepository) Save(ctx context.Context, state ledger.State) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meta := gormModels.LedgerMeta{
			Owner:            state.Owner.String(),
			AuthorizedCaller: state.AuthorizedCaller.String(),
			Operational:      state.Operational,
			BalanceWei:       state.Balance.Dec(),
			PaidOutWei:       state.PaidOut.Dec(),
			OracleFeesWei:    state.OracleFees.Dec(),
			IndexCounter:     state.IndexCounter,
		}
		if err := upsertAll(tx, &meta); err != nil {
			return fmt.Errorf("failed to save ledger meta: %w", err)
		}

		if len(state.Airlines) > 0 {
			rows := make([]gormModels.Airline, 0, len(state.Airlines))
			for i, a := range state.Airlines {
				rows = append(rows, airlineRow(i, a))
			}
			if err := upsertAll(tx, &rows); err != nil {
				return fmt.Errorf("failed to save airlines: %w", err)
			}
		}

		if len(state.Flights) > 0 {
			rows := make([]gormModels.Flight, 0, len(state.Flights))
			for i, f := range state.Flights {
				rows = append(rows, gormModels.Flight{
					Airline:     f.Key.Airline.String(),
					Flight:      f.Key.Flight,
					Timestamp:   f.Key.Timestamp,
					Seq:         i,
					AirlineName: f.AirlineName,
					Status:      uint8(f.Status),
				})
			}
			if err := upsertAll(tx, &rows); err != nil {
				return fmt.Errorf("failed to save flights: %w", err)
			}
		}

		if len(state.Policies) > 0 {
			rows := make([]gormModels.Policy, 0, len(state.Policies))
			for i, p := range state.Policies {
				rows = append(rows, gormModels.Policy{
					Passenger:  p.Key.Passenger.String(),
					Airline:    p.Key.Flight.Airline.String(),
					Flight:     p.Key.Flight.Flight,
					Timestamp:  p.Key.Flight.Timestamp,
					Seq:        i,
					PremiumWei: p.Premium.Dec(),
					Status:     p.Status.String(),
					ClaimWei:   p.Claim.Dec(),
				})
			}
			if err := upsertAll(tx, &rows); err != nil {
				return fmt.Errorf("failed to save policies: %w", err)
			}
		}

		if len(state.Oracles) > 0 {
			rows := make([]gormModels.Oracle, 0, len(state.Oracles))
			for _, o := range state.Oracles {
				rows = append(rows, gormModels.Oracle{
					Identity: o.Identity.String(),
					Sequence: o.Sequence,
					Indexes:  []int{int(o.Indexes[0]), int(o.Indexes[1]), int(o.Indexes[2])},
				})
			}
			if err := upsertAll(tx, &rows); err != nil {
				return fmt.Errorf("failed to save oracles: %w", err)
			}
		}

		if len(state.Requests) > 0 {
			rows := make([]gormModels.StatusRequest, 0, len(state.Requests))
			for _, req := range state.Requests {
				rows = append(rows, requestRow(req))
			}
			if err := upsertAll(tx, &rows); err != nil {
				return fmt.Errorf("failed to save status requests: %w", err)
			}
		}
		return nil
	})
}

// Load reads the persisted state for owner. The bool is false when the
// ledger was never saved.
func (r *LedgerRepository) Load(ctx context.Context, owner entities.Address) (ledger.State, bool, error) {
	db := r.db.WithContext(ctx)

	var meta gormModels.LedgerMeta
	if err := db.Where("owner = ?", owner.String()).First(&meta).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.State{}, false, nil
		}
		return ledger.State{}, false, fmt.Errorf("failed to load ledger meta: %w", err)
	}

	state := ledger.State{
		Owner:            entities.Address(meta.Owner),
		AuthorizedCaller: entities.Address(meta.AuthorizedCaller),
		Operational:      meta.Operational,
		IndexCounter:     meta.IndexCounter,
	}
	var err error
	if state.Balance, err = parseWei(meta.BalanceWei); err != nil {
		return ledger.State{}, false, err
	}
	if state.PaidOut, err = parseWei(meta.PaidOutWei); err != nil {
		return ledger.State{}, false, err
	}
	if state.OracleFees, err = parseWei(meta.OracleFeesWei); err != nil {
		return ledger.State{}, false, err
	}

	var airlines []gormModels.Airline
	if err := db.Order("seq").Find(&airlines).Error; err != nil {
		return ledger.State{}, false, fmt.Errorf("failed to load airlines: %w", err)
	}
	for _, row := range airlines {
		a, err := airlineEntity(row)
		if err != nil {
			return ledger.State{}, false, err
		}
		state.Airlines = append(state.Airlines, a)
	}

	var flights []gormModels.Flight
	if err := db.Order("seq").Find(&flights).Error; err != nil {
		return ledger.State{}, false, fmt.Errorf("failed to load flights: %w", err)
	}
	for _, row := range flights {
		state.Flights = append(state.Flights, entities.Flight{
			Key:         flightKey(row.Airline, row.Flight, row.Timestamp),
			AirlineName: row.AirlineName,
			Status:      entities.StatusCode(row.Status),
		})
	}

	var policies []gormModels.Policy
	if err := db.Order("seq").Find(&policies).Error; err != nil {
		return ledger.State{}, false, fmt.Errorf("failed to load policies: %w", err)
	}
	for _, row := range policies {
		p, err := policyEntity(row)
		if err != nil {
			return ledger.State{}, false, err
		}
		state.Policies = append(state.Policies, p)
	}

	var oracles []gormModels.Oracle
	if err := db.Order("sequence").Find(&oracles).Error; err != nil {
		return ledger.State{}, false, fmt.Errorf("failed to load oracles: %w", err)
	}
	for _, row := range oracles {
		if len(row.Indexes) != 3 {
			return ledger.State{}, false, fmt.Errorf("oracle %s has %d indexes", row.Identity, len(row.Indexes))
		}
		state.Oracles = append(state.Oracles, entities.Oracle{
			Identity: entities.Address(row.Identity),
			Sequence: row.Sequence,
			Indexes:  [3]uint8{uint8(row.Indexes[0]), uint8(row.Indexes[1]), uint8(row.Indexes[2])},
		})
	}

	var requests []gormModels.StatusRequest
	if err := db.Find(&requests).Error; err != nil {
		return ledger.State{}, false, fmt.Errorf("failed to load status requests: %w", err)
	}
	for _, row := range requests {
		state.Requests = append(state.Requests, requestEntity(row))
	}

	return state, true, nil
}

func upsertAll(tx *gorm.DB, value interface{}) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

func airlineRow(seq int, a entities.Airline) gormModels.Airline {
	voters := make([]string, 0, len(a.Voters))
	for _, v := range a.Voters {
		voters = append(voters, v.String())
	}
	return gormModels.Airline{
		Identity:   a.Identity.String(),
		Seq:        seq,
		Name:       a.Name,
		FundingWei: a.Funding.Dec(),
		Activated:  a.Activated,
		Consensus:  a.Consensus,
		VoteCount:  a.VoteCount,
		Voters:     voters,
	}
}

func airlineEntity(row gormModels.Airline) (entities.Airline, error) {
	funding, err := parseWei(row.FundingWei)
	if err != nil {
		return entities.Airline{}, err
	}
	a := entities.Airline{
		Identity:  entities.Address(row.Identity),
		Name:      row.Name,
		Funding:   funding,
		Activated: row.Activated,
		Consensus: row.Consensus,
		VoteCount: row.VoteCount,
	}
	for _, v := range row.Voters {
		a.Voters = append(a.Voters, entities.Address(v))
	}
	return a, nil
}

func policyEntity(row gormModels.Policy) (entities.Policy, error) {
	premium, err := parseWei(row.PremiumWei)
	if err != nil {
		return entities.Policy{}, err
	}
	claim, err := parseWei(row.ClaimWei)
	if err != nil {
		return entities.Policy{}, err
	}
	status, err := entities.ParsePolicyStatus(row.Status)
	if err != nil {
		return entities.Policy{}, err
	}
	return entities.Policy{
		Key: entities.PolicyKey{
			Passenger: entities.Address(row.Passenger),
			Flight:    flightKey(row.Airline, row.Flight, row.Timestamp),
		},
		Premium: premium,
		Status:  status,
		Claim:   claim,
	}, nil
}

func requestRow(req entities.StatusRequest) gormModels.StatusRequest {
	responses := make(map[uint8][]string, len(req.Responses))
	for code, reporters := range req.Responses {
		ids := make([]string, 0, len(reporters))
		for _, id := range reporters {
			ids = append(ids, id.String())
		}
		responses[uint8(code)] = ids
	}
	return gormModels.StatusRequest{
		Airline:   req.Flight.Airline.String(),
		Flight:    req.Flight.Flight,
		Timestamp: req.Flight.Timestamp,
		Index:     req.Index,
		Requester: req.Requester.String(),
		Finalized: req.Finalized,
		Status:    uint8(req.Status),
		Responses: responses,
	}
}

func requestEntity(row gormModels.StatusRequest) entities.StatusRequest {
	req := entities.StatusRequest{
		Index:     row.Index,
		Flight:    flightKey(row.Airline, row.Flight, row.Timestamp),
		Requester: entities.Address(row.Requester),
		Finalized: row.Finalized,
		Status:    entities.StatusCode(row.Status),
		Responses: make(map[entities.StatusCode][]entities.Address, len(row.Responses)),
	}
	for code, ids := range row.Responses {
		reporters := make([]entities.Address, 0, len(ids))
		for _, id := range ids {
			reporters = append(reporters, entities.Address(id))
		}
		req.Responses[entities.StatusCode(code)] = reporters
	}
	return req
}

func flightKey(airline, flight string, timestamp int64) entities.FlightKey {
	return entities.FlightKey{Airline: entities.Address(airline), Flight: flight, Timestamp: timestamp}
}

func parseWei(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("invalid wei amount %q: %w", s, err)
	}
	return *v, nil
}
