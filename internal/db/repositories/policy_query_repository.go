package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// PolicyQueryRepo answers read-side queries against the persisted tables
type PolicyQueryRepo struct {
	db *sqlx.DB
}

func NewPolicyQueryRepo(db *sqlx.DB) *PolicyQueryRepo {
	return &PolicyQueryRepo{db}
}

func (r *PolicyQueryRepo) ListByPassenger(ctx context.Context, passenger entities.Address) ([]entities.PolicyRecord, error) {
	records := []entities.PolicyRecord{}
	query := r.db.Rebind(constants.ListPoliciesByPassenger)
	if err := r.db.SelectContext(ctx, &records, query, passenger.String()); err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	return records, nil
}

func (r *PolicyQueryRepo) FlightsBoard(ctx context.Context) ([]entities.FlightBoardEntry, error) {
	board := []entities.FlightBoardEntry{}
	if err := r.db.SelectContext(ctx, &board, r.db.Rebind(constants.ListFlightsBoard)); err != nil {
		return nil, fmt.Errorf("failed to load flights board: %w", err)
	}
	return board, nil
}

func (r *PolicyQueryRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
