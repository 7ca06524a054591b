package services

import (
	"context"
	"fmt"

	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// LedgerRepository loads and saves ledger snapshots
type LedgerRepository interface {
	LedgerPersister
	Load(ctx context.Context, owner entities.Address) (ledger.State, bool, error)
}

// OpenLedger deploys a ledger for owner, restores whatever was persisted
// for it and makes sure app is its authorized caller.
func OpenLedger(ctx context.Context, owner, app entities.Address, params ledger.Params, repo LedgerRepository) (*ledger.Store, error) {
	store, err := ledger.NewStore(owner, params)
	if err != nil {
		return nil, err
	}

	state, found, err := repo.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if found {
		if err := store.Restore(state); err != nil {
			return nil, fmt.Errorf("failed to restore ledger: %w", err)
		}
		logging.Info("Ledger restored",
			"owner", owner,
			"airlines", len(state.Airlines),
			"flights", len(state.Flights),
			"policies", len(state.Policies),
			"oracles", len(state.Oracles),
		)
	} else {
		logging.Info("Deploying new ledger", "owner", owner)
	}

	if store.AuthorizedCaller() != app {
		if err := store.SetAuthorizedCaller(ledger.As(owner), app); err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, store.Snapshot()); err != nil {
			return nil, fmt.Errorf("failed to persist authorized caller: %w", err)
		}
		logging.Info("Authorized app caller", "app", app)
	}
	return store, nil
}
