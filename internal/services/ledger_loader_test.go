package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/flightsurety/internal/db/repositories"
	"infinite-experiment/flightsurety/internal/ledger"
)

func TestOpenLedger_DeploysThenRestores(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLedgerRepository(setupTestDB(t))
	require.NoError(t, repo.Migrate(ctx))

	store, err := OpenLedger(ctx, owner, app, ledger.DefaultParams(), repo)
	require.NoError(t, err)
	assert.Equal(t, app, store.AuthorizedCaller())
	assert.True(t, store.IsOperational())

	svc := NewSuretyService(store, app, repo, nil, nil, nil)
	airline := seedAirline(t, svc)
	_, err = svc.RegisterFlight(ctx, airline, "FL-7", 1_700_000_000)
	require.NoError(t, err)

	reopened, err := OpenLedger(ctx, owner, app, ledger.DefaultParams(), repo)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.ActivatedAirlines())
	assert.Len(t, reopened.Flights(), 1)
	assert.Equal(t, ledger.Ether(10), reopened.Balance())
}

func TestOpenLedger_RejectsZeroOwner(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLedgerRepository(setupTestDB(t))
	require.NoError(t, repo.Migrate(ctx))

	_, err := OpenLedger(ctx, "", app, ledger.DefaultParams(), repo)
	assert.Error(t, err)
}
