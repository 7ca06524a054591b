package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/db/repositories"
	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/metrics"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

var (
	owner = entities.AddressFromBytes([]byte{0x0f})
	app   = entities.AddressFromBytes([]byte{0x0a})
)

type mockPublisher struct {
	publishFunc func(ctx context.Context, event dtos.OracleRequestEvent) error
	events      []dtos.OracleRequestEvent
}

func (m *mockPublisher) PublishOracleRequest(ctx context.Context, event dtos.OracleRequestEvent) error {
	m.events = append(m.events, event)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, event)
	}
	return nil
}

type mockPersister struct {
	saveFunc func(ctx context.Context, state ledger.State) error
}

func (m *mockPersister) Save(ctx context.Context, state ledger.State) error {
	return m.saveFunc(ctx, state)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func newStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.NewStore(owner, ledger.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, store.SetAuthorizedCaller(ledger.As(owner), app))
	return store
}

func ether(n uint64) uint256.Int { return ledger.Ether(n) }

func airlineAddr(i int) entities.Address {
	return entities.AddressFromBytes([]byte{0xa1, byte(i)})
}

func seedAirline(t *testing.T, svc *SuretyService) entities.Address {
	t.Helper()
	ctx := context.Background()
	first := airlineAddr(1)
	_, _, err := svc.RegisterAirline(ctx, first, first, "First Air")
	require.NoError(t, err)
	_, err = svc.Fund(ctx, first, ether(10))
	require.NoError(t, err)
	return first
}

func TestSuretyService_PersistsEveryCommit(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewLedgerRepository(setupTestDB(t))
	require.NoError(t, repo.Migrate(ctx))

	svc := NewSuretyService(newStore(t), app, repo, nil, nil, metrics.NewMetricsRegistry(nil))
	airline := seedAirline(t, svc)
	flight, err := svc.RegisterFlight(ctx, airline, "FL-1", 1_700_000_000)
	require.NoError(t, err)

	passenger := entities.AddressFromBytes([]byte{0xbb})
	half := ether(1)
	half.Rsh(&half, 1)
	_, err = svc.BuyInsurance(ctx, passenger, flight.Key, half)
	require.NoError(t, err)

	state, found, err := repo.Load(ctx, owner)
	require.NoError(t, err)
	require.True(t, found)

	restored, err := ledger.NewStore(owner, ledger.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, restored.Restore(state))

	policy, err := restored.Policy(passenger, flight.Key)
	require.NoError(t, err)
	assert.Equal(t, half, policy.Premium)
	assert.Equal(t, entities.PolicyActive, policy.Status)
	assert.Equal(t, 1, restored.ActivatedAirlines())
	assert.Equal(t, app, restored.AuthorizedCaller())
}

func TestSuretyService_RollsBackWhenPersistenceFails(t *testing.T) {
	ctx := context.Background()
	fail := false
	persister := &mockPersister{saveFunc: func(ctx context.Context, state ledger.State) error {
		if fail {
			return errors.New("disk full")
		}
		return nil
	}}
	store := newStore(t)
	svc := NewSuretyService(store, app, persister, nil, nil, nil)
	airline := seedAirline(t, svc)

	fail = true
	_, err := svc.RegisterFlight(ctx, airline, "FL-9", 42)
	require.Error(t, err)
	assert.Empty(t, ledger.CodeOf(err))

	_, err = svc.FetchFlight(entities.FlightKey{Airline: airline, Flight: "FL-9", Timestamp: 42})
	assert.ErrorIs(t, err, ledger.ErrFlightNotFound)

	fail = false
	_, err = svc.RegisterFlight(ctx, airline, "FL-9", 42)
	assert.NoError(t, err)
}

func TestSuretyService_LedgerErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	svc := NewSuretyService(newStore(t), app, nil, nil, nil, nil)
	airline := seedAirline(t, svc)

	_, err := svc.RegisterFlight(ctx, entities.AddressFromBytes([]byte{0x99}), "FL-1", 1)
	assert.ErrorIs(t, err, ledger.ErrAirlineNotActivated)

	_, err = svc.Airline(entities.AddressFromBytes([]byte{0x99}))
	assert.ErrorIs(t, err, ledger.ErrAirlineNotRegistered)

	got, err := svc.Airline(airline)
	require.NoError(t, err)
	assert.True(t, got.Activated)

	_, err = svc.GetMyIndexes(airline)
	assert.ErrorIs(t, err, ledger.ErrOracleNotRegistered)

	require.Error(t, svc.SetOperatingStatus(ctx, airline, false))
	require.NoError(t, svc.SetOperatingStatus(ctx, owner, false))
	assert.False(t, svc.IsOperational())
	_, err = svc.Fund(ctx, airline, ether(1))
	assert.ErrorIs(t, err, ledger.ErrNotOperational)
}

func TestSuretyService_OracleFlowPublishesAndPaysOut(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	cache := common.NewCacheService(60, 60)
	svc := NewSuretyService(newStore(t), app, nil, pub, cache, metrics.NewMetricsRegistry(nil))
	airline := seedAirline(t, svc)
	flight, err := svc.RegisterFlight(ctx, airline, "FL-2", 1_700_000_000)
	require.NoError(t, err)

	passenger := entities.AddressFromBytes([]byte{0xbb})
	_, err = svc.BuyInsurance(ctx, passenger, flight.Key, ether(1))
	require.NoError(t, err)

	// warm the cache with the Unknown status
	cached, err := svc.FetchFlight(flight.Key)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusUnknown, cached.Status)

	req, opened, err := svc.FetchFlightStatus(ctx, passenger, flight.Key)
	require.NoError(t, err)
	assert.True(t, opened)
	require.Len(t, pub.events, 1)
	assert.Equal(t, req.Index, pub.events[0].Index)
	assert.Equal(t, "FL-2", pub.events[0].Flight)

	var holders []entities.Address
	for i := 0; len(holders) < 3; i++ {
		require.Less(t, i, 500)
		id := entities.AddressFromBytes([]byte{0x0c, byte(i >> 8), byte(i)})
		o, err := svc.RegisterOracle(ctx, id, ether(1))
		require.NoError(t, err)
		if o.Holds(req.Index) {
			holders = append(holders, id)
		}
	}
	indexes, err := svc.GetMyIndexes(holders[0])
	require.NoError(t, err)
	assert.Contains(t, indexes[:], req.Index)

	var sub ledger.Submission
	for _, id := range holders {
		sub, err = svc.SubmitOracleResponse(ctx, id, req.Index, flight.Key, entities.StatusLateAirline)
		require.NoError(t, err)
	}
	require.True(t, sub.Finalized)

	got, err := svc.FetchFlight(flight.Key)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusLateAirline, got.Status)

	// a finalized request is not republished
	_, opened, err = svc.FetchFlightStatus(ctx, passenger, flight.Key)
	require.NoError(t, err)
	assert.False(t, opened)
	assert.Len(t, pub.events, 1)

	policy, err := svc.GetInsurance(passenger, flight.Key)
	require.NoError(t, err)
	assert.Equal(t, entities.PolicyCreditEligible, policy.Status)

	paid, err := svc.ClaimInsurance(ctx, passenger, flight.Key)
	require.NoError(t, err)
	assert.Equal(t, "1.5", common.FormatEther(paid.Claim))

	_, err = svc.WithdrawInsurance(ctx, passenger, flight.Key)
	assert.ErrorIs(t, err, ledger.ErrNotCreditEligible)
}

// gatedCache holds the first Set until release is closed
type gatedCache struct {
	common.CacheInterface
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (c *gatedCache) Set(key string, value interface{}, ttl time.Duration) {
	first := false
	c.once.Do(func() { first = true })
	if first {
		close(c.started)
		<-c.release
	}
	c.CacheInterface.Set(key, value, ttl)
}

func TestSuretyService_FetchFlightNeverCachesStatusOlderThanFinalization(t *testing.T) {
	ctx := context.Background()
	cache := &gatedCache{
		CacheInterface: common.NewCacheService(60, 60),
		started:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	svc := NewSuretyService(newStore(t), app, nil, &mockPublisher{}, cache, nil)
	airline := seedAirline(t, svc)
	flight, err := svc.RegisterFlight(ctx, airline, "FL-3", 1_700_000_000)
	require.NoError(t, err)

	passenger := entities.AddressFromBytes([]byte{0xbb})
	_, err = svc.BuyInsurance(ctx, passenger, flight.Key, ether(1))
	require.NoError(t, err)
	req, _, err := svc.FetchFlightStatus(ctx, passenger, flight.Key)
	require.NoError(t, err)

	var holders []entities.Address
	for i := 0; len(holders) < 3; i++ {
		require.Less(t, i, 500)
		id := entities.AddressFromBytes([]byte{0x0c, byte(i >> 8), byte(i)})
		o, err := svc.RegisterOracle(ctx, id, ether(1))
		require.NoError(t, err)
		if o.Holds(req.Index) {
			holders = append(holders, id)
		}
	}

	// a read of the Unknown status is stuck in its cache write
	fetchDone := make(chan error, 1)
	go func() {
		_, err := svc.FetchFlight(flight.Key)
		fetchDone <- err
	}()
	<-cache.started

	submitsDone := make(chan struct{})
	var submitErr error
	go func() {
		defer close(submitsDone)
		for _, id := range holders {
			if _, err := svc.SubmitOracleResponse(ctx, id, req.Index, flight.Key, entities.StatusLateAirline); err != nil {
				submitErr = err
				return
			}
		}
	}()

	select {
	case <-submitsDone:
	case <-time.After(100 * time.Millisecond):
	}
	close(cache.release)

	require.NoError(t, <-fetchDone)
	<-submitsDone
	require.NoError(t, submitErr)

	got, err := svc.FetchFlight(flight.Key)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusLateAirline, got.Status)
}

func TestSuretyService_PublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{publishFunc: func(ctx context.Context, event dtos.OracleRequestEvent) error {
		return errors.New("redis down")
	}}
	svc := NewSuretyService(newStore(t), app, nil, pub, nil, nil)
	airline := seedAirline(t, svc)
	flight, err := svc.RegisterFlight(ctx, airline, "FL-3", 7)
	require.NoError(t, err)

	_, opened, err := svc.FetchFlightStatus(ctx, airline, flight.Key)
	require.NoError(t, err)
	assert.True(t, opened)

	// still open, so a second call publishes again
	_, opened, err = svc.FetchFlightStatus(ctx, airline, flight.Key)
	require.NoError(t, err)
	assert.False(t, opened)
	assert.Len(t, pub.events, 2)
}
