package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/metrics"
	"infinite-experiment/flightsurety/internal/models/entities"
	"infinite-experiment/flightsurety/internal/services"
)

var (
	owner   = entities.AddressFromBytes([]byte{0x0f})
	app     = entities.AddressFromBytes([]byte{0x0a})
	airline = entities.AddressFromBytes([]byte{0xa1})
)

func newService(t *testing.T) *services.SuretyService {
	t.Helper()
	store, err := ledger.NewStore(owner, ledger.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, store.SetAuthorizedCaller(ledger.As(owner), app))

	svc := services.NewSuretyService(store, app, nil, nil, nil, nil)
	ctx := context.Background()
	_, _, err = svc.RegisterAirline(ctx, airline, airline, "First Air")
	require.NoError(t, err)
	_, err = svc.Fund(ctx, airline, ledger.Ether(10))
	require.NoError(t, err)
	return svc
}

func TestStatusPollJob_RequestsDepartedUnknownFlights(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	now := time.Unix(1_700_000_000, 0)

	departed, err := svc.RegisterFlight(ctx, airline, "FL-0", now.Add(-time.Hour).Unix())
	require.NoError(t, err)
	_, err = svc.RegisterFlight(ctx, airline, "FL-1", now.Add(time.Hour).Unix())
	require.NoError(t, err)

	job := NewStatusPollJob(svc, metrics.NewMetricsRegistry(nil))
	job.now = func() time.Time { return now }

	res := job.Run(ctx)
	assert.Equal(t, PollResult{Checked: 1, Opened: 1}, res)

	_, opened, err := svc.FetchFlightStatus(ctx, app, departed.Key)
	require.NoError(t, err)
	assert.False(t, opened, "poll should have opened the request already")

	// still unknown, so it is checked again but not reopened
	res = job.Run(ctx)
	assert.Equal(t, PollResult{Checked: 1}, res)
}

type failingRequester struct {
	flights []entities.Flight
	calls   int
}

func (f *failingRequester) AppAddress() entities.Address { return app }

func (f *failingRequester) Flights() []entities.Flight { return f.flights }

func (f *failingRequester) FetchFlightStatus(ctx context.Context, caller entities.Address, flight entities.FlightKey) (entities.StatusRequest, bool, error) {
	f.calls++
	return entities.StatusRequest{}, false, errors.New("paused")
}

func TestStatusPollJob_SkipsFinalAndCountsFailures(t *testing.T) {
	req := &failingRequester{flights: []entities.Flight{
		{Key: entities.FlightKey{Airline: airline, Flight: "FL-0", Timestamp: 10}},
		{Key: entities.FlightKey{Airline: airline, Flight: "FL-1", Timestamp: 10}, Status: entities.StatusOnTime},
		{Key: entities.FlightKey{Airline: airline, Flight: "FL-2", Timestamp: 20}},
	}}
	job := NewStatusPollJob(req, nil)
	job.now = func() time.Time { return time.Unix(100, 0) }

	res := job.Run(context.Background())
	assert.Equal(t, PollResult{Checked: 2, Failed: 2}, res)
	assert.Equal(t, 2, req.calls)
}

func TestStatusPollJob_RunScheduledStops(t *testing.T) {
	req := &failingRequester{}
	job := NewStatusPollJob(req, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.RunScheduled(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunScheduled did not return after cancel")
	}

	// zero interval disables the job
	job.RunScheduled(context.Background(), 0)
}
