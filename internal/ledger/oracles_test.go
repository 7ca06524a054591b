package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/flightsurety/internal/models/entities"
)

func oracleAddr(i int) entities.Address {
	return entities.AddressFromBytes([]byte{0x0a, byte(i >> 8), byte(i)})
}

// oraclesHolding registers fresh oracles until n of them hold index
func oraclesHolding(t *testing.T, s *Store, index uint8, n int) []entities.Address {
	t.Helper()
	var holders []entities.Address
	for i := 0; len(holders) < n; i++ {
		require.Less(t, i, 500, "index %d never drawn", index)
		o, err := s.RegisterOracle(As(app), oracleAddr(i), Ether(1))
		require.NoError(t, err)
		if o.Holds(index) {
			holders = append(holders, o.Identity)
		}
	}
	return holders
}

func insuredFlight(t *testing.T, s *Store) (entities.FlightKey, entities.Address) {
	t.Helper()
	ids := seedAirlines(t, s, 1)
	key := seedFlight(t, s, ids[0])
	passenger := addr(0x50)
	_, err := s.BuyInsurance(As(app), passenger, key, milliEther(500))
	require.NoError(t, err)
	return key, passenger
}

func TestRegisterOracle(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RegisterOracle(As(app), oracleAddr(1), milliEther(999))
	assert.ErrorIs(t, err, ErrInsufficientFee)

	o, err := s.RegisterOracle(As(app), oracleAddr(1), Ether(1))
	require.NoError(t, err)
	assert.NotEqual(t, o.Indexes[0], o.Indexes[1])
	assert.NotEqual(t, o.Indexes[1], o.Indexes[2])
	assert.NotEqual(t, o.Indexes[0], o.Indexes[2])
	for _, idx := range o.Indexes {
		assert.Less(t, idx, uint8(10))
	}

	_, err = s.RegisterOracle(As(app), oracleAddr(1), Ether(1))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	got, err := s.Oracle(oracleAddr(1))
	require.NoError(t, err)
	assert.Equal(t, o, got)
	assert.Equal(t, Ether(1), s.OracleFees())

	_, err = s.Oracle(oracleAddr(2))
	assert.ErrorIs(t, err, ErrOracleNotRegistered)
}

func TestIndexer_IsDeterministicForSeed(t *testing.T) {
	a := indexer{seed: []byte("seed")}
	b := indexer{seed: []byte("seed")}
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.drawDistinct(oracleAddr(i), 10), b.drawDistinct(oracleAddr(i), 10))
	}
}

func TestTally(t *testing.T) {
	req := entities.StatusRequest{Responses: map[entities.StatusCode][]entities.Address{}}

	req, counted, finalized := tally(req, addr(1), entities.StatusLateAirline, 3)
	assert.True(t, counted)
	assert.False(t, finalized)

	same, counted, _ := tally(req, addr(1), entities.StatusOnTime, 3)
	assert.False(t, counted)
	assert.Empty(t, same.Responses[entities.StatusOnTime])

	req, _, _ = tally(req, addr(2), entities.StatusOnTime, 3)
	req, _, _ = tally(req, addr(3), entities.StatusLateAirline, 3)
	req, counted, finalized = tally(req, addr(4), entities.StatusLateAirline, 3)
	assert.True(t, counted)
	assert.True(t, finalized)
	assert.Equal(t, entities.StatusLateAirline, req.Status)

	after, counted, finalized := tally(req, addr(5), entities.StatusOnTime, 3)
	assert.False(t, counted)
	assert.False(t, finalized)
	assert.Len(t, after.Responses[entities.StatusOnTime], 1)
}

func TestRequestStatus_IsIdempotentPerFlight(t *testing.T) {
	s := newTestStore(t)
	key, passenger := insuredFlight(t, s)

	first, opened, err := s.RequestStatus(As(app), passenger, key)
	require.NoError(t, err)
	assert.True(t, opened)
	assert.Less(t, first.Index, uint8(10))

	second, opened, err := s.RequestStatus(As(app), addr(0x51), key)
	require.NoError(t, err)
	assert.False(t, opened)
	assert.Equal(t, first.Index, second.Index)

	_, _, err = s.RequestStatus(As(app), passenger, entities.FlightKey{Airline: key.Airline, Flight: "nope", Timestamp: 1})
	assert.ErrorIs(t, err, ErrFlightNotFound)
}

func TestSubmitResponse_QuorumCreditsPassengers(t *testing.T) {
	s := newTestStore(t)
	key, passenger := insuredFlight(t, s)
	req, _, err := s.RequestStatus(As(app), passenger, key)
	require.NoError(t, err)
	holders := oraclesHolding(t, s, req.Index, 4)

	for i := 0; i < 2; i++ {
		sub, err := s.SubmitResponse(As(app), holders[i], req.Index, key, entities.StatusLateAirline)
		require.NoError(t, err)
		assert.True(t, sub.Counted)
		assert.False(t, sub.Finalized)
	}

	// repeat from the same oracle is absorbed
	sub, err := s.SubmitResponse(As(app), holders[0], req.Index, key, entities.StatusLateAirline)
	require.NoError(t, err)
	assert.False(t, sub.Counted)

	sub, err = s.SubmitResponse(As(app), holders[2], req.Index, key, entities.StatusLateAirline)
	require.NoError(t, err)
	assert.True(t, sub.Finalized)
	require.Len(t, sub.Credited, 1)
	assert.Equal(t, milliEther(750), sub.Credited[0].Claim)

	f, err := s.Flight(key)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusLateAirline, f.Status)

	// a fourth report with another code changes nothing
	sub, err = s.SubmitResponse(As(app), holders[3], req.Index, key, entities.StatusOnTime)
	require.NoError(t, err)
	assert.False(t, sub.Counted)
	f, _ = s.Flight(key)
	assert.Equal(t, entities.StatusLateAirline, f.Status)

	policy, err := s.Policy(passenger, key)
	require.NoError(t, err)
	assert.Equal(t, entities.PolicyCreditEligible, policy.Status)

	before := s.Balance()
	paid, err := s.Withdraw(As(app), passenger, key)
	require.NoError(t, err)
	assert.Equal(t, entities.PolicyWithdrawn, paid.Status)
	after := s.Balance()
	var diff = before
	diff.Sub(&before, &after)
	assert.Equal(t, milliEther(750), diff)
	assert.Equal(t, milliEther(750), s.PaidOut())

	_, err = s.Withdraw(As(app), passenger, key)
	assert.ErrorIs(t, err, ErrNotCreditEligible)

	_, err = s.BuyInsurance(As(app), passenger, key, milliEther(100))
	assert.ErrorIs(t, err, ErrDuplicatePolicy)
}

func TestSubmitResponse_OnTimeKeepsPoliciesActive(t *testing.T) {
	s := newTestStore(t)
	key, passenger := insuredFlight(t, s)
	req, _, err := s.RequestStatus(As(app), passenger, key)
	require.NoError(t, err)
	holders := oraclesHolding(t, s, req.Index, 3)

	var last Submission
	for _, o := range holders {
		last, err = s.SubmitResponse(As(app), o, req.Index, key, entities.StatusOnTime)
		require.NoError(t, err)
	}
	assert.True(t, last.Finalized)
	assert.Empty(t, last.Credited)

	policy, err := s.Policy(passenger, key)
	require.NoError(t, err)
	assert.Equal(t, entities.PolicyActive, policy.Status)
	_, err = s.Withdraw(As(app), passenger, key)
	assert.ErrorIs(t, err, ErrNotCreditEligible)
}

func TestSubmitResponse_Rejections(t *testing.T) {
	s := newTestStore(t)
	key, passenger := insuredFlight(t, s)

	o, err := s.RegisterOracle(As(app), oracleAddr(900), Ether(1))
	require.NoError(t, err)

	_, err = s.SubmitResponse(As(app), o.Identity, o.Indexes[0], key, entities.StatusOnTime)
	assert.ErrorIs(t, err, ErrRequestNotOpen)

	_, err = s.SubmitResponse(As(app), addr(0x77), 0, key, entities.StatusOnTime)
	assert.ErrorIs(t, err, ErrIndexMismatch)

	_, err = s.SubmitResponse(As(app), o.Identity, o.Indexes[0], key, entities.StatusCode(15))
	assert.ErrorIs(t, err, ErrInvalidStatusCode)

	req, _, err := s.RequestStatus(As(app), passenger, key)
	require.NoError(t, err)

	var notHeld uint8
	for notHeld = 0; o.Holds(notHeld); notHeld++ {
	}
	_, err = s.SubmitResponse(As(app), o.Identity, notHeld, key, entities.StatusOnTime)
	assert.ErrorIs(t, err, ErrIndexMismatch)
	assert.Equal(t, KindConsensus, KindOf(err))

	if !o.Holds(req.Index) {
		_, err = s.SubmitResponse(As(app), o.Identity, o.Indexes[0], key, entities.StatusOnTime)
		assert.ErrorIs(t, err, ErrIndexMismatch)
	}
}
