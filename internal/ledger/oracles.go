package ledger

import (
	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/models/entities"
)

// Submission reports the effect of one oracle response
type Submission struct {
	Request entities.StatusRequest
	// Counted is false for repeats and for responses after finalization
	Counted bool
	// Finalized is true only for the response that reached quorum
	Finalized bool
	Credited  []entities.Policy
}

// OracleConsensus owns oracle registrations and status requests
type OracleConsensus struct {
	oracles  map[entities.Address]*entities.Oracle
	order    []entities.Address
	requests map[entities.FlightKey]*entities.StatusRequest
	fees     uint256.Int
	indexer  indexer
}

func newOracleConsensus(seed []byte) *OracleConsensus {
	return &OracleConsensus{
		oracles:  make(map[entities.Address]*entities.Oracle),
		requests: make(map[entities.FlightKey]*entities.StatusRequest),
		indexer:  indexer{seed: append([]byte(nil), seed...)},
	}
}

func (c *OracleConsensus) register(identity entities.Address, fee uint256.Int, p Params) (entities.Oracle, error) {
	if identity.IsZero() {
		return entities.Oracle{}, invalid("oracle identity is required")
	}
	if fee.Lt(&p.OracleFee) {
		return entities.Oracle{}, ErrInsufficientFee
	}
	if _, exists := c.oracles[identity]; exists {
		return entities.Oracle{}, ErrAlreadyRegistered
	}
	oracle := &entities.Oracle{
		Identity: identity,
		Sequence: uint64(len(c.order)),
		Indexes:  c.indexer.drawDistinct(identity, p.IndexRange),
	}
	c.oracles[identity] = oracle
	c.order = append(c.order, identity)
	c.fees.Add(&c.fees, &fee)
	return *oracle, nil
}

// open starts a status request for the flight unless one exists. The
// bool result reports whether a new request was opened.
func (c *OracleConsensus) open(requester entities.Address, flight entities.FlightKey, p Params) (entities.StatusRequest, bool) {
	if existing, ok := c.requests[flight]; ok {
		return existing.Clone(), false
	}
	req := &entities.StatusRequest{
		Index:     c.indexer.draw(requester, p.IndexRange),
		Flight:    flight,
		Requester: requester,
		Responses: make(map[entities.StatusCode][]entities.Address),
	}
	c.requests[flight] = req
	return req.Clone(), true
}

// tally is the quorum transition. An oracle is counted once per request
// and the first code whose bucket reaches quorum finalizes the request;
// anything arriving after that is absorbed.
func tally(req entities.StatusRequest, oracle entities.Address, code entities.StatusCode, quorum int) (entities.StatusRequest, bool, bool) {
	if req.Finalized || req.Reported(oracle) {
		return req, false, false
	}
	next := req.Clone()
	next.Responses[code] = append(next.Responses[code], oracle)
	if len(next.Responses[code]) >= quorum {
		next.Finalized = true
		next.Status = code
		return next, true, true
	}
	return next, true, false
}

// validateResponse checks a submission and returns the request it targets
func (c *OracleConsensus) validateResponse(oracle entities.Address, index uint8, flight entities.FlightKey, code entities.StatusCode) (*entities.StatusRequest, error) {
	registered, ok := c.oracles[oracle]
	if !ok || !registered.Holds(index) {
		return nil, ErrIndexMismatch
	}
	if !code.Valid() {
		return nil, ErrInvalidStatusCode
	}
	req, ok := c.requests[flight]
	if !ok {
		return nil, ErrRequestNotOpen
	}
	if !req.Finalized && req.Index != index {
		return nil, ErrIndexMismatch
	}
	return req, nil
}

// Oracle returns a registered oracle
func (c *OracleConsensus) Oracle(identity entities.Address) (entities.Oracle, error) {
	o, ok := c.oracles[identity]
	if !ok {
		return entities.Oracle{}, ErrOracleNotRegistered
	}
	return *o, nil
}

func (c *OracleConsensus) List() []entities.Oracle {
	out := make([]entities.Oracle, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.oracles[id])
	}
	return out
}

// Request returns the status request for a flight, if any
func (c *OracleConsensus) Request(flight entities.FlightKey) (entities.StatusRequest, bool) {
	req, ok := c.requests[flight]
	if !ok {
		return entities.StatusRequest{}, false
	}
	return req.Clone(), true
}

// Fees is the total registration fees collected
func (c *OracleConsensus) Fees() uint256.Int { return c.fees }
