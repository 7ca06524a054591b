package ledger

import (
	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/models/entities"
)

// AdmissionOutcome describes what a registration attempt did
type AdmissionOutcome int

const (
	// AdmissionCreated means a new candidate entry was created
	AdmissionCreated AdmissionOutcome = iota
	// AdmissionVoted means a new distinct vote was counted
	AdmissionVoted
	// AdmissionIgnored means the vote was a repeat or the airline was already admitted
	AdmissionIgnored
)

func (o AdmissionOutcome) String() string {
	switch o {
	case AdmissionCreated:
		return "created"
	case AdmissionVoted:
		return "voted"
	case AdmissionIgnored:
		return "ignored"
	}
	return "unknown"
}

// AirlineRegistry owns the airline table
type AirlineRegistry struct {
	airlines  map[entities.Address]*entities.Airline
	order     []entities.Address
	activated int
}

func newAirlineRegistry() *AirlineRegistry {
	return &AirlineRegistry{airlines: make(map[entities.Address]*entities.Airline)}
}

// admit is the admission transition: given the candidate snapshot, the
// voter and the current activated count it returns the next snapshot.
// Consensus never reverts and a voter is counted at most once.
func admit(candidate entities.Airline, voter entities.Address, activated int, p Params) (entities.Airline, bool) {
	if candidate.Consensus || candidate.HasVoted(voter) {
		return candidate, false
	}
	next := candidate.Clone()
	next.Voters = append(next.Voters, voter)
	next.VoteCount = len(next.Voters)

	if activated < p.BootstrapAirlines || next.VoteCount > activated/2 {
		next.Consensus = true
	}
	next.Activated = next.Consensus && next.Funding.Cmp(&p.ActivationFunding) >= 0
	return next, true
}

// register validates and applies a registration attempt. No state is
// touched unless the returned error is nil.
func (r *AirlineRegistry) register(candidate entities.Address, name string, voter entities.Address, p Params) (entities.Airline, AdmissionOutcome, error) {
	if candidate.IsZero() {
		return entities.Airline{}, 0, invalid("candidate identity is required")
	}

	bootstrap := len(r.airlines) == 0
	if !bootstrap && !r.isActivated(voter) {
		return entities.Airline{}, 0, ErrVoterNotActivated
	}

	current, exists := r.airlines[candidate]
	var snapshot entities.Airline
	if exists {
		snapshot = *current
	} else {
		if name == "" {
			return entities.Airline{}, 0, invalid("airline name is required")
		}
		snapshot = entities.Airline{Identity: candidate, Name: name}
	}

	next, changed := admit(snapshot, voter, r.activated, p)
	if !changed {
		return next.Clone(), AdmissionIgnored, nil
	}

	outcome := AdmissionVoted
	if !exists {
		outcome = AdmissionCreated
		r.order = append(r.order, candidate)
	}
	r.store(snapshot, next)
	return next.Clone(), outcome, nil
}

// fund adds amount to the airline's funding and activates it once both
// consensus and the activation threshold hold.
func (r *AirlineRegistry) fund(identity entities.Address, amount uint256.Int, p Params) (entities.Airline, error) {
	current, ok := r.airlines[identity]
	if !ok {
		return entities.Airline{}, ErrAirlineNotRegistered
	}
	if amount.IsZero() {
		return entities.Airline{}, invalid("funding amount must be positive")
	}
	next := current.Clone()
	if _, overflow := next.Funding.AddOverflow(&current.Funding, &amount); overflow {
		return entities.Airline{}, invalid("funding overflows")
	}
	next.Activated = current.Activated || (next.Consensus && next.Funding.Cmp(&p.ActivationFunding) >= 0)
	r.store(*current, next)
	return next.Clone(), nil
}

func (r *AirlineRegistry) store(prev, next entities.Airline) {
	if next.Activated && !prev.Activated {
		r.activated++
	}
	stored := next
	r.airlines[next.Identity] = &stored
}

func (r *AirlineRegistry) isActivated(identity entities.Address) bool {
	a, ok := r.airlines[identity]
	return ok && a.Activated
}

// Get returns a copy of the airline record
func (r *AirlineRegistry) Get(identity entities.Address) (entities.Airline, bool) {
	a, ok := r.airlines[identity]
	if !ok {
		return entities.Airline{}, false
	}
	return a.Clone(), true
}

// ActivatedCount is the consensus denominator
func (r *AirlineRegistry) ActivatedCount() int { return r.activated }

// List returns airlines in registration order
func (r *AirlineRegistry) List() []entities.Airline {
	out := make([]entities.Airline, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.airlines[id].Clone())
	}
	return out
}
