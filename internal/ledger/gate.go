package ledger

import "infinite-experiment/flightsurety/internal/models/entities"

// Call carries the identity invoking a storage operation
type Call struct {
	Caller entities.Address
}

// As builds a Call for caller
func As(caller entities.Address) Call {
	return Call{Caller: caller}
}

// Gate is the operational switch plus the single identity allowed to
// mutate storage. Only the owner fixed at construction may change either.
type Gate struct {
	owner       entities.Address
	authorized  entities.Address
	operational bool
}

func NewGate(owner entities.Address) *Gate {
	return &Gate{owner: owner, operational: true}
}

func (g *Gate) SetOperatingStatus(call Call, operational bool) error {
	if call.Caller != g.owner {
		return ErrUnauthorized
	}
	g.operational = operational
	return nil
}

func (g *Gate) SetAuthorizedCaller(call Call, caller entities.Address) error {
	if call.Caller != g.owner {
		return ErrUnauthorized
	}
	if caller.IsZero() {
		return invalid("authorized caller must not be the zero address")
	}
	g.authorized = caller
	return nil
}

func (g *Gate) IsOperational() bool { return g.operational }

func (g *Gate) AuthorizedCaller() entities.Address { return g.authorized }

func (g *Gate) Owner() entities.Address { return g.owner }

// check guards every mutating storage entry point
func (g *Gate) check(call Call) error {
	if !g.operational {
		return ErrNotOperational
	}
	if g.authorized.IsZero() || call.Caller != g.authorized {
		return ErrUnauthorized
	}
	return nil
}
