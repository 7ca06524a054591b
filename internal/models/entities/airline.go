package entities

import "github.com/holiman/uint256"

// Airline is a snapshot of a registry member or candidate.
// len(Voters) == VoteCount at all times.
type Airline struct {
	Identity  Address     `json:"identity"`
	Name      string      `json:"name"`
	Funding   uint256.Int `json:"funding"`
	Activated bool        `json:"activated"`
	Consensus bool        `json:"consensus"`
	VoteCount int         `json:"vote_count"`
	Voters    []Address   `json:"voters"`
}

// HasVoted reports whether voter already backed this airline
func (a *Airline) HasVoted(voter Address) bool {
	for _, v := range a.Voters {
		if v == voter {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with a
func (a Airline) Clone() Airline {
	a.Voters = append([]Address(nil), a.Voters...)
	return a
}
