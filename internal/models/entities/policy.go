package entities

import (
	"fmt"

	"github.com/holiman/uint256"
)

// PolicyStatus tracks a policy through Active -> CreditEligible -> Withdrawn
type PolicyStatus uint8

const (
	PolicyActive PolicyStatus = iota
	PolicyCreditEligible
	PolicyWithdrawn
)

func (s PolicyStatus) String() string {
	switch s {
	case PolicyActive:
		return "ACTIVE"
	case PolicyCreditEligible:
		return "CREDIT_ELIGIBLE"
	case PolicyWithdrawn:
		return "WITHDRAWN"
	}
	return fmt.Sprintf("POLICY_STATUS_%d", uint8(s))
}

// ParsePolicyStatus is the inverse of PolicyStatus.String
func ParsePolicyStatus(s string) (PolicyStatus, error) {
	for _, status := range []PolicyStatus{PolicyActive, PolicyCreditEligible, PolicyWithdrawn} {
		if status.String() == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown policy status %q", s)
}

// PolicyKey identifies one passenger's cover on one flight
type PolicyKey struct {
	Passenger Address   `json:"passenger"`
	Flight    FlightKey `json:"flight"`
}

func (k PolicyKey) String() string {
	return k.Passenger.String() + "@" + k.Flight.String()
}

// Policy is an insurance policy snapshot. Claim stays zero until the
// policy becomes credit eligible.
type Policy struct {
	Key     PolicyKey    `json:"key"`
	Premium uint256.Int  `json:"premium"`
	Status  PolicyStatus `json:"status"`
	Claim   uint256.Int  `json:"claim"`
}
