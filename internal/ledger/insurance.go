package ledger

import (
	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/models/entities"
)

// InsuranceLedger owns policies and the pooled escrow balance. The pool
// holds airline funding and premiums; payouts draw from it.
type InsuranceLedger struct {
	policies map[entities.PolicyKey]*entities.Policy
	byFlight map[entities.FlightKey][]entities.PolicyKey
	order    []entities.PolicyKey
	balance  uint256.Int
	paidOut  uint256.Int
}

func newInsuranceLedger() *InsuranceLedger {
	return &InsuranceLedger{
		policies: make(map[entities.PolicyKey]*entities.Policy),
		byFlight: make(map[entities.FlightKey][]entities.PolicyKey),
	}
}

// canDeposit reports whether amount fits in the pool
func (l *InsuranceLedger) canDeposit(amount uint256.Int) error {
	var next uint256.Int
	if _, overflow := next.AddOverflow(&l.balance, &amount); overflow {
		return invalid("escrow balance overflows")
	}
	return nil
}

func (l *InsuranceLedger) deposit(amount uint256.Int) error {
	if err := l.canDeposit(amount); err != nil {
		return err
	}
	l.credit(amount)
	return nil
}

// credit adds to the escrow balance. Callers must have run canDeposit.
func (l *InsuranceLedger) credit(amount uint256.Int) {
	l.balance.Add(&l.balance, &amount)
}

// validatePurchase runs every buy guard without mutating anything
func (l *InsuranceLedger) validatePurchase(key entities.PolicyKey, amount uint256.Int, p Params) error {
	if key.Passenger.IsZero() {
		return invalid("passenger identity is required")
	}
	if amount.IsZero() {
		return invalid("premium must be positive")
	}
	if amount.Cmp(&p.InsuranceCap) > 0 {
		return ErrAmountExceedsCap
	}
	// a withdrawn policy is terminal, so any existing entry blocks a rebuy
	if _, ok := l.policies[key]; ok {
		return ErrDuplicatePolicy
	}
	return l.canDeposit(amount)
}

func (l *InsuranceLedger) buy(key entities.PolicyKey, amount uint256.Int, p Params) (entities.Policy, error) {
	if err := l.validatePurchase(key, amount, p); err != nil {
		return entities.Policy{}, err
	}
	if err := l.deposit(amount); err != nil {
		return entities.Policy{}, err
	}
	policy := &entities.Policy{Key: key, Premium: amount, Status: entities.PolicyActive}
	l.policies[key] = policy
	l.byFlight[key.Flight] = append(l.byFlight[key.Flight], key)
	l.order = append(l.order, key)
	return *policy, nil
}

// creditPassengers moves every Active policy on the flight to
// CreditEligible when the status is the airline's fault. Other statuses
// leave policies Active and the premium stays in the pool.
func (l *InsuranceLedger) creditPassengers(flight entities.FlightKey, status entities.StatusCode, p Params) []entities.Policy {
	if !status.AirlineFault() {
		return nil
	}
	var credited []entities.Policy
	for _, key := range l.byFlight[flight] {
		policy := l.policies[key]
		if policy.Status != entities.PolicyActive {
			continue
		}
		policy.Claim = p.payout(policy.Premium)
		policy.Status = entities.PolicyCreditEligible
		credited = append(credited, *policy)
	}
	return credited
}

func (l *InsuranceLedger) withdraw(key entities.PolicyKey) (entities.Policy, error) {
	policy, ok := l.policies[key]
	if !ok || policy.Status != entities.PolicyCreditEligible {
		return entities.Policy{}, ErrNotCreditEligible
	}
	if l.balance.Lt(&policy.Claim) {
		return entities.Policy{}, ErrInsufficientEscrowBalance
	}
	l.balance.Sub(&l.balance, &policy.Claim)
	l.paidOut.Add(&l.paidOut, &policy.Claim)
	policy.Status = entities.PolicyWithdrawn
	return *policy, nil
}

// Get returns the policy or ErrPolicyNotFound
func (l *InsuranceLedger) Get(key entities.PolicyKey) (entities.Policy, error) {
	policy, ok := l.policies[key]
	if !ok {
		return entities.Policy{}, ErrPolicyNotFound
	}
	return *policy, nil
}

// ForFlight lists the policies written on a flight in purchase order
func (l *InsuranceLedger) ForFlight(flight entities.FlightKey) []entities.Policy {
	keys := l.byFlight[flight]
	out := make([]entities.Policy, 0, len(keys))
	for _, key := range keys {
		out = append(out, *l.policies[key])
	}
	return out
}

// List returns every policy in purchase order
func (l *InsuranceLedger) List() []entities.Policy {
	out := make([]entities.Policy, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, *l.policies[key])
	}
	return out
}

func (l *InsuranceLedger) Balance() uint256.Int { return l.balance }

func (l *InsuranceLedger) PaidOut() uint256.Int { return l.paidOut }
