package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/constants"
)

// Params holds the business-rule constants of a ledger instance
type Params struct {
	// BootstrapAirlines is the activated-airline count below which a
	// registration is admitted without a vote.
	BootstrapAirlines int
	ActivationFunding uint256.Int
	InsuranceCap      uint256.Int
	OracleFee         uint256.Int
	Quorum            int
	// Payout is Premium * PayoutNumerator / PayoutDenominator
	PayoutNumerator   uint64
	PayoutDenominator uint64
	IndexRange        uint8
	// Seed makes index assignment unpredictable across deployments
	Seed []byte
}

// Ether converts a whole-ether amount into wei
func Ether(n uint64) uint256.Int {
	var v uint256.Int
	v.Mul(uint256.NewInt(n), uint256.NewInt(constants.WeiPerEther))
	return v
}

func DefaultParams() Params {
	return Params{
		BootstrapAirlines: constants.DefaultBootstrapAirlines,
		ActivationFunding: Ether(constants.DefaultActivationEther),
		InsuranceCap:      Ether(constants.DefaultInsuranceCapEther),
		OracleFee:         Ether(constants.DefaultOracleFeeEther),
		Quorum:            constants.DefaultOracleQuorum,
		PayoutNumerator:   constants.DefaultPayoutNumerator,
		PayoutDenominator: constants.DefaultPayoutDenominator,
		IndexRange:        constants.DefaultOracleIndexRange,
		Seed:              []byte("flightsurety"),
	}
}

func (p Params) Validate() error {
	if p.BootstrapAirlines < 1 {
		return fmt.Errorf("bootstrap airlines must be at least 1, got %d", p.BootstrapAirlines)
	}
	if p.Quorum < 1 {
		return fmt.Errorf("oracle quorum must be at least 1, got %d", p.Quorum)
	}
	if p.PayoutDenominator == 0 {
		return fmt.Errorf("payout denominator must be non-zero")
	}
	if p.PayoutNumerator < p.PayoutDenominator {
		return fmt.Errorf("payout multiplier %d/%d is below 1", p.PayoutNumerator, p.PayoutDenominator)
	}
	if int(p.IndexRange) < constants.OracleIndexesPerRegistrant {
		return fmt.Errorf("index range %d cannot hold %d distinct indexes", p.IndexRange, constants.OracleIndexesPerRegistrant)
	}
	if p.InsuranceCap.IsZero() {
		return fmt.Errorf("insurance cap must be non-zero")
	}
	return nil
}

// payout computes the claim for a premium
func (p Params) payout(premium uint256.Int) uint256.Int {
	var claim uint256.Int
	claim.Mul(&premium, uint256.NewInt(p.PayoutNumerator))
	claim.Div(&claim, uint256.NewInt(p.PayoutDenominator))
	return claim
}
