package constants

// WeiPerEther is the base-unit scale of every amount
const WeiPerEther uint64 = 1_000_000_000_000_000_000

// Business rule defaults; ledger.Params may override them.
const (
	DefaultBootstrapAirlines   = 4
	DefaultActivationEther     = 10
	DefaultInsuranceCapEther   = 1
	DefaultOracleFeeEther      = 1
	DefaultOracleQuorum        = 3
	DefaultPayoutNumerator     = 3
	DefaultPayoutDenominator   = 2
	DefaultOracleIndexRange    = 10
	OracleIndexesPerRegistrant = 3
)
