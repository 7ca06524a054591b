package constants

// Ledger error codes, grouped by taxonomy kind

// Authorization errors
const (
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeNotOperational = "NOT_OPERATIONAL"
)

// Admission errors
const (
	ErrCodeVoterNotActivated = "VOTER_NOT_ACTIVATED"
	ErrCodeAlreadyRegistered = "ALREADY_REGISTERED"
)

// Lookup errors
const (
	ErrCodeFlightNotFound       = "FLIGHT_NOT_FOUND"
	ErrCodeAirlineNotActivated  = "AIRLINE_NOT_ACTIVATED"
	ErrCodeAirlineNotRegistered = "AIRLINE_NOT_REGISTERED"
	ErrCodePolicyNotFound       = "POLICY_NOT_FOUND"
	ErrCodeOracleNotRegistered  = "ORACLE_NOT_REGISTERED"
)

// Validation errors
const (
	ErrCodeAmountExceedsCap  = "AMOUNT_EXCEEDS_CAP"
	ErrCodeDuplicatePolicy   = "DUPLICATE_POLICY"
	ErrCodeDuplicateFlight   = "DUPLICATE_FLIGHT"
	ErrCodeInsufficientFee   = "INSUFFICIENT_FEE"
	ErrCodeInvalidArgument   = "INVALID_ARGUMENT"
	ErrCodeInvalidStatusCode = "INVALID_STATUS_CODE"
)

// Consensus errors
const (
	ErrCodeIndexMismatch  = "INDEX_MISMATCH"
	ErrCodeRequestNotOpen = "REQUEST_NOT_OPEN"
)

// Settlement errors
const (
	ErrCodeNotCreditEligible         = "NOT_CREDIT_ELIGIBLE"
	ErrCodeInsufficientEscrowBalance = "INSUFFICIENT_ESCROW_BALANCE"
)

var SuretyErrorMessages = map[string]string{
	ErrCodeUnauthorized:   "Caller is not allowed to perform this operation",
	ErrCodeNotOperational: "The ledger is paused",

	ErrCodeVoterNotActivated: "Only activated airlines may register other airlines",
	ErrCodeAlreadyRegistered: "Identity is already registered",

	ErrCodeFlightNotFound:       "Flight is not registered",
	ErrCodeAirlineNotActivated:  "Airline has not been activated",
	ErrCodeAirlineNotRegistered: "Airline is not part of the registry",
	ErrCodePolicyNotFound:       "No insurance policy for this passenger and flight",
	ErrCodeOracleNotRegistered:  "Oracle is not registered",

	ErrCodeAmountExceedsCap:  "Premium exceeds the per-policy cap",
	ErrCodeDuplicatePolicy:   "Passenger already holds a policy for this flight",
	ErrCodeDuplicateFlight:   "Flight is already registered",
	ErrCodeInsufficientFee:   "Registration fee is below the required amount",
	ErrCodeInvalidArgument:   "Request argument is invalid",
	ErrCodeInvalidStatusCode: "Status code is not recognised",

	ErrCodeIndexMismatch:  "Index does not match the oracle or the open request",
	ErrCodeRequestNotOpen: "No status request is open for this flight",

	ErrCodeNotCreditEligible:         "Policy is not eligible for a payout",
	ErrCodeInsufficientEscrowBalance: "Escrow balance cannot cover the claim",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := SuretyErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
