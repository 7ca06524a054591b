package ledger

import (
	"errors"
	"fmt"

	"infinite-experiment/flightsurety/internal/constants"
)

// Kind is the taxonomy bucket of a ledger failure
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindAdmission     Kind = "admission"
	KindLookup        Kind = "lookup"
	KindValidation    Kind = "validation"
	KindConsensus     Kind = "consensus"
	KindSettlement    Kind = "settlement"
)

// Error is returned by every failing ledger operation. Two errors match
// under errors.Is when their codes are equal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code, Message: constants.GetErrorMessage(code)}
}

var (
	ErrUnauthorized   = newError(KindAuthorization, constants.ErrCodeUnauthorized)
	ErrNotOperational = newError(KindAuthorization, constants.ErrCodeNotOperational)

	ErrVoterNotActivated = newError(KindAdmission, constants.ErrCodeVoterNotActivated)
	ErrAlreadyRegistered = newError(KindAdmission, constants.ErrCodeAlreadyRegistered)

	ErrFlightNotFound       = newError(KindLookup, constants.ErrCodeFlightNotFound)
	ErrAirlineNotActivated  = newError(KindLookup, constants.ErrCodeAirlineNotActivated)
	ErrAirlineNotRegistered = newError(KindLookup, constants.ErrCodeAirlineNotRegistered)
	ErrPolicyNotFound       = newError(KindLookup, constants.ErrCodePolicyNotFound)
	ErrOracleNotRegistered  = newError(KindLookup, constants.ErrCodeOracleNotRegistered)

	ErrAmountExceedsCap  = newError(KindValidation, constants.ErrCodeAmountExceedsCap)
	ErrDuplicatePolicy   = newError(KindValidation, constants.ErrCodeDuplicatePolicy)
	ErrDuplicateFlight   = newError(KindValidation, constants.ErrCodeDuplicateFlight)
	ErrInsufficientFee   = newError(KindValidation, constants.ErrCodeInsufficientFee)
	ErrInvalidArgument   = newError(KindValidation, constants.ErrCodeInvalidArgument)
	ErrInvalidStatusCode = newError(KindValidation, constants.ErrCodeInvalidStatusCode)

	ErrIndexMismatch  = newError(KindConsensus, constants.ErrCodeIndexMismatch)
	ErrRequestNotOpen = newError(KindConsensus, constants.ErrCodeRequestNotOpen)

	ErrNotCreditEligible         = newError(KindSettlement, constants.ErrCodeNotCreditEligible)
	ErrInsufficientEscrowBalance = newError(KindSettlement, constants.ErrCodeInsufficientEscrowBalance)
)

// invalid wraps ErrInvalidArgument with the offending detail
func invalid(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    constants.ErrCodeInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the taxonomy kind of err, or "" for non-ledger errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the error code of err, or "" for non-ledger errors
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
