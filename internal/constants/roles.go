package constants

// CallerRole is carried in caller tokens for logging and rate-limit buckets.
// Authorization itself is decided by the ledger from the identity alone.
type CallerRole string

const (
	RoleOwner     CallerRole = "owner"
	RoleAirline   CallerRole = "airline"
	RolePassenger CallerRole = "passenger"
	RoleOracle    CallerRole = "oracle"
)

func (r CallerRole) String() string { return string(r) }

// Valid reports whether r is a known role
func (r CallerRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAirline, RolePassenger, RoleOracle:
		return true
	}
	return false
}
