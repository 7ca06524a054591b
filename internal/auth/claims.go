package auth

import (
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// CallerClaims is the authenticated caller of a request
type CallerClaims interface {
	Identity() entities.Address
	Role() constants.CallerRole
	TokenID() string
	Source() string
}

type JWTClaims struct {
	IdentityValue entities.Address
	RoleValue     constants.CallerRole
	TokenIDValue  string
}

func (c *JWTClaims) Identity() entities.Address { return c.IdentityValue }
func (c *JWTClaims) Role() constants.CallerRole { return c.RoleValue }
func (c *JWTClaims) TokenID() string            { return c.TokenIDValue }
func (c *JWTClaims) Source() string             { return "JWT" }
