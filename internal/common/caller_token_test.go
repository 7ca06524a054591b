package common

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/entities"
)

func TestCallerToken_RoundTrip(t *testing.T) {
	svc := NewCallerTokenService([]byte("secret"), nil)
	identity := entities.AddressFromBytes([]byte{0x01, 0x02})

	token, err := svc.Issue(identity, constants.RolePassenger, time.Minute)
	require.NoError(t, err)

	got, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, identity, got.Identity)
	assert.Equal(t, constants.RolePassenger, got.Role)
	assert.NotEmpty(t, got.TokenID)
}

func TestCallerToken_Rejections(t *testing.T) {
	svc := NewCallerTokenService([]byte("secret"), nil)
	identity := entities.AddressFromBytes([]byte{0x01})

	_, err := svc.Issue(identity, constants.CallerRole("pilot"), time.Minute)
	assert.Error(t, err)

	expired, err := svc.Issue(identity, constants.RoleOracle, -time.Minute)
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), expired)
	assert.Error(t, err)

	other := NewCallerTokenService([]byte("other"), nil)
	foreign, err := other.Issue(identity, constants.RoleOracle, time.Minute)
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), foreign)
	assert.Error(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": identity.String()})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), raw)
	assert.Error(t, err)
}
