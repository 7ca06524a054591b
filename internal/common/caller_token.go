package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// CallerToken is a validated caller identity
type CallerToken struct {
	Identity  entities.Address
	Role      constants.CallerRole
	TokenID   string
	ExpiresAt time.Time
}

type callerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// CallerTokenService issues and validates HS256 tokens whose subject is
// the caller's address. Revocation needs Redis; without it tokens stay
// valid until they expire.
type CallerTokenService struct {
	secretKey []byte
	redis     *redis.Client
}

func NewCallerTokenService(secretKey []byte, redis *redis.Client) *CallerTokenService {
	return &CallerTokenService{
		secretKey: secretKey,
		redis:     redis,
	}
}

// Issue signs a token for identity
func (s *CallerTokenService) Issue(identity entities.Address, role constants.CallerRole, ttl time.Duration) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("unknown caller role %q", role)
	}
	now := time.Now()
	claims := callerClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses a token and checks its signature, expiry and revocation
func (s *CallerTokenService) Validate(ctx context.Context, tokenString string) (*CallerToken, error) {
	var claims callerClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	identity, err := entities.ParseAddress(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	role := constants.CallerRole(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role claim %q", claims.Role)
	}
	if claims.ID == "" {
		return nil, errors.New("missing jti claim")
	}

	revoked, err := s.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, errors.New("token revoked")
	}

	return &CallerToken{
		Identity:  identity,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blocks a token id until ttl elapses
func (s *CallerTokenService) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if s.redis == nil {
		return errors.New("token revocation requires redis")
	}
	if err := s.redis.Set(ctx, "revoked_token:"+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *CallerTokenService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	result, err := s.redis.Get(ctx, "revoked_token:"+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result == "1", nil
}
