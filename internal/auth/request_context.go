package auth

import (
	"context"
)

type contextKey string

var callerClaimsKey contextKey = "caller_claims"

func SetCallerClaims(ctx context.Context, claims CallerClaims) context.Context {
	return context.WithValue(ctx, callerClaimsKey, claims)
}

func GetCallerClaims(ctx context.Context) CallerClaims {
	val := ctx.Value(callerClaimsKey)
	if claims, ok := val.(CallerClaims); ok {
		return claims
	}
	return nil
}
