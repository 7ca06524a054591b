package middleware

import (
	"net/http"
	"strings"
	"time"

	"infinite-experiment/flightsurety/internal/auth"
	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/logging"
)

// AuthMiddleware resolves the caller identity from a Bearer caller token
func AuthMiddleware(tokens *common.CallerTokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				common.RespondError(w, initTime, nil, "Unauthorized. Missing caller token", http.StatusUnauthorized)
				return
			}

			token, err := tokens.Validate(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logging.Debug("Caller token rejected", "path", r.URL.Path, "error", err)
				common.RespondError(w, initTime, nil, "Unauthorized. Invalid caller token", http.StatusUnauthorized)
				return
			}

			claims := &auth.JWTClaims{
				IdentityValue: token.Identity,
				RoleValue:     token.Role,
				TokenIDValue:  token.TokenID,
			}
			ctx := auth.SetCallerClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
