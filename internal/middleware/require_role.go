package middleware

import (
	"net/http"
	"time"

	"infinite-experiment/flightsurety/internal/auth"
	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
)

// RequireRole rejects tokens issued for other roles. The ledger still
// decides authorization from the identity; this only keeps e.g. passenger
// tokens off the oracle and admin routes.
func RequireRole(roles ...constants.CallerRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetCallerClaims(r.Context())
			if claims == nil {
				common.RespondError(w, time.Now(), nil, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if claims.Role() == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondError(w, time.Now(), nil, "Forbidden. Requires "+roleList(roles)+" token", http.StatusForbidden)
		})
	}
}

func roleList(roles []constants.CallerRole) string {
	out := ""
	for i, role := range roles {
		if i > 0 {
			out += " or "
		}
		out += role.String()
	}
	return out
}
