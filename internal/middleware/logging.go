package middleware

import (
	"net/http"
	"time"

	"infinite-experiment/flightsurety/internal/auth"
	requestctx "infinite-experiment/flightsurety/internal/context"
	"infinite-experiment/flightsurety/internal/logging"
)

type respLogger struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (l *respLogger) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *respLogger) Write(b []byte) (int, error) {
	n, err := l.ResponseWriter.Write(b)
	l.bytes += n
	return n, err
}

// CallerLogging traces authenticated calls at debug level. Mount it after
// AuthMiddleware so the caller identity is known.
func CallerLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, role := "", ""
		if claims := auth.GetCallerClaims(r.Context()); claims != nil {
			caller = claims.Identity().String()
			role = claims.Role().String()
		}
		log := logging.WithCaller(requestctx.GetRequestID(r.Context()), caller, r.URL.Path)
		log.Debugw("→ request", "method", r.Method, "role", role)

		lw := &respLogger{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(lw, r)

		log.Debugw("← response",
			"status", lw.status,
			"bytes", lw.bytes,
			"duration", time.Since(start).String(),
		)
	})
}
