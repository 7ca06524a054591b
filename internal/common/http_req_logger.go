package common

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httputil"

	"infinite-experiment/flightsurety/internal/logging"
)

// LogOutgoingRequest dumps req at debug level with credentials masked.
// The body is restored so the request can still be sent.
func LogOutgoingRequest(req *http.Request) {
	if !logging.DebugEnabled() {
		return
	}

	var bodyCopy []byte
	if req.Body != nil {
		bodyCopy, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(bodyCopy))
	}

	masked := req.Clone(req.Context())
	for _, h := range []string{"Authorization", "X-API-Key"} {
		if masked.Header.Get(h) != "" {
			masked.Header.Set(h, "***")
		}
	}
	if bodyCopy != nil {
		masked.Body = io.NopCloser(bytes.NewReader(bodyCopy))
	}

	dump, err := httputil.DumpRequestOut(masked, true)
	if err != nil {
		logging.Debug("Failed to dump outgoing request", "url", req.URL.String(), "error", err)
		return
	}
	logging.Debug("Outgoing HTTP request", "dump", string(dump))
}
