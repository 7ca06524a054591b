package jobs

import (
	"context"
	"time"

	"infinite-experiment/flightsurety/internal/metrics"
)

// InitializeJobs starts all background jobs of the server
func InitializeJobs(ctx context.Context, svc FlightStatusRequester, m *metrics.MetricsRegistry, pollInterval time.Duration) *StatusPollJob {
	pollJob := NewStatusPollJob(svc, m)
	go pollJob.RunScheduled(ctx, pollInterval)
	return pollJob
}
