package jobs

import (
	"context"
	"time"

	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/metrics"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// FlightStatusRequester is the part of the surety service the poll job drives
type FlightStatusRequester interface {
	AppAddress() entities.Address
	Flights() []entities.Flight
	FetchFlightStatus(ctx context.Context, caller entities.Address, flight entities.FlightKey) (entities.StatusRequest, bool, error)
}

// StatusPollJob asks the oracles about every departed flight that has no
// final status yet. Open requests are republished so late oracles can
// still answer them.
type StatusPollJob struct {
	svc     FlightStatusRequester
	metrics *metrics.MetricsRegistry
	now     func() time.Time
}

func NewStatusPollJob(svc FlightStatusRequester, m *metrics.MetricsRegistry) *StatusPollJob {
	return &StatusPollJob{svc: svc, metrics: m, now: time.Now}
}

// PollResult summarizes one run
type PollResult struct {
	Checked int
	Opened  int
	Failed  int
}

// Run executes a single poll over the flight registry
func (j *StatusPollJob) Run(ctx context.Context) PollResult {
	start := j.now()
	defer func() {
		if j.metrics != nil {
			j.metrics.StatusPollDuration.Observe(time.Since(start).Seconds())
		}
	}()

	var res PollResult
	requester := j.svc.AppAddress()
	for _, f := range j.svc.Flights() {
		if ctx.Err() != nil {
			break
		}
		if f.Status != entities.StatusUnknown || f.Key.Timestamp > start.Unix() {
			continue
		}
		res.Checked++

		_, opened, err := j.svc.FetchFlightStatus(ctx, requester, f.Key)
		if err != nil {
			res.Failed++
			logging.Warn("Status poll failed", "flight", f.Key.String(), "error", err)
			continue
		}
		if opened {
			res.Opened++
		}
	}

	logging.Info("Status poll completed",
		"checked", res.Checked,
		"opened", res.Opened,
		"failed", res.Failed,
		"duration", time.Since(start).Truncate(time.Millisecond),
	)
	return res
}

// RunScheduled polls every interval until ctx is done
func (j *StatusPollJob) RunScheduled(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		logging.Info("Status poll job disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Run(ctx)
		case <-ctx.Done():
			logging.Info("Shutting down status poll job")
			return
		}
	}
}
