package workers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"infinite-experiment/flightsurety/internal/client"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/logging"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
	"infinite-experiment/flightsurety/internal/providers"
)

// OracleRequestQueue is the consumer side of the oracle request stream
type OracleRequestQueue interface {
	CreateConsumerGroup(ctx context.Context, groupName string) error
	DequeueOracleRequest(ctx context.Context, groupName, consumerName string, blockTime time.Duration) (*dtos.OracleRequestEvent, string, error)
	Ack(ctx context.Context, groupName, messageID string) error
	ClaimStale(ctx context.Context, groupName, consumerName string, minIdleTime time.Duration) ([]*dtos.OracleRequestEvent, []string, error)
}

// ResponseSubmitter sends one oracle's report to the app
type ResponseSubmitter interface {
	SubmitOracleResponse(ctx context.Context, oracle entities.Address, index uint8, flight entities.FlightKey, code entities.StatusCode) (*dtos.SubmissionResponse, error)
}

// OracleWorker answers oracle requests for a fixed set of registered
// oracles: every oracle holding the requested index reports the status
// the provider gives for the flight.
type OracleWorker struct {
	workerID  string
	queue     OracleRequestQueue
	provider  providers.StatusProvider
	submitter ResponseSubmitter
	oracles   []entities.Oracle

	processed atomic.Int64
	failed    atomic.Int64
}

func NewOracleWorker(
	workerID string,
	queue OracleRequestQueue,
	provider providers.StatusProvider,
	submitter ResponseSubmitter,
	oracles []entities.Oracle,
) *OracleWorker {
	return &OracleWorker{
		workerID:  workerID,
		queue:     queue,
		provider:  provider,
		submitter: submitter,
		oracles:   oracles,
	}
}

// Start runs numWorkers consumers and a stale-message reclaimer until ctx is done
func (w *OracleWorker) Start(ctx context.Context, numWorkers int) error {
	logging.Info("Starting oracle workers",
		"worker_id", w.workerID,
		"workers", numWorkers,
		"oracles", len(w.oracles),
		"provider", w.provider.GetProviderType(),
	)

	if err := w.queue.CreateConsumerGroup(ctx, constants.OracleWorkerGroup); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		consumer := fmt.Sprintf("%s-%d", w.workerID, i)
		g.Go(func() error {
			w.processQueue(ctx, consumer)
			return nil
		})
	}
	g.Go(func() error {
		w.claimStaleMessages(ctx, w.workerID+"-reclaimer")
		return nil
	})

	err := g.Wait()
	logging.Info("Oracle workers stopped",
		"processed", w.processed.Load(),
		"failed", w.failed.Load(),
	)
	return err
}

func (w *OracleWorker) processQueue(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// blocks for up to 5 seconds
		event, messageID, err := w.queue.DequeueOracleRequest(ctx, constants.OracleWorkerGroup, consumer, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Warn("Error dequeuing oracle request", "consumer", consumer, "error", err)
			time.Sleep(time.Second)
			continue
		}
		if event == nil {
			continue
		}

		w.handle(ctx, consumer, event, messageID)
	}
}

// claimStaleMessages picks up requests a crashed consumer never acknowledged
func (w *OracleWorker) claimStaleMessages(ctx context.Context, consumer string) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			events, ids, err := w.queue.ClaimStale(ctx, constants.OracleWorkerGroup, consumer, 2*time.Minute)
			if err != nil {
				logging.Warn("Failed to claim stale oracle requests", "error", err)
				continue
			}
			for i, event := range events {
				w.handle(ctx, consumer, event, ids[i])
			}
		}
	}
}

func (w *OracleWorker) handle(ctx context.Context, consumer string, event *dtos.OracleRequestEvent, messageID string) {
	if err := w.HandleEvent(ctx, *event); err != nil {
		w.failed.Add(1)
		logging.Error("Failed to answer oracle request",
			"consumer", consumer,
			"flight", event.Flight,
			"index", event.Index,
			"error", err,
		)
	} else {
		w.processed.Add(1)
	}

	// acknowledged either way; the app republishes while the request stays open
	if err := w.queue.Ack(ctx, constants.OracleWorkerGroup, messageID); err != nil {
		logging.Warn("Failed to acknowledge oracle request", "message_id", messageID, "error", err)
	}
}

// HandleEvent submits a report from every oracle holding the event's index
func (w *OracleWorker) HandleEvent(ctx context.Context, event dtos.OracleRequestEvent) error {
	airline, err := entities.ParseAddress(event.Airline)
	if err != nil {
		return fmt.Errorf("invalid airline in event: %w", err)
	}
	flight := entities.FlightKey{Airline: airline, Flight: event.Flight, Timestamp: event.Timestamp}
	log := logging.WithFlight(flight.String(), event.Index)

	var holders []entities.Oracle
	for _, o := range w.oracles {
		if o.Holds(event.Index) {
			holders = append(holders, o)
		}
	}
	if len(holders) == 0 {
		log.Debugw("No local oracle holds index")
		return nil
	}

	code, err := w.provider.FlightStatus(ctx, event)
	if err != nil {
		return fmt.Errorf("status provider: %w", err)
	}

	var finalized atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	for _, o := range holders {
		oracle := o.Identity
		g.Go(func() error {
			sub, err := w.submitter.SubmitOracleResponse(gctx, oracle, event.Index, flight, code)
			if err != nil {
				switch client.CodeOf(err) {
				case constants.ErrCodeRequestNotOpen, constants.ErrCodeIndexMismatch:
					// request closed or moved on; nothing left to report
					log.Debugw("Oracle response skipped", "oracle", oracle, "error", err)
					return nil
				}
				return fmt.Errorf("oracle %s: %w", oracle, err)
			}
			if sub.Finalized {
				finalized.Store(true)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Infow("Oracle request answered",
		"status", code.String(),
		"reporters", len(holders),
		"finalized", finalized.Load(),
	)
	return nil
}
