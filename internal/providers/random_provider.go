package providers

import (
	"context"
	"math/rand"
	"sync"

	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// RandomProvider simulates flight outcomes by drawing uniformly from the
// reportable status codes. Used for local networks without a data feed.
type RandomProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomProvider(seed int64) *RandomProvider {
	return &RandomProvider{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomProvider) GetProviderType() string {
	return "random"
}

func (p *RandomProvider) FlightStatus(ctx context.Context, req dtos.OracleRequestEvent) (entities.StatusCode, error) {
	if err := ctx.Err(); err != nil {
		return entities.StatusUnknown, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return entities.ReportableStatuses[p.rng.Intn(len(entities.ReportableStatuses))], nil
}
