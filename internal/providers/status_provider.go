package providers

import (
	"context"
	"fmt"

	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// StatusProvider answers an oracle request with the flight's status
type StatusProvider interface {
	FlightStatus(ctx context.Context, req dtos.OracleRequestEvent) (entities.StatusCode, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
