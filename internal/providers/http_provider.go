package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// HTTPStatusProvider asks an external flight data service for the status.
// The service answers GET {BaseURL}/flights/{airline}/{flight}/{timestamp}
// with {"status_code": 20} or {"status": "LATE_AIRLINE"}.
type HTTPStatusProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPStatusProvider(baseURL, apiKey string) *HTTPStatusProvider {
	return &HTTPStatusProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (p *HTTPStatusProvider) GetProviderType() string {
	return "http"
}

type flightStatusBody struct {
	StatusCode *int   `json:"status_code"`
	Status     string `json:"status"`
}

func (p *HTTPStatusProvider) FlightStatus(ctx context.Context, req dtos.OracleRequestEvent) (entities.StatusCode, error) {
	endpoint := fmt.Sprintf("/flights/%s/%s/%d",
		url.PathEscape(req.Airline), url.PathEscape(req.Flight), req.Timestamp)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+endpoint, nil)
	if err != nil {
		return entities.StatusUnknown, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if p.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	common.LogOutgoingRequest(httpReq)
	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return entities.StatusUnknown, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetProviderErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return entities.StatusUnknown, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read response body",
			Err:     err,
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return entities.StatusUnknown, &ProviderError{
			Code:    constants.ErrCodeFlightUnknown,
			Message: fmt.Sprintf("Flight not found: %s", endpoint),
			Details: string(bodyBytes),
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return entities.StatusUnknown, &ProviderError{
			Code:    constants.ErrCodeProviderUnavailable,
			Message: fmt.Sprintf("Status provider returned %d for %s", resp.StatusCode, endpoint),
			Details: string(bodyBytes),
		}
	}

	var body flightStatusBody
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return entities.StatusUnknown, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode response",
			Details: string(bodyBytes),
			Err:     err,
		}
	}

	raw := body.Status
	if body.StatusCode != nil {
		raw = strconv.Itoa(*body.StatusCode)
	}
	code, err := entities.ParseStatusCode(raw)
	if err != nil {
		return entities.StatusUnknown, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: constants.GetProviderErrorMessage(constants.ErrCodeInvalidDataFormat),
			Details: string(bodyBytes),
			Err:     err,
		}
	}
	return code, nil
}
