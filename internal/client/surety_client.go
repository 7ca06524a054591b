package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

// APIError is a non-2xx answer from the surety API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("surety api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("surety api %d: %s", e.Status, e.Message)
}

// CodeOf returns the ledger error code carried by err, if any
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// SuretyClient calls the surety HTTP API on behalf of any identity. It
// mints a short-lived caller token per call from the shared secret.
type SuretyClient struct {
	BaseURL string
	Client  *http.Client
	tokens  *common.CallerTokenService
}

func NewSuretyClient(baseURL string, tokens *common.CallerTokenService) *SuretyClient {
	return &SuretyClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
		tokens: tokens,
	}
}

func (c *SuretyClient) RegisterAirline(ctx context.Context, voter, candidate entities.Address, name string) (*dtos.AirlineResponse, error) {
	var out dtos.AirlineResponse
	err := c.do(ctx, "POST", "/api/v1/airlines", voter, constants.RoleAirline,
		dtos.RegisterAirlineReq{Candidate: candidate.String(), Name: name}, &out)
	return &out, err
}

func (c *SuretyClient) Fund(ctx context.Context, airline entities.Address, amountEther string) (*dtos.AirlineResponse, error) {
	var out dtos.AirlineResponse
	err := c.do(ctx, "POST", "/api/v1/airlines/fund", airline, constants.RoleAirline,
		dtos.FundReq{Amount: amountEther}, &out)
	return &out, err
}

func (c *SuretyClient) RegisterFlight(ctx context.Context, airline entities.Address, flight string, timestamp int64) (*dtos.FlightResponse, error) {
	var out dtos.FlightResponse
	err := c.do(ctx, "POST", "/api/v1/flights", airline, constants.RoleAirline,
		dtos.RegisterFlightReq{Flight: flight, Timestamp: timestamp}, &out)
	return &out, err
}

func (c *SuretyClient) RegisterOracle(ctx context.Context, oracle entities.Address, feeEther string) (*dtos.OracleResponse, error) {
	var out dtos.OracleResponse
	err := c.do(ctx, "POST", "/api/v1/oracles", oracle, constants.RoleOracle,
		dtos.RegisterOracleReq{Fee: feeEther}, &out)
	return &out, err
}

func (c *SuretyClient) GetMyIndexes(ctx context.Context, oracle entities.Address) (*dtos.OracleResponse, error) {
	var out dtos.OracleResponse
	err := c.do(ctx, "GET", "/api/v1/oracles/me/indexes", oracle, constants.RoleOracle, nil, &out)
	return &out, err
}

func (c *SuretyClient) SubmitOracleResponse(ctx context.Context, oracle entities.Address, index uint8, flight entities.FlightKey, code entities.StatusCode) (*dtos.SubmissionResponse, error) {
	var out dtos.SubmissionResponse
	err := c.do(ctx, "POST", "/api/v1/oracles/responses", oracle, constants.RoleOracle, dtos.OracleResponseReq{
		Index:      index,
		Airline:    flight.Airline.String(),
		Flight:     flight.Flight,
		Timestamp:  flight.Timestamp,
		StatusCode: code.String(),
	}, &out)
	return &out, err
}

// FetchFlightStatus asks the app to open (or re-announce) a status request
func (c *SuretyClient) FetchFlightStatus(ctx context.Context, caller entities.Address, flight entities.FlightKey) (*dtos.StatusRequestResponse, error) {
	var out dtos.StatusRequestResponse
	path := fmt.Sprintf("/api/v1/flights/%s/%s/%d/status", flight.Airline, flight.Flight, flight.Timestamp)
	err := c.do(ctx, "POST", path, caller, constants.RolePassenger, nil, &out)
	return &out, err
}

// do performs an authenticated call and decodes the envelope's data into result
func (c *SuretyClient) do(ctx context.Context, method, endpoint string, caller entities.Address, role constants.CallerRole, payload interface{}, result interface{}) error {
	token, err := c.tokens.Issue(caller, role, time.Minute)
	if err != nil {
		return fmt.Errorf("failed to issue caller token: %w", err)
	}

	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	common.LogOutgoingRequest(req)
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope struct {
		dtos.APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return &APIError{Status: resp.StatusCode, Message: string(bodyBytes)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Message}
	}

	if result != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
