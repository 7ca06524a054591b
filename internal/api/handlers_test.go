package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"infinite-experiment/flightsurety/internal/auth"
	"infinite-experiment/flightsurety/internal/config"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/metrics"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

var (
	owner     = entities.AddressFromBytes([]byte{0x0f})
	app       = entities.AddressFromBytes([]byte{0x0a})
	airline   = entities.AddressFromBytes([]byte{0xa1})
	passenger = entities.AddressFromBytes([]byte{0xbb})
)

func newTestDeps(t *testing.T) *Dependencies {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := &config.Config{
		Owner:        owner,
		App:          app,
		CacheBackend: config.CacheBackendMemory,
		TokenSecret:  "test-secret",
		Params:       ledger.DefaultParams(),
	}
	deps, err := InitDependencies(context.Background(), cfg, gdb, sqlx.NewDb(sqlDB, "sqlite3"), nil, metrics.NewMetricsRegistry(nil))
	if err != nil {
		t.Fatalf("InitDependencies: %v", err)
	}
	return deps
}

// asCaller stands in for the token middleware
func asCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Test-Caller"); id != "" {
			claims := &auth.JWTClaims{IdentityValue: entities.Address(id), RoleValue: constants.RolePassenger}
			r = r.WithContext(auth.SetCallerClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(asCaller)
	r.Get("/operational", h.GetOperational())
	r.Post("/airlines", h.RegisterAirline())
	r.Post("/airlines/fund", h.FundAirline())
	r.Get("/airlines/{address}", h.GetAirline())
	r.Post("/flights", h.RegisterFlight())
	r.Get("/flights", h.FlightsBoard())
	r.Get("/flights/{airline}/{flight}/{timestamp}", h.GetFlight())
	r.Post("/flights/{airline}/{flight}/{timestamp}/status", h.FetchFlightStatus())
	r.Post("/insurance", h.BuyInsurance())
	r.Get("/insurance/{airline}/{flight}/{timestamp}", h.GetInsurance())
	r.Post("/insurance/{airline}/{flight}/{timestamp}/withdraw", h.WithdrawInsurance())
	r.Post("/insurance/{airline}/{flight}/{timestamp}/claim", h.ClaimInsurance())
	r.Get("/passengers/me/policies", h.MyPolicies())
	r.Post("/oracles", h.RegisterOracle())
	r.Get("/oracles/me/indexes", h.GetMyIndexes())
	r.Post("/oracles/responses", h.SubmitOracleResponse())
	r.Post("/admin/operating-status", h.SetOperatingStatus())
	r.Post("/admin/authorized-caller", h.SetAuthorizedCaller())
	return r
}

func do(t *testing.T, router http.Handler, method, path string, caller entities.Address, body interface{}) (int, dtos.APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Test-Caller", caller.String())
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response for %s %s: %v", method, path, err)
	}
	return rr.Code, resp
}

// data re-decodes the envelope payload into dst
func data(t *testing.T, resp dtos.APIResponse, dst interface{}) {
	t.Helper()
	b, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

func seedFlight(t *testing.T, router http.Handler) string {
	t.Helper()
	code, resp := do(t, router, "POST", "/airlines", airline, dtos.RegisterAirlineReq{Candidate: airline.String(), Name: "First Air"})
	if code != http.StatusOK {
		t.Fatalf("register airline: %d %s", code, resp.Message)
	}
	code, resp = do(t, router, "POST", "/airlines/fund", airline, dtos.FundReq{Amount: "10"})
	if code != http.StatusOK {
		t.Fatalf("fund airline: %d %s", code, resp.Message)
	}
	code, resp = do(t, router, "POST", "/flights", airline, dtos.RegisterFlightReq{Flight: "FL-0", Timestamp: 1_700_000_000})
	if code != http.StatusCreated {
		t.Fatalf("register flight: %d %s", code, resp.Message)
	}
	return fmt.Sprintf("%s/FL-0/1700000000", airline)
}

func TestAirlineHandlers(t *testing.T) {
	router := newTestRouter(NewHandlers(newTestDeps(t)))

	code, resp := do(t, router, "POST", "/airlines", airline, dtos.RegisterAirlineReq{Candidate: airline.String(), Name: "First Air"})
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", code, resp.Message)
	}
	var created dtos.AirlineResponse
	data(t, resp, &created)
	if created.Outcome != "created" || !created.Consensus || created.Activated {
		t.Errorf("unexpected registration %+v", created)
	}

	code, resp = do(t, router, "POST", "/airlines/fund", airline, dtos.FundReq{Amount: "10"})
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", code, resp.Message)
	}
	var funded dtos.AirlineResponse
	data(t, resp, &funded)
	if funded.FundingEther != "10" || !funded.Activated {
		t.Errorf("unexpected funding %+v", funded)
	}

	code, resp = do(t, router, "GET", "/airlines/"+airline.String(), "", nil)
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}

	code, resp = do(t, router, "GET", "/airlines/"+passenger.String(), "", nil)
	if code != http.StatusNotFound || resp.Code != constants.ErrCodeAirlineNotRegistered {
		t.Errorf("Expected 404 AIRLINE_NOT_REGISTERED, got %d %s", code, resp.Code)
	}

	// a non-member cannot vote once the registry exists
	code, resp = do(t, router, "POST", "/airlines", passenger, dtos.RegisterAirlineReq{Candidate: passenger.String(), Name: "Rogue"})
	if code != http.StatusForbidden || resp.Code != constants.ErrCodeVoterNotActivated {
		t.Errorf("Expected 403 VOTER_NOT_ACTIVATED, got %d %s", code, resp.Code)
	}
}

func TestHandlers_RejectBadInput(t *testing.T) {
	router := newTestRouter(NewHandlers(newTestDeps(t)))

	tests := []struct {
		name   string
		method string
		path   string
		caller entities.Address
		body   interface{}
		want   int
	}{
		{"missing caller", "POST", "/airlines/fund", "", dtos.FundReq{Amount: "1"}, http.StatusUnauthorized},
		{"bad candidate", "POST", "/airlines", airline, dtos.RegisterAirlineReq{Candidate: "nope", Name: "X"}, http.StatusBadRequest},
		{"bad amount", "POST", "/airlines/fund", airline, dtos.FundReq{Amount: "ten"}, http.StatusBadRequest},
		{"bad timestamp", "GET", "/flights/" + airline.String() + "/FL-0/soon", "", nil, http.StatusBadRequest},
		{"bad status code", "POST", "/oracles/responses", airline, dtos.OracleResponseReq{Airline: airline.String(), Flight: "FL-0", StatusCode: "99"}, http.StatusBadRequest},
		{"unregistered flight", "GET", "/flights/" + airline.String() + "/FL-0/1", "", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := do(t, router, tt.method, tt.path, tt.caller, tt.body)
			if code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, code)
			}
		})
	}
}

func TestInsuranceLifecycleHandlers(t *testing.T) {
	router := newTestRouter(NewHandlers(newTestDeps(t)))
	flightPath := seedFlight(t, router)

	buy := dtos.BuyInsuranceReq{Airline: airline.String(), Flight: "FL-0", Timestamp: 1_700_000_000, Amount: "1"}
	code, resp := do(t, router, "POST", "/insurance", passenger, buy)
	if code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d (%s)", code, resp.Message)
	}

	code, resp = do(t, router, "POST", "/insurance", passenger, buy)
	if code != http.StatusConflict || resp.Code != constants.ErrCodeDuplicatePolicy {
		t.Errorf("Expected 409 DUPLICATE_POLICY, got %d %s", code, resp.Code)
	}

	over := buy
	over.Amount = "1.5"
	code, resp = do(t, router, "POST", "/insurance", airline, over)
	if code != http.StatusBadRequest || resp.Code != constants.ErrCodeAmountExceedsCap {
		t.Errorf("Expected 400 AMOUNT_EXCEEDS_CAP, got %d %s", code, resp.Code)
	}

	code, resp = do(t, router, "POST", "/flights/"+flightPath+"/status", passenger, nil)
	if code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d (%s)", code, resp.Message)
	}
	var request dtos.StatusRequestResponse
	data(t, resp, &request)

	// register oracles until three hold the request index
	var holders []entities.Address
	for i := 0; len(holders) < 3; i++ {
		if i > 500 {
			t.Fatalf("no oracle drew index %d", request.Index)
		}
		id := entities.AddressFromBytes([]byte{0x0c, byte(i >> 8), byte(i)})
		code, resp = do(t, router, "POST", "/oracles", id, dtos.RegisterOracleReq{Fee: "1"})
		if code != http.StatusCreated {
			t.Fatalf("register oracle: %d %s", code, resp.Message)
		}
		var o dtos.OracleResponse
		data(t, resp, &o)
		for _, idx := range o.Indexes {
			if idx == int(request.Index) {
				holders = append(holders, id)
				break
			}
		}
	}

	code, resp = do(t, router, "GET", "/oracles/me/indexes", holders[0], nil)
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}

	var sub dtos.SubmissionResponse
	for _, id := range holders {
		code, resp = do(t, router, "POST", "/oracles/responses", id, dtos.OracleResponseReq{
			Index:      request.Index,
			Airline:    airline.String(),
			Flight:     "FL-0",
			Timestamp:  1_700_000_000,
			StatusCode: "LATE_AIRLINE",
		})
		if code != http.StatusOK {
			t.Fatalf("submit response: %d %s", code, resp.Message)
		}
		data(t, resp, &sub)
	}
	if !sub.Finalized || sub.Status != "LATE_AIRLINE" || sub.Credited != 1 {
		t.Errorf("unexpected final submission %+v", sub)
	}

	code, resp = do(t, router, "GET", "/insurance/"+flightPath, passenger, nil)
	var policy dtos.PolicyResponse
	data(t, resp, &policy)
	if code != http.StatusOK || policy.Status != "CREDIT_ELIGIBLE" || policy.ClaimEther != "1.5" {
		t.Errorf("unexpected policy %d %+v", code, policy)
	}

	code, resp = do(t, router, "POST", "/insurance/"+flightPath+"/claim", passenger, nil)
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (%s)", code, resp.Message)
	}
	var payout dtos.PayoutResponse
	data(t, resp, &payout)
	if payout.PaidEther != "1.5" || payout.Policy.Status != "WITHDRAWN" {
		t.Errorf("unexpected payout %+v", payout)
	}

	code, resp = do(t, router, "POST", "/insurance/"+flightPath+"/withdraw", passenger, nil)
	if code != http.StatusConflict || resp.Code != constants.ErrCodeNotCreditEligible {
		t.Errorf("Expected 409 NOT_CREDIT_ELIGIBLE, got %d %s", code, resp.Code)
	}

	code, resp = do(t, router, "GET", "/passengers/me/policies", passenger, nil)
	var policies []dtos.PolicyResponse
	data(t, resp, &policies)
	if code != http.StatusOK || len(policies) != 1 || policies[0].Status != "WITHDRAWN" {
		t.Errorf("unexpected policies %d %+v", code, policies)
	}

	code, resp = do(t, router, "GET", "/flights", "", nil)
	var board []dtos.FlightBoardResponse
	data(t, resp, &board)
	if code != http.StatusOK || len(board) != 1 || board[0].Policies != 1 || board[0].Status != "LATE_AIRLINE" {
		t.Errorf("unexpected board %d %+v", code, board)
	}
}

func TestAdminHandlers(t *testing.T) {
	router := newTestRouter(NewHandlers(newTestDeps(t)))

	code, resp := do(t, router, "POST", "/admin/operating-status", passenger, dtos.OperatingStatusReq{Operational: false})
	if code != http.StatusForbidden || resp.Code != constants.ErrCodeUnauthorized {
		t.Errorf("Expected 403 UNAUTHORIZED, got %d %s", code, resp.Code)
	}

	code, _ = do(t, router, "POST", "/admin/operating-status", owner, dtos.OperatingStatusReq{Operational: false})
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}

	code, resp = do(t, router, "POST", "/airlines", airline, dtos.RegisterAirlineReq{Candidate: airline.String(), Name: "First Air"})
	if code != http.StatusServiceUnavailable || resp.Code != constants.ErrCodeNotOperational {
		t.Errorf("Expected 503 NOT_OPERATIONAL, got %d %s", code, resp.Code)
	}

	code, resp = do(t, router, "GET", "/operational", "", nil)
	var status dtos.OperationalResponse
	data(t, resp, &status)
	if code != http.StatusOK || status.Operational || status.AuthorizedCaller != app.String() {
		t.Errorf("unexpected status %d %+v", code, status)
	}

	code, _ = do(t, router, "POST", "/admin/operating-status", owner, dtos.OperatingStatusReq{Operational: true})
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}

	code, _ = do(t, router, "POST", "/admin/authorized-caller", owner, dtos.AuthorizedCallerReq{Caller: "bad"})
	if code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", code)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return fmt.Errorf("connection refused") }

func TestHealthCheckHandler(t *testing.T) {
	deps := newTestDeps(t)
	upSince := time.Now().Add(-time.Minute)

	tests := []struct {
		name       string
		db         pinger
		wantCode   int
		wantStatus string
	}{
		{"database up", deps.Repo.Queries, http.StatusOK, "ok"},
		{"database down", failingPinger{}, http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := HealthCheckHandler(tt.db, deps.Services.Surety.IsOperational, upSince)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest("GET", "/healthCheck", nil))

			if rr.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rr.Code)
			}
			var resp entities.HealthCheckResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.wantStatus || !resp.Operational {
				t.Errorf("unexpected health %+v", resp)
			}
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledger.ErrNotOperational, http.StatusServiceUnavailable},
		{ledger.ErrUnauthorized, http.StatusForbidden},
		{ledger.ErrVoterNotActivated, http.StatusForbidden},
		{ledger.ErrAlreadyRegistered, http.StatusConflict},
		{ledger.ErrFlightNotFound, http.StatusNotFound},
		{ledger.ErrAirlineNotActivated, http.StatusForbidden},
		{ledger.ErrInvalidArgument, http.StatusBadRequest},
		{ledger.ErrDuplicateFlight, http.StatusConflict},
		{ledger.ErrIndexMismatch, http.StatusConflict},
		{ledger.ErrNotCreditEligible, http.StatusConflict},
		{ledger.ErrInsufficientEscrowBalance, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ledger.ErrPolicyNotFound), http.StatusNotFound},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
