package dtos

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	Code         string `json:"code,omitempty"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type AirlineResponse struct {
	Identity     string   `json:"identity"`
	Name         string   `json:"name"`
	FundingEther string   `json:"funding_ether"`
	Activated    bool     `json:"activated"`
	Consensus    bool     `json:"consensus"`
	VoteCount    int      `json:"vote_count"`
	Voters       []string `json:"voters"`
	// Outcome is set on registration: created, voted or ignored
	Outcome string `json:"outcome,omitempty"`
}

type FlightResponse struct {
	Airline     string `json:"airline"`
	Flight      string `json:"flight"`
	Timestamp   int64  `json:"timestamp"`
	AirlineName string `json:"airline_name"`
	StatusCode  uint8  `json:"status_code"`
	Status      string `json:"status"`
}

type PolicyResponse struct {
	Passenger    string `json:"passenger"`
	Airline      string `json:"airline"`
	Flight       string `json:"flight"`
	Timestamp    int64  `json:"timestamp"`
	PremiumEther string `json:"premium_ether"`
	Status       string `json:"status"`
	ClaimEther   string `json:"claim_ether"`
}

type OracleResponse struct {
	Identity string `json:"identity"`
	Indexes  []int  `json:"indexes"`
}

type StatusRequestResponse struct {
	Index      uint8  `json:"index"`
	Airline    string `json:"airline"`
	Flight     string `json:"flight"`
	Timestamp  int64  `json:"timestamp"`
	Opened     bool   `json:"opened"`
	Finalized  bool   `json:"finalized"`
	StatusCode uint8  `json:"status_code"`
	Status     string `json:"status"`
}

type SubmissionResponse struct {
	Counted    bool   `json:"counted"`
	Finalized  bool   `json:"finalized"`
	StatusCode uint8  `json:"status_code"`
	Status     string `json:"status"`
	Credited   int    `json:"credited"`
}

type PayoutResponse struct {
	Policy    PolicyResponse `json:"policy"`
	PaidEther string         `json:"paid_ether"`
}

type OperationalResponse struct {
	Operational      bool   `json:"operational"`
	AuthorizedCaller string `json:"authorized_caller,omitempty"`
}

type FlightBoardResponse struct {
	FlightResponse
	Policies int `json:"policies"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresIn int    `json:"expires_in"`
}
