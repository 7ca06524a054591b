package dtos

// Amounts are decimal ether strings, e.g. "0.5"

type RegisterAirlineReq struct {
	Candidate string `json:"candidate"`
	Name      string `json:"name"`
}

type FundReq struct {
	Amount string `json:"amount"`
}

type RegisterFlightReq struct {
	Flight    string `json:"flight"`
	Timestamp int64  `json:"timestamp"`
}

type BuyInsuranceReq struct {
	Airline   string `json:"airline"`
	Flight    string `json:"flight"`
	Timestamp int64  `json:"timestamp"`
	Amount    string `json:"amount"`
}

type RegisterOracleReq struct {
	Fee string `json:"fee"`
}

// OracleResponseReq carries a status as its numeric code or name
type OracleResponseReq struct {
	Index      uint8  `json:"index"`
	Airline    string `json:"airline"`
	Flight     string `json:"flight"`
	Timestamp  int64  `json:"timestamp"`
	StatusCode string `json:"status_code"`
}

type OperatingStatusReq struct {
	Operational bool `json:"operational"`
}

type AuthorizedCallerReq struct {
	Caller string `json:"caller"`
}
