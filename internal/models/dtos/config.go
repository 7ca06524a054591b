package dtos

// SuretyConfig is the artifact written by bootstrap and read by the
// front end and oracle daemons.
type SuretyConfig struct {
	URL         string           `json:"url"`
	DataAddress string           `json:"dataAddress"`
	AppAddress  string           `json:"appAddress"`
	Flights     []ConfigFlight   `json:"flights"`
	Oracles     map[string][]int `json:"oracles"`
}

type ConfigFlight struct {
	Airline     string `json:"airline"`
	AirlineName string `json:"airlineName"`
	Flight      string `json:"flight"`
	Timestamp   int64  `json:"timestamp"`
}

// OracleRequestEvent is published when a status request is opened
type OracleRequestEvent struct {
	Index       uint8  `json:"index"`
	Airline     string `json:"airline"`
	Flight      string `json:"flight"`
	Timestamp   int64  `json:"timestamp"`
	Requester   string `json:"requester"`
	RequestedAt int64  `json:"requested_at"`
}
