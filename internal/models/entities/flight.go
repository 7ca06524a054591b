package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusCode is the finalized or pending status of a flight
type StatusCode uint8

const (
	StatusUnknown       StatusCode = 0
	StatusOnTime        StatusCode = 10
	StatusLateAirline   StatusCode = 20
	StatusLateWeather   StatusCode = 30
	StatusLateTechnical StatusCode = 40
	StatusLateOther     StatusCode = 50
)

var statusNames = map[StatusCode]string{
	StatusUnknown:       "UNKNOWN",
	StatusOnTime:        "ON_TIME",
	StatusLateAirline:   "LATE_AIRLINE",
	StatusLateWeather:   "LATE_WEATHER",
	StatusLateTechnical: "LATE_TECHNICAL",
	StatusLateOther:     "LATE_OTHER",
}

// ReportableStatuses are the codes an oracle may report
var ReportableStatuses = []StatusCode{
	StatusUnknown,
	StatusOnTime,
	StatusLateAirline,
	StatusLateWeather,
	StatusLateTechnical,
	StatusLateOther,
}

func (s StatusCode) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// AirlineFault reports whether the status entitles passengers to a payout
func (s StatusCode) AirlineFault() bool {
	return s == StatusLateAirline
}

func (s StatusCode) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "STATUS_" + strconv.Itoa(int(s))
}

// ParseStatusCode accepts either the numeric code or its name
func ParseStatusCode(s string) (StatusCode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		code := StatusCode(n)
		if !code.Valid() {
			return 0, fmt.Errorf("unknown status code %d", n)
		}
		return code, nil
	}
	for code, name := range statusNames {
		if strings.EqualFold(name, s) {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

// FlightKey is the composite identity of a flight
type FlightKey struct {
	Airline   Address `json:"airline"`
	Flight    string  `json:"flight"`
	Timestamp int64   `json:"timestamp"`
}

func (k FlightKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Airline, k.Flight, k.Timestamp)
}

// Flight is a registered flight snapshot
type Flight struct {
	Key         FlightKey  `json:"key"`
	AirlineName string     `json:"airline_name"`
	Status      StatusCode `json:"status_code"`
}
