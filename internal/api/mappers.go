package api

import (
	"fmt"

	"github.com/holiman/uint256"

	"infinite-experiment/flightsurety/internal/common"
	"infinite-experiment/flightsurety/internal/ledger"
	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

func toAirlineResponse(a entities.Airline) dtos.AirlineResponse {
	voters := make([]string, 0, len(a.Voters))
	for _, v := range a.Voters {
		voters = append(voters, v.String())
	}
	return dtos.AirlineResponse{
		Identity:     a.Identity.String(),
		Name:         a.Name,
		FundingEther: common.FormatEther(a.Funding),
		Activated:    a.Activated,
		Consensus:    a.Consensus,
		VoteCount:    a.VoteCount,
		Voters:       voters,
	}
}

func toFlightResponse(f entities.Flight) dtos.FlightResponse {
	return dtos.FlightResponse{
		Airline:     f.Key.Airline.String(),
		Flight:      f.Key.Flight,
		Timestamp:   f.Key.Timestamp,
		AirlineName: f.AirlineName,
		StatusCode:  uint8(f.Status),
		Status:      f.Status.String(),
	}
}

func toPolicyResponse(p entities.Policy) dtos.PolicyResponse {
	return dtos.PolicyResponse{
		Passenger:    p.Key.Passenger.String(),
		Airline:      p.Key.Flight.Airline.String(),
		Flight:       p.Key.Flight.Flight,
		Timestamp:    p.Key.Flight.Timestamp,
		PremiumEther: common.FormatEther(p.Premium),
		Status:       p.Status.String(),
		ClaimEther:   common.FormatEther(p.Claim),
	}
}

// toPolicyRecordResponse converts a read-side row; amounts are stored in wei
func toPolicyRecordResponse(r entities.PolicyRecord) (dtos.PolicyResponse, error) {
	premium, err := uint256.FromDecimal(r.PremiumWei)
	if err != nil {
		return dtos.PolicyResponse{}, fmt.Errorf("invalid premium %q: %w", r.PremiumWei, err)
	}
	claim, err := uint256.FromDecimal(r.ClaimWei)
	if err != nil {
		return dtos.PolicyResponse{}, fmt.Errorf("invalid claim %q: %w", r.ClaimWei, err)
	}
	return dtos.PolicyResponse{
		Passenger:    r.Passenger,
		Airline:      r.Airline,
		Flight:       r.Flight,
		Timestamp:    r.Timestamp,
		PremiumEther: common.FormatEther(*premium),
		Status:       r.Status,
		ClaimEther:   common.FormatEther(*claim),
	}, nil
}

func toBoardResponse(e entities.FlightBoardEntry) dtos.FlightBoardResponse {
	status := entities.StatusCode(e.Status)
	return dtos.FlightBoardResponse{
		FlightResponse: dtos.FlightResponse{
			Airline:     e.Airline,
			Flight:      e.Flight,
			Timestamp:   e.Timestamp,
			AirlineName: e.AirlineName,
			StatusCode:  e.Status,
			Status:      status.String(),
		},
		Policies: e.Policies,
	}
}

func toOracleResponse(o entities.Oracle) dtos.OracleResponse {
	return dtos.OracleResponse{
		Identity: o.Identity.String(),
		Indexes:  []int{int(o.Indexes[0]), int(o.Indexes[1]), int(o.Indexes[2])},
	}
}

func toStatusRequestResponse(req entities.StatusRequest, opened bool) dtos.StatusRequestResponse {
	return dtos.StatusRequestResponse{
		Index:      req.Index,
		Airline:    req.Flight.Airline.String(),
		Flight:     req.Flight.Flight,
		Timestamp:  req.Flight.Timestamp,
		Opened:     opened,
		Finalized:  req.Finalized,
		StatusCode: uint8(req.Status),
		Status:     req.Status.String(),
	}
}

func toSubmissionResponse(sub ledger.Submission) dtos.SubmissionResponse {
	return dtos.SubmissionResponse{
		Counted:    sub.Counted,
		Finalized:  sub.Finalized,
		StatusCode: uint8(sub.Request.Status),
		Status:     sub.Request.Status.String(),
		Credited:   len(sub.Credited),
	}
}
