package entities

import "sort"

// Oracle is a registered status reporter with three fixed indexes
type Oracle struct {
	Identity Address  `json:"identity"`
	Indexes  [3]uint8 `json:"indexes"`
	Sequence uint64   `json:"sequence"`
}

// Holds reports whether index is one of the oracle's assigned indexes
func (o Oracle) Holds(index uint8) bool {
	for _, i := range o.Indexes {
		if i == index {
			return true
		}
	}
	return false
}

// StatusRequest collects oracle reports for one flight.
// An oracle identity appears in at most one Responses bucket.
type StatusRequest struct {
	Index     uint8                    `json:"index"`
	Flight    FlightKey                `json:"flight"`
	Requester Address                  `json:"requester"`
	Finalized bool                     `json:"finalized"`
	Status    StatusCode               `json:"status_code"`
	Responses map[StatusCode][]Address `json:"responses"`
}

// Reported reports whether oracle is already present in any bucket
func (r *StatusRequest) Reported(oracle Address) bool {
	for _, reporters := range r.Responses {
		for _, id := range reporters {
			if id == oracle {
				return true
			}
		}
	}
	return false
}

// Clone deep-copies the response buckets
func (r StatusRequest) Clone() StatusRequest {
	buckets := make(map[StatusCode][]Address, len(r.Responses))
	for code, reporters := range r.Responses {
		buckets[code] = append([]Address(nil), reporters...)
	}
	r.Responses = buckets
	return r
}

// ResponseCodes lists reported codes in ascending order
func (r *StatusRequest) ResponseCodes() []StatusCode {
	codes := make([]StatusCode, 0, len(r.Responses))
	for code := range r.Responses {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
