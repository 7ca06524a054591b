package entities

// PolicyRecord is a read-side row from the policies table
type PolicyRecord struct {
	Passenger  string `db:"passenger"`
	Airline    string `db:"airline"`
	Flight     string `db:"flight"`
	Timestamp  int64  `db:"timestamp"`
	PremiumWei string `db:"premium_wei"`
	Status     string `db:"status"`
	ClaimWei   string `db:"claim_wei"`
}

// FlightBoardEntry is one flight with the number of policies written on it
type FlightBoardEntry struct {
	Airline     string `db:"airline"`
	Flight      string `db:"flight"`
	Timestamp   int64  `db:"timestamp"`
	AirlineName string `db:"airline_name"`
	Status      uint8  `db:"status"`
	Policies    int    `db:"policies"`
}
