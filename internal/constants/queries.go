package constants

// Queries are written with ? placeholders and rebound by sqlx per driver.
const (
	ListPoliciesByPassenger = `
	SELECT passenger, airline, flight, timestamp, premium_wei, status, claim_wei
	FROM policies WHERE passenger = ? ORDER BY timestamp, flight
	`

	ListFlightsBoard = `
	SELECT f.airline, f.flight, f.timestamp, f.airline_name, f.status,
	       COUNT(p.passenger) AS policies
	FROM flights f
	LEFT JOIN policies p
	  ON p.airline = f.airline AND p.flight = f.flight AND p.timestamp = f.timestamp
	GROUP BY f.airline, f.flight, f.timestamp, f.airline_name, f.status
	ORDER BY f.timestamp, f.flight
	`
)
