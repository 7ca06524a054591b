package ledger

import "infinite-experiment/flightsurety/internal/models/entities"

// FlightRegistry owns the flight table
type FlightRegistry struct {
	flights map[entities.FlightKey]*entities.Flight
	order   []entities.FlightKey
}

func newFlightRegistry() *FlightRegistry {
	return &FlightRegistry{flights: make(map[entities.FlightKey]*entities.Flight)}
}

func (r *FlightRegistry) register(airline entities.Airline, name string, timestamp int64) (entities.Flight, error) {
	if name == "" {
		return entities.Flight{}, invalid("flight name is required")
	}
	if !airline.Activated {
		return entities.Flight{}, ErrAirlineNotActivated
	}
	key := entities.FlightKey{Airline: airline.Identity, Flight: name, Timestamp: timestamp}
	if _, exists := r.flights[key]; exists {
		return entities.Flight{}, ErrDuplicateFlight
	}
	flight := &entities.Flight{Key: key, AirlineName: airline.Name, Status: entities.StatusUnknown}
	r.flights[key] = flight
	r.order = append(r.order, key)
	return *flight, nil
}

// setStatus is reachable only from oracle finalization
func (r *FlightRegistry) setStatus(key entities.FlightKey, status entities.StatusCode) {
	if f, ok := r.flights[key]; ok {
		f.Status = status
	}
}

// Get returns the flight or ErrFlightNotFound
func (r *FlightRegistry) Get(key entities.FlightKey) (entities.Flight, error) {
	f, ok := r.flights[key]
	if !ok {
		return entities.Flight{}, ErrFlightNotFound
	}
	return *f, nil
}

func (r *FlightRegistry) List() []entities.Flight {
	out := make([]entities.Flight, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, *r.flights[key])
	}
	return out
}
