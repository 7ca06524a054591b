package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixFlight CachePrefix = "FLIGHT_"
)

// Redis stream carrying OracleRequest events to oracle daemons
const (
	OracleRequestStream = "surety:oracle:requests"
	OracleWorkerGroup   = "oracle-workers"
)
