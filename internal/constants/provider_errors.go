package constants

// Status provider error codes
const (
	ErrCodeNetworkError        = "NETWORK_ERROR"
	ErrCodeInvalidDataFormat   = "INVALID_DATA_FORMAT"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeFlightUnknown       = "FLIGHT_UNKNOWN"
)

var ProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:        "Network error while contacting the status provider",
	ErrCodeInvalidDataFormat:   "Status provider returned malformed data",
	ErrCodeProviderUnavailable: "Status provider is unavailable",
	ErrCodeFlightUnknown:       "Status provider does not know this flight",
}

// GetProviderErrorMessage returns the message for a provider error code
func GetProviderErrorMessage(code string) string {
	if msg, exists := ProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown provider error occurred"
}
