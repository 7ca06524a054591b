package entities

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address identifies an airline, passenger, oracle or contract.
// Always stored as lower-case 0x-prefixed hex.
type Address string

const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress validates and normalises a 20-byte hex identity
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", fmt.Errorf("address %q: missing 0x prefix", s)
	}
	raw := s[2:]
	if len(raw) != 40 {
		return "", fmt.Errorf("address %q: expected 40 hex characters, got %d", s, len(raw))
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", fmt.Errorf("address %q: %w", s, err)
	}
	return Address("0x" + strings.ToLower(raw)), nil
}

// AddressFromBytes takes the trailing 20 bytes of b
func AddressFromBytes(b []byte) Address {
	if len(b) > 20 {
		b = b[len(b)-20:]
	}
	padded := make([]byte, 20)
	copy(padded[20-len(b):], b)
	return Address("0x" + hex.EncodeToString(padded))
}

func (a Address) String() string { return string(a) }

// IsZero reports whether a is empty or the zero address
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}
