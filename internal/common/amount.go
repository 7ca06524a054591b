package common

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const weiDecimals = 18

// FormatEther renders a wei amount as a decimal ether string, e.g. "1.5"
func FormatEther(wei uint256.Int) string {
	return decimal.NewFromBigInt(wei.ToBig(), -weiDecimals).String()
}

// EtherFloat is the lossy float form used by gauges
func EtherFloat(wei uint256.Int) float64 {
	f, _ := decimal.NewFromBigInt(wei.ToBig(), -weiDecimals).Float64()
	return f
}

// ParseEther converts a decimal ether string into wei. Amounts finer
// than one wei or below zero are rejected.
func ParseEther(s string) (uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Sign() < 0 {
		return uint256.Int{}, fmt.Errorf("invalid amount %q: negative", s)
	}
	wei := d.Shift(weiDecimals)
	if !wei.IsInteger() {
		return uint256.Int{}, fmt.Errorf("invalid amount %q: more than %d decimals", s, weiDecimals)
	}
	v, overflow := uint256.FromBig(wei.BigInt())
	if overflow {
		return uint256.Int{}, fmt.Errorf("invalid amount %q: overflows 256 bits", s)
	}
	return *v, nil
}
