package common

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{"10", "10000000000000000000"},
		{"0.000000000000000001", "1"},
		{"0", "0"},
	}
	for _, tt := range tests {
		got, err := ParseEther(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.Dec(), tt.in)
	}
}

func TestParseEther_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "0.0000000000000000001"} {
		_, err := ParseEther(in)
		assert.Error(t, err, in)
	}
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "1.5", FormatEther(*uint256.NewInt(1_500_000_000_000_000_000)))
	assert.Equal(t, "0", FormatEther(uint256.Int{}))
	assert.Equal(t, "0.75", FormatEther(*uint256.NewInt(750_000_000_000_000_000)))
	assert.InDelta(t, 0.75, EtherFloat(*uint256.NewInt(750_000_000_000_000_000)), 1e-9)
}
