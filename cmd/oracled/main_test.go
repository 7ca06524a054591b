package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/flightsurety/internal/models/dtos"
	"infinite-experiment/flightsurety/internal/models/entities"
)

func TestReadArtifact(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{
		"url": "http://localhost:8080",
		"flights": [{"airline": "0x00000000000000000000000000000000000000a1", "airlineName": "Air India", "flight": "FL-0", "timestamp": 3600}],
		"oracles": {"0x000000000000000000000000000000000000000c": [1, 4, 7]}
	}`), 0o644))

	artifact, err := readArtifact(good)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", artifact.URL)
	require.Len(t, artifact.Flights, 1)
	assert.Equal(t, "Air India", artifact.Flights[0].AirlineName)

	noURL := filepath.Join(dir, "nourl.json")
	require.NoError(t, os.WriteFile(noURL, []byte(`{"oracles": {}}`), 0o644))
	_, err = readArtifact(noURL)
	assert.Error(t, err)

	_, err = readArtifact(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestOraclesFromArtifact(t *testing.T) {
	a := entities.AddressFromBytes([]byte{0x0c, 2})
	b := entities.AddressFromBytes([]byte{0x0c, 1})

	oracles, err := oraclesFromArtifact(&dtos.SuretyConfig{Oracles: map[string][]int{
		a.String(): {1, 2, 3},
		b.String(): {9, 0, 5},
	}})
	require.NoError(t, err)
	require.Len(t, oracles, 2)
	assert.Equal(t, b, oracles[0].Identity)
	assert.Equal(t, [3]uint8{9, 0, 5}, oracles[0].Indexes)
	assert.True(t, oracles[1].Holds(2))

	tests := []struct {
		name    string
		oracles map[string][]int
	}{
		{"empty", map[string][]int{}},
		{"bad identity", map[string][]int{"oracle": {1, 2, 3}}},
		{"two indexes", map[string][]int{a.String(): {1, 2}}},
		{"out of range", map[string][]int{a.String(): {1, 2, 300}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := oraclesFromArtifact(&dtos.SuretyConfig{Oracles: tt.oracles})
			assert.Error(t, err)
		})
	}
}
