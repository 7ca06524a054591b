package ledger

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"infinite-experiment/flightsurety/internal/models/entities"
)

// indexer draws oracle indexes from keccak256(seed || identity || counter).
// The counter advances on every draw, so results are reproducible from
// the same counter value but not chosen by the caller.
type indexer struct {
	seed    []byte
	counter uint64
}

func (x *indexer) draw(identity entities.Address, max uint8) uint8 {
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], x.counter)
	x.counter++

	h := sha3.NewLegacyKeccak256()
	h.Write(x.seed)
	h.Write([]byte(identity))
	h.Write(ctr[:])
	sum := h.Sum(nil)
	return uint8(binary.BigEndian.Uint64(sum[:8]) % uint64(max))
}

// drawDistinct returns three different indexes for identity
func (x *indexer) drawDistinct(identity entities.Address, max uint8) [3]uint8 {
	var out [3]uint8
	out[0] = x.draw(identity, max)
	out[1] = out[0]
	for out[1] == out[0] {
		out[1] = x.draw(identity, max)
	}
	out[2] = out[1]
	for out[2] == out[0] || out[2] == out[1] {
		out[2] = x.draw(identity, max)
	}
	return out
}
