package rulebloom

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Checksum fingerprints everything that determines the future of a run: the
// tick, generator state, scan cursor and both lanes. Two engines with equal
// checksums evolve identically.
func (s *State) Checksum() uint64 {
	d := xxhash.New()
	var hdr [20]byte
	binary.LittleEndian.PutUint64(hdr[0:8], s.Tick)
	binary.LittleEndian.PutUint32(hdr[8:12], s.RNG)
	binary.LittleEndian.PutUint64(hdr[12:20], uint64(s.ScanCursor))
	_, _ = d.Write(hdr[:])
	_, _ = d.Write(s.Rule)

	var buf [512]byte
	n := 0
	for _, g := range s.Grains {
		binary.LittleEndian.PutUint16(buf[n:], g)
		n += 2
		if n == len(buf) {
			_, _ = d.Write(buf[:n])
			n = 0
		}
	}
	_, _ = d.Write(buf[:n])
	return d.Sum64()
}

// Checksum fingerprints the engine's current state.
func (e *Engine) Checksum() uint64 { return e.state.Checksum() }
