// Package random provides seed selection and uniform draw helpers.
//
// The engine runs every random decision through a single *rand.Rand built
// from one seed, so a run can be replayed by passing the same seed back in.
// NewSeed generates that seed with crypto/rand when the caller does not
// supply one.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed draws a universe seed from crypto/rand. The zero seed is the
// "pick one for me" sentinel on the command line, so a zero draw is
// rerolled to keep every printed seed replayable.
func NewSeed() (int64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read seed entropy: %w", err)
		}
		if seed := int64(binary.LittleEndian.Uint64(b[:])); seed != 0 {
			return seed, nil
		}
	}
}
