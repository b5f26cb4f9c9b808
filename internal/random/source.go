// Package random supplies the uniform integer draws used by every stochastic
// decision in a game.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source draws integers uniformly from a closed interval.
type Source interface {
	UniformInt(min, max int) int
}

// Rand is a Source backed by math/rand. It is not safe for concurrent use;
// each game owns its own instance.
type Rand struct {
	rng *rand.Rand
}

// New returns a Source seeded from crypto/rand.
func New() (*Rand, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeeded(seed), nil
}

// NewSeeded returns a Source that replays the same draws for the same seed.
func NewSeeded(seed int64) *Rand {
	return &Rand{rng: rand.New(rand.NewSource(seed))}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// UniformInt returns a value in [min, max], both bounds included.
// A zero-width or inverted range yields min.
func (r *Rand) UniformInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.rng.Intn(max-min+1)
}
