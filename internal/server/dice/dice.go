// Package dice implements the random draws of the engine: the contest roll,
// the collection amount and picks from the unclaimed pool.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// ErrInvalidDie indicates a die with no sides.
var ErrInvalidDie = errors.New("die must have at least one side")

// Source yields uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

// LockedSource is a Source safe for concurrent use.
type LockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a deterministic Source for seed.
func NewSource(seed uint64) *LockedSource {
	return &LockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSeededSource returns a Source seeded from crypto/rand.
func NewSeededSource() (*LockedSource, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return NewSource(binary.LittleEndian.Uint64(b[:])), nil
}

func (s *LockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Roll rolls one die with the given number of sides: a value in [1, sides].
func Roll(src Source, sides int) (int, error) {
	if sides < 1 {
		return 0, ErrInvalidDie
	}
	return src.IntN(sides) + 1, nil
}

// Between draws uniformly from the inclusive range [min, max].
func Between(src Source, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + int64(src.IntN(int(max-min+1)))
}

// Contest describes the contest roll: the user rolls one die, the
// collectible rolls one die and adds Advantage.
type Contest struct {
	Sides     int
	Advantage int
}

// ContestRoll is one resolved contest roll. Opponent includes the advantage.
type ContestRoll struct {
	User     int
	Opponent int
}

// Won reports whether the user beat the collectible. Ties go to the user.
func (r ContestRoll) Won() bool {
	return r.User >= r.Opponent
}

// Roll draws both dice independently.
func (c Contest) Roll(src Source) (ContestRoll, error) {
	user, err := Roll(src, c.Sides)
	if err != nil {
		return ContestRoll{}, err
	}
	opponent, err := Roll(src, c.Sides)
	if err != nil {
		return ContestRoll{}, err
	}
	return ContestRoll{User: user, Opponent: opponent + c.Advantage}, nil
}
