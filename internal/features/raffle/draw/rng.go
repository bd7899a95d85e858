package draw

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"math/rand/v2"
)

// Generator holds the two randomness sources of a draw: a secure entropy
// reader for the uniform and index generators, and a pseudo-random source
// for multiset picks and the first hard lane.
type Generator struct {
	entropy io.Reader
	prng    *rand.Rand
}

// NewGenerator returns a Generator backed by crypto/rand and a freshly
// seeded PCG source. Nil arguments select those defaults.
func NewGenerator(entropy io.Reader, prng *rand.Rand) *Generator {
	if entropy == nil {
		entropy = cryptorand.Reader
	}
	if prng == nil {
		prng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{entropy: entropy, prng: prng}
}

// UniformInt returns an integer in [min, max] built from 8 bytes of
// entropy reduced modulo the range width. The modulo bias is kept.
func (g *Generator) UniformInt(min, max int) (int, error) {
	if max < min {
		return 0, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, min, max)
	}

	var buf [8]byte
	if _, err := io.ReadFull(g.entropy, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	n := binary.BigEndian.Uint64(buf[:])
	width := uint64(max-min) + 1
	return min + int(n%width), nil
}

// SecureIndex returns a value in [0, n) from crypto/rand.Int over the
// entropy reader.
func (g *Generator) SecureIndex(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: [0, %d)", ErrInvalidRange, n)
	}
	v, err := cryptorand.Int(g.entropy, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return int(v.Int64()), nil
}

// PseudoIndex returns a value in [0, n) from the pseudo-random source.
func (g *Generator) PseudoIndex(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: [0, %d)", ErrInvalidRange, n)
	}
	return g.prng.IntN(n), nil
}

// Weighted picks an id from a multiset holding every id as many times as
// it has tickets.
func (g *Generator) Weighted(pool *TicketPool) (int64, error) {
	weighted := WeightedMultiset(pool)
	if len(weighted) == 0 {
		return 0, ErrEmptyPool
	}
	return weighted[g.prng.IntN(len(weighted))], nil
}

// InvertedWeighted picks an id from a multiset that favours participants
// with fewer tickets. See InvertedMultiset.
func (g *Generator) InvertedWeighted(pool *TicketPool) (int64, error) {
	if pool.Len() == 0 {
		return 0, ErrEmptyPool
	}
	weighted := InvertedMultiset(pool)
	if len(weighted) == 0 {
		return 0, ErrDegenerateDistribution
	}
	return weighted[g.prng.IntN(len(weighted))], nil
}

// WeightedMultiset lists every distinct id frequency times.
func WeightedMultiset(pool *TicketPool) []int64 {
	weighted := make([]int64, 0, pool.Len())
	for _, f := range pool.Frequencies() {
		for i := 0; i < f.Count; i++ {
			weighted = append(weighted, f.ID)
		}
	}
	return weighted
}

// InvertedMultiset lists every distinct id floor((1 - f/T) * T) times,
// where f is its ticket count and T the pool size. A pool owned by a single
// participant yields an empty multiset.
func InvertedMultiset(pool *TicketPool) []int64 {
	total := float64(pool.Len())
	var weighted []int64
	for _, f := range pool.Frequencies() {
		probability := 1 - float64(f.Count)/total
		times := int(probability * total)
		for i := 0; i < times; i++ {
			weighted = append(weighted, f.ID)
		}
	}
	return weighted
}
