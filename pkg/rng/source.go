// Package rng provides the seeded uniform streams the sampler and the
// estimators draw from.
package rng

import (
	"math/rand/v2"
)

// Source yields uniform reals in [0, 1)
type Source interface {
	Float64() float64
}

// Stream is a deterministic Source backed by a PCG generator. A Stream is not
// safe for concurrent use; give every worker its own.
type Stream struct {
	seed   int64
	worker int
	r      *rand.Rand
}

// New returns the single sequential stream for seed
func New(seed int64) *Stream {
	return Partition(seed, 0)
}

// Partition returns the private stream of worker w. Distinct workers under
// one seed start from distinct 128-bit generator states; Partition(seed, 0)
// equals New(seed).
func Partition(seed int64, worker int) *Stream {
	return &Stream{
		seed:   seed,
		worker: worker,
		r:      rand.New(rand.NewPCG(uint64(seed), splitmix(uint64(worker)))),
	}
}

func (s *Stream) Float64() float64 { return s.r.Float64() }

// Seed is the base seed the stream was derived from
func (s *Stream) Seed() int64 { return s.seed }

// Worker is the partition index of the stream
func (s *Stream) Worker() int { return s.worker }

// Derive returns the base seed of stream family k under seed. Families are
// used to keep estimators that share one seed from replaying each other's
// draws; Derive(seed, 0) is seed itself.
func Derive(seed int64, k int) int64 {
	if k == 0 {
		return seed
	}
	return int64(splitmix(uint64(seed) ^ splitmix(uint64(k)<<32)))
}

// splitmix scrambles the worker index into the high state word
func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
