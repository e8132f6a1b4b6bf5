package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func draw(s Source, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Float64()
	}
	return out
}

func TestStreamIsDeterministic(t *testing.T) {
	assert.Equal(t, draw(New(42), 100), draw(New(42), 100))
	assert.NotEqual(t, draw(New(42), 100), draw(New(43), 100))
}

func TestPartitionZeroIsSequentialStream(t *testing.T) {
	assert.Equal(t, draw(New(9), 50), draw(Partition(9, 0), 50))
}

func TestPartitionsDiffer(t *testing.T) {
	a := draw(Partition(9, 1), 50)
	b := draw(Partition(9, 2), 50)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, draw(Partition(9, 1), 50))

	s := Partition(9, 3)
	assert.Equal(t, int64(9), s.Seed())
	assert.Equal(t, 3, s.Worker())
}

func TestFloat64Range(t *testing.T) {
	for _, x := range draw(New(1), 10000) {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.Less(t, x, 1.0)
	}
}

func TestDerive(t *testing.T) {
	assert.Equal(t, int64(9), Derive(9, 0))
	assert.Equal(t, Derive(9, 1), Derive(9, 1))
	assert.NotEqual(t, Derive(9, 1), Derive(9, 2))
	assert.NotEqual(t, Derive(9, 1), Derive(10, 1))
	assert.NotEqual(t, draw(New(9), 50), draw(New(Derive(9, 1)), 50))
}
