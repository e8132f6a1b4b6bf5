package election

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleCount(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		epsilon float64
		delta   float64
		want    int
	}{
		{"reference instance", 10, 0.1, 0.05, 29958},
		{"single voter", 1, 0.1, 0.05, 300},
		{"invalid voters", 0, 0.1, 0.05, 0},
		{"invalid delta", 10, 0.1, 1, 0},
		{"invalid epsilon", 10, 0, 0.05, 0},
		{"saturates on tiny epsilon", 10, 1e-9, 0.05, math.MaxInt},
		{"saturates on huge electorate", math.MaxInt32, 1e-6, 1e-300, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SampleCount(tt.n, tt.epsilon, tt.delta))
		})
	}
}

func TestSampleCountMatchesFormula(t *testing.T) {
	for _, n := range []int{1, 3, 7, 20} {
		for _, eps := range []float64{0.05, 0.2, 0.5} {
			for _, delta := range []float64{0.01, 0.1, 0.3} {
				want := int(math.Ceil(float64(n*n) * -math.Log(delta) / (eps * eps)))
				assert.Equal(t, want, SampleCount(n, eps, delta), "n=%d eps=%g delta=%g", n, eps, delta)
			}
		}
	}
}
