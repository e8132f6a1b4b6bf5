package election

import "math"

// SampleCount returns N = ceil(n² · (−ln δ) / ε²), the number of samples an
// (ε, δ)-approximation of a [0,1] probability needs for n voters. It is 0 for
// invalid input and saturates at math.MaxInt.
func SampleCount(n int, epsilon, delta float64) int {
	if n <= 0 || epsilon <= 0 || delta <= 0 || delta >= 1 {
		return 0
	}
	nf := float64(n)
	v := math.Ceil(nf * nf * -math.Log(delta) / (epsilon * epsilon))
	if math.IsNaN(v) || v >= math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}
