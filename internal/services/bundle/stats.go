package bundle

import "math"

// Mean of xs, 0 when empty.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// SampleStdDev uses Bessel's correction. Returns 0 for fewer than 2 values.
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		sumSq += (x - m) * (x - m)
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

// CoefficientOfVariation is sample stddev over mean, used as a trade-size
// coherence signal. Returns 0 for fewer than 2 values or a zero mean.
func CoefficientOfVariation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	if m == 0 {
		return 0
	}
	return SampleStdDev(xs) / m
}
