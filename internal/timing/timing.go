// Package timing holds the float-seconds arithmetic shared by caption
// acquisition and subtitle rendering.
package timing

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NonNegative returns v, or zero when v is negative or NaN.
func NonNegative[T constraints.Float](v T) T {
	if v < 0 || math.IsNaN(float64(v)) {
		return 0
	}
	return v
}

// Parts is a floor-based decomposition of a seconds value.
type Parts struct {
	Hours    int
	Minutes  int
	Seconds  int
	Fraction float64 // in [0, 1)
}

// Decompose splits seconds into hours, minutes, whole seconds and the
// fractional remainder. Every component is floored, never rounded.
func Decompose(seconds float64) Parts {
	s := NonNegative(seconds)
	whole := math.Floor(s)
	return Parts{
		Hours:    int(math.Floor(s / 3600)),
		Minutes:  int(math.Floor(math.Mod(s, 3600) / 60)),
		Seconds:  int(math.Floor(math.Mod(s, 60))),
		Fraction: s - whole,
	}
}

// Scaled floors the fractional part at the given resolution, e.g. 100 for
// centiseconds or 1000 for milliseconds. The result is always < unit.
func (p Parts) Scaled(unit int) int {
	v := int(math.Floor(p.Fraction * float64(unit)))
	return Clamp(v, 0, unit-1)
}

// EqualShares splits total into n consecutive [start, end) windows of equal
// length. The last window ends exactly at total.
func EqualShares(total float64, n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	share := total / float64(n)
	out := make([][2]float64, n)
	for i := range out {
		start := share * float64(i)
		end := share * float64(i+1)
		if i == n-1 {
			end = total
		}
		out[i] = [2]float64{start, end}
	}
	return out
}
