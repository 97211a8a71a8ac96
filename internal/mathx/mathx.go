// Package mathx holds small integer helpers used by the sensor pipeline.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Map linearly maps x from [inMin,inMax] to [outMin,outMax], clamping to the
// output range. A degenerate input range maps everything to outMin.
func Map[T constraints.Signed](x, inMin, inMax, outMin, outMax T) T {
	if inMax == inMin {
		return outMin
	}
	x = Clamp(x, inMin, inMax)
	v := outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
	return Clamp(v, outMin, outMax)
}
