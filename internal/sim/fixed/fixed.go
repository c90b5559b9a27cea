// Package fixed is the integer numeric layer of the simulation.
//
// All positions, velocities and thresholds that affect serialized state are
// Q16.16 values held in int32. Conversions from real-valued tuning happen
// exactly once at construction; nothing in a tick path touches a float.
package fixed

import "math"

const (
	Shift = 16
	Scale = 1 << Shift
	Half  = 1 << (Shift - 1)
)

// TickRate is the fixed logical tick rate. The simulation is undefined at any
// other rate; PerTick's magic constants assume it.
const TickRate = 60

// FromFloat converts a real value to Q16.16, rounding to nearest.
func FromFloat(f float64) int32 {
	return int32(math.Round(f * Scale))
}

// ToFloat converts Q16.16 back to a real value. Render-state only.
func ToFloat(v int32) float64 {
	return float64(v) / Scale
}

func FromInt(i int) int32 { return int32(i) << Shift }
func ToInt(v int32) int   { return int(v >> Shift) }

// Mul multiplies two Q16.16 values with a 64-bit intermediate.
func Mul(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> Shift)
}

// MulShift computes (v*mul)>>shift with a 64-bit intermediate. Used for
// integer fractions (e.g. velocity lead factors) without float division.
func MulShift(v int32, mul int32, shift uint8) int32 {
	return int32((int64(v) * int64(mul)) >> shift)
}

// Reciprocal-multiply division by 60: (n*0x88888889)>>37 equals floor(n/60)
// for every uint32 n, so the signed form below is bit-identical to Go's
// truncating v/60 across the whole int32 range.
const (
	divTickMagic = 0x88888889
	divTickShift = 37
)

// PerTick converts a per-second Q16.16 velocity into a per-tick displacement.
func PerTick(v int32) int32 {
	if v < 0 {
		u := uint64(uint32(-v))
		return -int32(uint32((u * divTickMagic) >> divTickShift))
	}
	u := uint64(uint32(v))
	return int32(uint32((u * divTickMagic) >> divTickShift))
}

// Abs returns the absolute value. Abs(MinInt32) is never reached: velocities
// are clamped well inside the representable range.
func Abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
