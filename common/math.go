package common

import (
	"cmp"
	"math"
)

// Sqr returns the square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

// Abs returns the absolute value.
func Abs[T IT](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// Clamp clamps the value to [minInclusive, maxInclusive].
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

// Vdist returns the distance between two points.
func Vdist(v1, v2 Vec3) float32 {
	return v2.Sub(v1).Len()
}

// VdistSqr returns the square of the distance between two points.
func VdistSqr(v1, v2 Vec3) float32 {
	d := v2.Sub(v1)
	return d.Dot(d)
}

// Vdist2DSqr derives the square of the distance between the points on the xz-plane.
func Vdist2DSqr(v1, v2 Vec3) float32 {
	dx := v2[0] - v1[0]
	dz := v2[2] - v1[2]
	return dx*dx + dz*dz
}

// Vdist2D derives the distance between the points on the xz-plane.
// The y-values are ignored.
func Vdist2D(v1, v2 Vec3) float32 {
	return float32(math.Sqrt(float64(Vdist2DSqr(v1, v2))))
}

// HeightDelta is |v1.y - v2.y|.
func HeightDelta(v1, v2 Vec3) float32 {
	return Abs(v1[1] - v2[1])
}

// Vequal performs a 'sloppy' colocation check of the specified points.
func Vequal(p0, p1 Vec3) bool {
	thr := Sqr(1.0 / 16384.0)
	return float64(VdistSqr(p0, p1)) < thr
}

// Vnormalize returns v scaled to unit length, or the zero vector when v has no length.
func Vnormalize(v Vec3) Vec3 {
	l := v.Len()
	if l < 1e-6 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// Visfinite checks that the vector's components are all finite.
func Visfinite(v Vec3) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

func IsFinite(v float32) bool {
	return !math.IsInf(float64(v), 0) && !math.IsNaN(float64(v))
}

// Angle2D returns the angle of the xz-direction from a to b in (-pi, pi].
func Angle2D(a, b Vec3) float64 {
	return math.Atan2(float64(b[2]-a[2]), float64(b[0]-a[0]))
}
