package omath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Epsilon is the threshold under which two points are considered coincident.
	Epsilon = 1e-8
	// DegenerateDistance is the signed distance reported for a point sitting exactly on a
	// collider's core, where no contact normal can be derived.
	DegenerateDistance = -0.01
)

// DegenerateNormal is the direction used whenever a direction has to be derived from two
// coincident points.
var DegenerateNormal = mgl64.Vec3{0, 0, -1}

// Vec64To32 converts a 64-bit vector to a 32-bit one.
func Vec64To32(vec3 mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(vec3[0]), float32(vec3[1]), float32(vec3[2])}
}

// Round will round a number to a given precision.
func Round(val float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(val*p) / p
}

// RoundVec64 will round a 64-bit vector to a given precision.
func RoundVec64(v mgl64.Vec3, p int) mgl64.Vec3 {
	return mgl64.Vec3{Round(v.X(), p), Round(v.Y(), p), Round(v.Z(), p)}
}

// IsZero returns true if the vector is shorter than Epsilon.
func IsZero(v mgl64.Vec3) bool {
	return v.LenSqr() <= Epsilon*Epsilon
}

// SafeNormalize normalizes v, returning fallback instead when v has no usable length.
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l <= Epsilon {
		return fallback
	}
	return v.Mul(1 / l)
}

// ApproxEqual returns true if both vectors are within threshold of each other on every axis.
func ApproxEqual(a, b mgl64.Vec3, threshold float64) bool {
	return a.ApproxEqualThreshold(b, threshold)
}

// AngleBetween returns the angle in radians between two directions. Zero vectors yield 0.
func AngleBetween(a, b mgl64.Vec3) float64 {
	if IsZero(a) || IsZero(b) {
		return 0
	}
	return math.Atan2(a.Cross(b).Len(), a.Dot(b))
}

// ShortestArc returns the smallest rotation turning direction from onto direction to. The identity
// rotation is returned if either vector has no length or both already point the same way.
// Opposite vectors are rotated by pi around an axis perpendicular to from.
func ShortestArc(from, to mgl64.Vec3) mgl64.Quat {
	if IsZero(from) || IsZero(to) {
		return mgl64.QuatIdent()
	}
	from, to = from.Normalize(), to.Normalize()

	axis := from.Cross(to)
	if axis.Len() <= Epsilon {
		if from.Dot(to) > 0 {
			return mgl64.QuatIdent()
		}
		axis = mgl64.Vec3{1, 0, 0}.Cross(from)
		if axis.Len() <= Epsilon {
			axis = mgl64.Vec3{0, 1, 0}.Cross(from)
		}
		return mgl64.QuatRotate(math.Pi, axis.Normalize())
	}
	return mgl64.QuatRotate(AngleBetween(from, to), axis.Normalize())
}

// QuatAngle returns the rotation angle in radians represented by a unit quaternion.
func QuatAngle(q mgl64.Quat) float64 {
	q = q.Normalize()
	return 2 * math.Acos(mgl64.Clamp(math.Abs(q.W), 0, 1))
}
