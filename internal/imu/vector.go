package imu

import "math"

// Vec3 is a three-component vector in sensor or world coordinates.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// DivElem returns the component-wise quotient v / w.
func (v Vec3) DivElem(w Vec3) Vec3 {
	return Vec3{v.X / w.X, v.Y / w.Y, v.Z / w.Z}
}

// Norm returns the Euclidean magnitude of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// IsFinite reports whether all components are finite numbers.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// axis extracts a single axis (0=X, 1=Y, 2=Z) from a series of vectors.
func axis(series []Vec3, i int) []float64 {
	out := make([]float64, len(series))
	for j, v := range series {
		switch i {
		case 0:
			out[j] = v.X
		case 1:
			out[j] = v.Y
		default:
			out[j] = v.Z
		}
	}
	return out
}

// fromAxes rebuilds a vector series from three per-axis slices of equal length.
func fromAxes(x, y, z []float64) []Vec3 {
	out := make([]Vec3, len(x))
	for i := range out {
		out[i] = Vec3{x[i], y[i], z[i]}
	}
	return out
}

// magnitudes returns the per-sample Euclidean magnitude of a vector series.
func magnitudes(series []Vec3) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v.Norm()
	}
	return out
}
