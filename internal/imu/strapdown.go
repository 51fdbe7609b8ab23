package imu

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// StrapdownConfig holds the static-interval heuristics used to bound
// velocity drift during integration. The velocity decay is an ad hoc
// correction tuned for short swing recordings; none of these constants
// should be assumed to generalise to longer horizons.
type StrapdownConfig struct {
	// StaticRateThreshold is the per-sample angular-rate magnitude
	// (rad/s) below which a sample votes as static.
	StaticRateThreshold float64

	// StaticWindow is the size of the membership window centred on
	// each sample.
	StaticWindow int

	// StaticVotes is how many samples in the window must vote static
	// for the sample to be classified static.
	StaticVotes int

	// VelocityDecay multiplies the velocity of samples classified
	// static. 0.5 halves the just-integrated velocity.
	VelocityDecay float64
}

// DefaultStrapdownConfig returns the integrator defaults.
func DefaultStrapdownConfig() StrapdownConfig {
	return StrapdownConfig{
		StaticRateThreshold: 0.5,
		StaticWindow:        15,
		StaticVotes:         10,
		VelocityDecay:       0.5,
	}
}

// Navigation is the per-sample navigation state series produced by the
// strapdown integrator. All series have the same length as the input
// stream; sample 0 is the fixed initial condition (identity
// orientation, zero velocity and position).
type Navigation struct {
	// Orientations maps the body frame to the world frame as unit
	// quaternions (scalar part in Real).
	Orientations []quat.Number

	// Velocities and Positions are world-frame, integrated from rest.
	Velocities []Vec3
	Positions  []Vec3

	// Static marks the samples that received the velocity decay.
	Static []bool
}

// Speeds returns the per-sample velocity magnitude in m/s.
func (n Navigation) Speeds() []float64 {
	return magnitudes(n.Velocities)
}

// Integrate runs strapdown inertial navigation over conditioned
// acceleration and angular-rate series. It is a pure forward
// recurrence: each state depends only on the previous state and the
// current measurement. The function is total over well-formed input;
// pathological streams produce drifting output, never an error.
func Integrate(accel, gyro []Vec3, dt float64, cfg StrapdownConfig) Navigation {
	n := len(gyro)
	nav := Navigation{
		Orientations: make([]quat.Number, n),
		Velocities:   make([]Vec3, n),
		Positions:    make([]Vec3, n),
		Static:       staticMembership(gyro, cfg),
	}
	if n == 0 {
		return nav
	}

	nav.Orientations[0] = quat.Number{Real: 1}
	gravity := Vec3{0, 0, Gravity}

	for i := 1; i < n; i++ {
		// Integrate the gyro sample as a rotation-vector increment in
		// the body frame. Orientation accumulates as measured; no
		// re-normalisation correction is applied.
		q := quat.Mul(nav.Orientations[i-1], rotationIncrement(gyro[i], dt))
		nav.Orientations[i] = q

		// Gravity compensation: express world gravity in the body
		// frame, subtract it from the specific force, and rotate the
		// remainder back into the world frame.
		bodyGravity := rotateVec(quat.Conj(q), gravity)
		worldAccel := rotateVec(q, accel[i].Sub(bodyGravity))

		v := nav.Velocities[i-1].Add(worldAccel.Scale(dt))
		if nav.Static[i] {
			v = v.Scale(cfg.VelocityDecay)
		}
		nav.Velocities[i] = v
		nav.Positions[i] = nav.Positions[i-1].Add(v.Scale(dt))
	}
	return nav
}

// rotationIncrement converts an angular-rate sample into the unit
// quaternion for the rotation w*dt.
func rotationIncrement(w Vec3, dt float64) quat.Number {
	angle := w.Norm() * dt
	if angle == 0 {
		return quat.Number{Real: 1}
	}
	axisScale := math.Sin(angle/2) / w.Norm()
	return quat.Number{
		Real: math.Cos(angle / 2),
		Imag: w.X * axisScale,
		Jmag: w.Y * axisScale,
		Kmag: w.Z * axisScale,
	}
}

// rotateVec rotates v by the quaternion q (q v q*).
func rotateVec(q quat.Number, v Vec3) Vec3 {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return Vec3{r.Imag, r.Jmag, r.Kmag}
}

// staticMembership classifies each sample as static when enough of the
// surrounding window's samples have angular-rate magnitude below the
// threshold. The window is clamped at the stream edges.
func staticMembership(gyro []Vec3, cfg StrapdownConfig) []bool {
	n := len(gyro)
	below := make([]bool, n)
	for i, w := range gyro {
		below[i] = w.Norm() < cfg.StaticRateThreshold
	}

	half := cfg.StaticWindow / 2
	static := make([]bool, n)
	for i := range static {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}
		votes := 0
		for j := lo; j <= hi; j++ {
			if below[j] {
				votes++
			}
		}
		static[i] = votes >= cfg.StaticVotes
	}
	return static
}
