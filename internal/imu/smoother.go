package imu

// SmootherConfig holds the noise scale factors for the per-axis
// constant-velocity smoother, relative to unit noise.
type SmootherConfig struct {
	ProcessNoise     float64
	MeasurementNoise float64
}

// DefaultSmootherConfig returns the smoother defaults used after the
// Butterworth stage.
func DefaultSmootherConfig() SmootherConfig {
	return SmootherConfig{
		ProcessNoise:     0.05,
		MeasurementNoise: 0.1,
	}
}

// axisSmoother is a linear Kalman filter over a single axis with a
// constant-velocity process model: state [value, rate-of-change].
// The covariance is a 2x2 matrix stored row-major.
type axisSmoother struct {
	dt float64
	q  float64 // process noise
	r  float64 // measurement noise

	x0, x1 float64    // state: value, rate
	p      [4]float64 // covariance
}

func newAxisSmoother(first, dt float64, cfg SmootherConfig) *axisSmoother {
	return &axisSmoother{
		dt: dt,
		q:  cfg.ProcessNoise,
		r:  cfg.MeasurementNoise,
		x0: first,
		x1: 0,
		p:  [4]float64{1, 0, 0, 1},
	}
}

// predict advances the state one sample under the constant-velocity
// model and inflates the covariance by the process noise.
func (s *axisSmoother) predict() {
	s.x0 += s.dt * s.x1

	p00 := s.p[0] + s.dt*(s.p[1]+s.p[2]) + s.dt*s.dt*s.p[3] + s.q
	p01 := s.p[1] + s.dt*s.p[3]
	p10 := s.p[2] + s.dt*s.p[3]
	p11 := s.p[3] + s.q
	s.p = [4]float64{p00, p01, p10, p11}
}

// update corrects the state with a measurement of the value component.
func (s *axisSmoother) update(z float64) {
	innovation := z - s.x0
	gain := s.p[0] + s.r
	k0 := s.p[0] / gain
	k1 := s.p[2] / gain

	s.x0 += k0 * innovation
	s.x1 += k1 * innovation

	p00 := (1 - k0) * s.p[0]
	p01 := (1 - k0) * s.p[1]
	p10 := s.p[2] - k1*s.p[0]
	p11 := s.p[3] - k1*s.p[1]
	s.p = [4]float64{p00, p01, p10, p11}
}

// SmoothAxis runs the constant-velocity smoother forward over a single
// axis and returns the estimated value component per sample. The
// filter is initialised with state [signal[0], 0].
func SmoothAxis(signal []float64, dt float64, cfg SmootherConfig) []float64 {
	if len(signal) == 0 {
		return nil
	}

	s := newAxisSmoother(signal[0], dt, cfg)
	out := make([]float64, len(signal))
	out[0] = s.x0
	for i := 1; i < len(signal); i++ {
		s.predict()
		s.update(signal[i])
		out[i] = s.x0
	}
	return out
}

// smoothSeries smooths each axis of a vector series independently.
func smoothSeries(series []Vec3, dt float64, cfg SmootherConfig) []Vec3 {
	return fromAxes(
		SmoothAxis(axis(series, 0), dt, cfg),
		SmoothAxis(axis(series, 1), dt, cfg),
		SmoothAxis(axis(series, 2), dt, cfg),
	)
}
