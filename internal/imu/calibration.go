package imu

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/banshee-data/swing.report/internal/monitoring"
)

// CalibrationMethod identifies which estimator produced a Calibration.
type CalibrationMethod string

const (
	// CalibrationNaive is the fallback estimator used when too few
	// static samples are available: channel means over the head of the
	// stream, unit accelerometer scale.
	CalibrationNaive CalibrationMethod = "naive"
	// CalibrationFitted is the full estimator: gyro bias from static
	// intervals, accelerometer bias and scale by least squares against
	// the gravity magnitude.
	CalibrationFitted CalibrationMethod = "fitted"
)

// CalibrationConfig holds tuning parameters for static-interval
// detection and the fallback estimator.
type CalibrationConfig struct {
	// StaticWindow is the rolling window (samples) for the
	// accelerometer-magnitude standard deviation.
	StaticWindow int

	// StaticNoiseThreshold is the rolling std-dev (m/s²) below which a
	// sample counts as a static candidate.
	StaticNoiseThreshold float64

	// MinStaticSamples is the minimum number of static candidates
	// required before the fitted estimator is used.
	MinStaticSamples int

	// FallbackSamples is how many leading samples the naive estimator
	// averages over.
	FallbackSamples int
}

// DefaultCalibrationConfig returns the calibration defaults for
// bat-mounted sensors sampled around 100 Hz.
func DefaultCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{
		StaticWindow:         50,
		StaticNoiseThreshold: 0.5,
		MinStaticSamples:     100,
		FallbackSamples:      100,
	}
}

// Calibration holds per-axis sensor corrections estimated once per
// recording. AccelScale components are strictly positive.
type Calibration struct {
	AccelBias  Vec3              `json:"accel_bias"`
	AccelScale Vec3              `json:"accel_scale"`
	GyroBias   Vec3              `json:"gyro_bias"`
	Method     CalibrationMethod `json:"method"`

	// StaticCount is the number of static candidate samples found.
	StaticCount int `json:"static_count"`
}

// Calibrate estimates sensor corrections from a raw sample stream. It
// never fails: with insufficient static data it degrades to the naive
// estimator, and any non-finite fit result is discarded in favour of
// the naive one.
func Calibrate(samples []Sample, cfg CalibrationConfig) Calibration {
	static := staticCandidates(AccelSeries(samples), cfg.StaticWindow, cfg.StaticNoiseThreshold)

	if len(static) == 0 || len(static) < cfg.MinStaticSamples {
		cal := naiveCalibration(samples, cfg.FallbackSamples)
		cal.StaticCount = len(static)
		return cal
	}

	cal := Calibration{
		Method:      CalibrationFitted,
		StaticCount: len(static),
		GyroBias:    meanAt(GyroSeries(samples), static),
	}

	bias, scale, ok := fitAccelCalibration(AccelSeries(samples), static)
	if !ok {
		monitoring.Logf("calibration: accel fit did not converge, using naive estimate")
		naive := naiveCalibration(samples, cfg.FallbackSamples)
		cal.AccelBias = naive.AccelBias
		cal.AccelScale = naive.AccelScale
		return cal
	}
	cal.AccelBias = bias
	cal.AccelScale = scale
	return cal
}

// staticCandidates returns the indices whose rolling accelerometer
// magnitude standard deviation falls below threshold. The window
// trails the index, so the first window-1 samples are never candidates.
func staticCandidates(accel []Vec3, window int, threshold float64) []int {
	if window < 2 || len(accel) < window {
		return nil
	}

	mags := magnitudes(accel)
	var candidates []int

	// Rolling sums keep this O(N) over the stream.
	var sum, sumSq float64
	for i, m := range mags {
		sum += m
		sumSq += m * m
		if i >= window {
			old := mags[i-window]
			sum -= old
			sumSq -= old * old
		}
		if i < window-1 {
			continue
		}
		n := float64(window)
		variance := sumSq/n - (sum/n)*(sum/n)
		if variance < 0 {
			variance = 0
		}
		if math.Sqrt(variance) < threshold {
			candidates = append(candidates, i)
		}
	}
	return candidates
}

// naiveCalibration averages the head of the stream. It assumes the
// sensor starts at rest with gravity along +Z and applies no scale
// correction. Works for any non-empty stream, however short.
func naiveCalibration(samples []Sample, head int) Calibration {
	n := head
	if len(samples) < n {
		n = len(samples)
	}

	var accelSum, gyroSum Vec3
	for _, s := range samples[:n] {
		accelSum = accelSum.Add(s.Accel)
		gyroSum = gyroSum.Add(s.Gyro)
	}

	inv := 1.0 / float64(n)
	return Calibration{
		AccelBias:  accelSum.Scale(inv).Sub(Vec3{0, 0, Gravity}),
		AccelScale: Vec3{1, 1, 1},
		GyroBias:   gyroSum.Scale(inv),
		Method:     CalibrationNaive,
	}
}

// meanAt averages a vector series over the given indices.
func meanAt(series []Vec3, indices []int) Vec3 {
	var sum Vec3
	for _, i := range indices {
		sum = sum.Add(series[i])
	}
	return sum.Scale(1.0 / float64(len(indices)))
}

// fitAccelCalibration fits accelerometer bias and scale by minimising
// the squared residual ‖(raw-bias)/scale‖ - g over the static samples.
// The solver choice is incidental; the contract is the residual.
func fitAccelCalibration(accel []Vec3, static []int) (bias, scale Vec3, ok bool) {
	// Parameter vector: [bx, by, bz, sx, sy, sz].
	objective := func(p []float64) float64 {
		b := Vec3{p[0], p[1], p[2]}
		s := Vec3{clampScale(p[3]), clampScale(p[4]), clampScale(p[5])}
		var sum float64
		for _, i := range static {
			r := accel[i].Sub(b).DivElem(s).Norm() - Gravity
			sum += r * r
		}
		return sum
	}

	problem := optimize.Problem{Func: objective}
	x0 := []float64{0, 0, 0, 1, 1, 1}

	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return Vec3{}, Vec3{}, false
	}

	bias = Vec3{result.X[0], result.X[1], result.X[2]}
	scale = Vec3{clampScale(result.X[3]), clampScale(result.X[4]), clampScale(result.X[5])}
	if !bias.IsFinite() || !scale.IsFinite() {
		return Vec3{}, Vec3{}, false
	}
	return bias, scale, true
}

// clampScale keeps scale components strictly positive so the
// component-wise division in the residual stays defined.
func clampScale(s float64) float64 {
	const minScale = 1e-3
	if s < minScale {
		return minScale
	}
	return s
}

// Apply corrects a raw sample stream with the calibration:
// accel = (raw - bias) / scale, gyro = raw - bias.
func (c Calibration) Apply(samples []Sample) (accel, gyro []Vec3) {
	accel = make([]Vec3, len(samples))
	gyro = make([]Vec3, len(samples))
	for i, s := range samples {
		accel[i] = s.Accel.Sub(c.AccelBias).DivElem(c.AccelScale)
		gyro[i] = s.Gyro.Sub(c.GyroBias)
	}
	return accel, gyro
}
