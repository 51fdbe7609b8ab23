package imu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/swing.report/internal/monitoring"
)

func init() {
	// Pipeline diagnostics are noise in test output.
	monitoring.SetLogger(nil)
}

func TestAnalyzeEmptyStream(t *testing.T) {
	_, err := Analyze(nil, DefaultConfig())
	require.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeQuiescentStream(t *testing.T) {
	// Gravity-only accel and zero gyro for 5 s: no swing, identity
	// orientation, velocity and position pinned near zero.
	samples := constantStream(500, Vec3{0, 0, Gravity}, Vec3{})

	a, err := Analyze(samples, DefaultConfig())
	require.NoError(t, err)

	assert.False(t, a.SwingFound, "quiescent stream must not contain a swing")
	assert.Equal(t, 500, a.SampleCount)

	for i, q := range a.Nav.Orientations {
		require.InDeltaf(t, 1.0, q.Real, 1e-9, "orientation %d drifted", i)
	}
	for i, v := range a.Nav.Velocities {
		require.Lessf(t, v.Norm(), 0.05, "velocity %d = %v", i, v)
	}
	for i, p := range a.Nav.Positions {
		require.Lessf(t, p.Norm(), 0.05, "position %d = %v", i, p)
	}
}

func TestAnalyzeSyntheticSwing(t *testing.T) {
	// 200 samples at 100 Hz. Gyro magnitude ramps 0 -> 10 rad/s -> 0
	// over samples 50..150; accel is gravity everywhere except a
	// 20 m/s² spike at sample 100, the impact.
	const dt = 0.01
	n := 200
	samples := make([]Sample, n)
	gyro := rampGyro(n, 50, 150, 10)
	for i := range samples {
		samples[i] = Sample{Accel: Vec3{0, 0, Gravity}, Gyro: gyro[i]}
	}
	samples[100].Accel = Vec3{0, 0, 20}

	a, err := Analyze(samples, DefaultConfig())
	require.NoError(t, err)
	require.True(t, a.SwingFound, "synthetic swing not detected")

	m := a.Metrics
	assert.GreaterOrEqual(t, m.Start, 50, "swing cannot start before the ramp")
	assert.Less(t, m.Start, 100, "swing must start on the rising ramp")
	assert.Greater(t, m.End, m.ImpactIndex)

	// The velocity step from the accel spike puts the impact near
	// sample 100; filtering may shift it by a few samples.
	assert.InDelta(t, 100, m.ImpactIndex, 15)
	assert.Greater(t, m.PeakSpeedKmh, 0.0)
	assert.InDelta(t, float64(m.ImpactIndex-m.Start)*dt*1000, m.TimeToImpactMs, 1e-9)

	// Both conditioning stages are retained at full length.
	assert.Len(t, a.Conditioned.CalibratedAccel, n)
	assert.Len(t, a.Conditioned.Accel, n)
	assert.Len(t, a.Conditioned.CalibratedGyro, n)
	assert.Len(t, a.Conditioned.Gyro, n)
}

func TestAnalyzeShortStreamFallback(t *testing.T) {
	// Fewer than 100 samples: the naive calibration path must still
	// produce a complete, finite analysis.
	samples := constantStream(40, Vec3{0, 0, Gravity}, Vec3{})

	a, err := Analyze(samples, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, CalibrationNaive, a.Calibration.Method)
	assert.True(t, a.Calibration.AccelBias.IsFinite())
	assert.True(t, a.Calibration.AccelScale.IsFinite())
	assert.False(t, a.SwingFound)
	for _, v := range a.Nav.Velocities {
		assert.True(t, v.IsFinite())
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	samples := make([]Sample, 300)
	for i := range samples {
		samples[i] = Sample{
			Accel: Vec3{0.3 * math.Sin(float64(i) * 0.1), 0, Gravity},
			Gyro:  Vec3{0, 0, 4 * math.Sin(float64(i) * 0.05)},
		}
	}

	a1, err := Analyze(samples, DefaultConfig())
	require.NoError(t, err)
	a2, err := Analyze(samples, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, a1.Metrics, a2.Metrics)
	assert.Equal(t, a1.SwingFound, a2.SwingFound)
	assert.Equal(t, a1.Calibration, a2.Calibration)
}
