package imu

import (
	"math"
	"testing"
)

func constantStream(n int, accel, gyro Vec3) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{Accel: accel, Gyro: gyro}
	}
	return samples
}

func TestCalibrateConstantStreamFitted(t *testing.T) {
	// A long constant stream at exactly gravity magnitude: the fitted
	// estimator should stay near bias 0, scale 1 and recover the gyro
	// constant as bias.
	samples := constantStream(500, Vec3{0, 0, Gravity}, Vec3{0.01, -0.02, 0.03})
	cal := Calibrate(samples, DefaultCalibrationConfig())

	if cal.Method != CalibrationFitted {
		t.Fatalf("Method = %s, want %s (static count %d)", cal.Method, CalibrationFitted, cal.StaticCount)
	}
	if math.Abs(cal.GyroBias.X-0.01) > 1e-9 || math.Abs(cal.GyroBias.Y+0.02) > 1e-9 || math.Abs(cal.GyroBias.Z-0.03) > 1e-9 {
		t.Errorf("GyroBias = %+v, want (0.01, -0.02, 0.03)", cal.GyroBias)
	}
	if cal.AccelBias.Norm() > 0.3 {
		t.Errorf("AccelBias = %+v, want near zero", cal.AccelBias)
	}
	for _, s := range []float64{cal.AccelScale.X, cal.AccelScale.Y, cal.AccelScale.Z} {
		if math.Abs(s-1) > 0.05 {
			t.Errorf("AccelScale = %+v, want near unit", cal.AccelScale)
			break
		}
	}

	// The corrected magnitude must land on gravity regardless of where
	// the fit settled along the bias/scale trade-off.
	corrected := Vec3{0, 0, Gravity}.Sub(cal.AccelBias).DivElem(cal.AccelScale)
	if math.Abs(corrected.Norm()-Gravity) > 0.01 {
		t.Errorf("corrected magnitude = %v, want %v", corrected.Norm(), Gravity)
	}
}

func TestCalibrateShortStreamFallsBack(t *testing.T) {
	// Below the static window there can be no candidates at all.
	samples := constantStream(30, Vec3{0.1, -0.1, Gravity + 0.2}, Vec3{0.5, 0, 0})
	cal := Calibrate(samples, DefaultCalibrationConfig())

	if cal.Method != CalibrationNaive {
		t.Fatalf("Method = %s, want %s", cal.Method, CalibrationNaive)
	}
	want := Vec3{0.1, -0.1, 0.2}
	if cal.AccelBias.Sub(want).Norm() > 1e-9 {
		t.Errorf("AccelBias = %+v, want %+v", cal.AccelBias, want)
	}
	if (cal.AccelScale != Vec3{1, 1, 1}) {
		t.Errorf("AccelScale = %+v, want unit", cal.AccelScale)
	}
	if math.Abs(cal.GyroBias.X-0.5) > 1e-9 {
		t.Errorf("GyroBias.X = %v, want 0.5", cal.GyroBias.X)
	}
}

func TestCalibrateAlwaysMovingFallsBack(t *testing.T) {
	// Accel magnitude oscillates hard: rolling std never drops below
	// threshold, so no static candidates exist.
	samples := make([]Sample, 400)
	for i := range samples {
		a := Gravity + 5*math.Sin(float64(i))
		samples[i] = Sample{Accel: Vec3{0, 0, a}, Gyro: Vec3{1, 1, 1}}
	}
	cal := Calibrate(samples, DefaultCalibrationConfig())

	if cal.Method != CalibrationNaive {
		t.Errorf("Method = %s, want %s", cal.Method, CalibrationNaive)
	}
	if !cal.AccelBias.IsFinite() || !cal.AccelScale.IsFinite() || !cal.GyroBias.IsFinite() {
		t.Errorf("calibration not finite: %+v", cal)
	}
}

func TestCalibrateTinyStreamStillFinite(t *testing.T) {
	samples := constantStream(3, Vec3{0, 0, Gravity}, Vec3{})
	cal := Calibrate(samples, DefaultCalibrationConfig())

	if cal.Method != CalibrationNaive {
		t.Errorf("Method = %s, want %s", cal.Method, CalibrationNaive)
	}
	if !cal.AccelBias.IsFinite() || !cal.AccelScale.IsFinite() || !cal.GyroBias.IsFinite() {
		t.Errorf("calibration not finite: %+v", cal)
	}
}

func TestCalibrationApply(t *testing.T) {
	cal := Calibration{
		AccelBias:  Vec3{1, 2, 3},
		AccelScale: Vec3{2, 2, 2},
		GyroBias:   Vec3{0.1, 0.1, 0.1},
	}
	samples := []Sample{{Accel: Vec3{3, 6, 9}, Gyro: Vec3{1.1, 2.1, 3.1}}}

	accel, gyro := cal.Apply(samples)
	if accel[0] != (Vec3{1, 2, 3}) {
		t.Errorf("accel = %+v, want (1, 2, 3)", accel[0])
	}
	if gyro[0].Sub(Vec3{1, 2, 3}).Norm() > 1e-12 {
		t.Errorf("gyro = %+v, want (1, 2, 3)", gyro[0])
	}
}

func TestStaticCandidatesWindowEdges(t *testing.T) {
	// Constant magnitude: every index past the first window is a
	// candidate.
	accel := make([]Vec3, 120)
	for i := range accel {
		accel[i] = Vec3{0, 0, Gravity}
	}
	got := staticCandidates(accel, 50, 0.5)
	if len(got) != 120-49 {
		t.Fatalf("candidate count = %d, want %d", len(got), 120-49)
	}
	if got[0] != 49 {
		t.Errorf("first candidate = %d, want 49", got[0])
	}

	// Too short for the window: no candidates.
	if cands := staticCandidates(accel[:30], 50, 0.5); cands != nil {
		t.Errorf("short stream candidates = %v, want none", cands)
	}
}
