package imu

import "github.com/banshee-data/swing.report/internal/monitoring"

// Config is the full tuning surface of the analysis pipeline.
type Config struct {
	// Dt is the sampling interval in seconds.
	Dt float64

	Calibration  CalibrationConfig
	Conditioning ConditioningConfig
	Strapdown    StrapdownConfig
	Swing        SwingConfig
}

// DefaultConfig returns the pipeline defaults for a 100 Hz recording.
func DefaultConfig() Config {
	return Config{
		Dt:           0.01,
		Calibration:  DefaultCalibrationConfig(),
		Conditioning: DefaultConditioningConfig(),
		Strapdown:    DefaultStrapdownConfig(),
		Swing:        DefaultSwingConfig(),
	}
}

// Analysis is the immutable result of one pipeline run. Each field is
// produced by exactly one stage; later stages only read the outputs of
// earlier ones.
type Analysis struct {
	Dt          float64
	SampleCount int

	Calibration Calibration
	Conditioned ConditionedStream
	Nav         Navigation

	// Metrics is only meaningful when SwingFound is true.
	Metrics    SwingMetrics
	SwingFound bool
}

// Analyze runs the whole pipeline over a raw sample stream:
// calibration, conditioning, strapdown integration, swing detection.
// The only failure is an empty stream; everything past input
// validation is a total function that degrades to best-effort
// estimates on unusual data.
func Analyze(samples []Sample, cfg Config) (*Analysis, error) {
	if len(samples) == 0 {
		return nil, ErrNoData
	}

	cal := Calibrate(samples, cfg.Calibration)
	monitoring.Logf("calibration: method=%s static_samples=%d", cal.Method, cal.StaticCount)

	conditioned := Condition(samples, cal, cfg.Dt, cfg.Conditioning)
	nav := Integrate(conditioned.Accel, conditioned.Gyro, cfg.Dt, cfg.Strapdown)

	a := &Analysis{
		Dt:          cfg.Dt,
		SampleCount: len(samples),
		Calibration: cal,
		Conditioned: conditioned,
		Nav:         nav,
	}
	a.Metrics, a.SwingFound = DetectSwing(conditioned.Gyro, nav, cfg.Dt, cfg.Swing)
	if a.SwingFound {
		monitoring.Logf("swing: impact=%d peak=%.1fkm/h ttc=%.0fms",
			a.Metrics.ImpactIndex, a.Metrics.PeakSpeedKmh, a.Metrics.TimeToImpactMs)
	} else {
		monitoring.Logf("swing: no swing detected above %.2frad/s", cfg.Swing.RateThreshold)
	}
	return a, nil
}
