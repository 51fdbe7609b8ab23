package imu

// ConditioningConfig holds the per-channel filter settings for the
// signal conditioning stage.
type ConditioningConfig struct {
	// AccelCutoffHz is the Butterworth -3 dB cutoff for acceleration.
	AccelCutoffHz float64
	// GyroCutoffHz is the Butterworth -3 dB cutoff for angular rate.
	GyroCutoffHz float64

	Smoother SmootherConfig
}

// DefaultConditioningConfig returns the conditioning defaults.
func DefaultConditioningConfig() ConditioningConfig {
	return ConditioningConfig{
		AccelCutoffHz: 30,
		GyroCutoffHz:  40,
		Smoother:      DefaultSmootherConfig(),
	}
}

// ConditionedStream holds the calibrated and filtered series for both
// sensor channels. The calibrated-only series are retained so the
// filter stages can be compared against their input.
type ConditionedStream struct {
	// CalibratedAccel and CalibratedGyro have calibration applied but
	// no filtering.
	CalibratedAccel []Vec3
	CalibratedGyro  []Vec3

	// Accel and Gyro are the fully conditioned series: calibrated,
	// zero-phase low-passed, then smoothed per axis.
	Accel []Vec3
	Gyro  []Vec3
}

// Condition applies calibration, zero-phase low-pass filtering, and
// the per-axis smoother to a raw stream. Axes are processed
// independently; the output series match the input length.
func Condition(samples []Sample, cal Calibration, dt float64, cfg ConditioningConfig) ConditionedStream {
	calAccel, calGyro := cal.Apply(samples)

	accel := lowPassSeries(calAccel, cfg.AccelCutoffHz, dt)
	gyro := lowPassSeries(calGyro, cfg.GyroCutoffHz, dt)

	return ConditionedStream{
		CalibratedAccel: calAccel,
		CalibratedGyro:  calGyro,
		Accel:           smoothSeries(accel, dt, cfg.Smoother),
		Gyro:            smoothSeries(gyro, dt, cfg.Smoother),
	}
}
