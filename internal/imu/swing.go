package imu

import "math"

// SwingConfig holds the swing event detector parameters.
type SwingConfig struct {
	// RateThreshold is the angular-rate magnitude (rad/s) a sample
	// must exceed to count as part of the swing.
	RateThreshold float64

	// PostSwingPadding extends the swing phase past the last exceeding
	// sample, in seconds.
	PostSwingPadding float64
}

// DefaultSwingConfig returns the detector defaults for bat swings.
func DefaultSwingConfig() SwingConfig {
	return SwingConfig{
		RateThreshold:    3.5,
		PostSwingPadding: 0.15,
	}
}

// SwingMetrics summarises a detected swing. Indices refer to the
// analysed sample stream; End is exclusive.
type SwingMetrics struct {
	Start       int `json:"start"`
	End         int `json:"end"`
	ImpactIndex int `json:"impact_index"`

	// PeakSpeedKmh is the bat speed at impact in km/h.
	PeakSpeedKmh float64 `json:"peak_speed_kmh"`

	// PeakAngularDps is the angular-rate magnitude at impact in deg/s.
	PeakAngularDps float64 `json:"peak_angular_dps"`

	// TimeToImpactMs is the time from swing start to impact.
	TimeToImpactMs float64 `json:"time_to_impact_ms"`
}

// DetectSwing scans the conditioned angular-rate series for the swing
// phase and locates the impact as the peak speed within it. A stream
// that never exceeds the threshold yields (zero metrics, false); that
// is a valid no-detection outcome, not an error.
func DetectSwing(gyro []Vec3, nav Navigation, dt float64, cfg SwingConfig) (SwingMetrics, bool) {
	start, end := -1, -1
	for i, w := range gyro {
		if w.Norm() > cfg.RateThreshold {
			if start < 0 {
				start = i
			}
			end = i
		}
	}
	if start < 0 {
		return SwingMetrics{}, false
	}

	// Pad past the last exceeding sample, clamped to the stream.
	end += int(cfg.PostSwingPadding/dt) + 1
	if end > len(gyro) {
		end = len(gyro)
	}

	// Impact = earliest maximum speed within [start, end).
	speeds := nav.Speeds()
	impact := start
	for i := start; i < end && i < len(speeds); i++ {
		if speeds[i] > speeds[impact] {
			impact = i
		}
	}

	return SwingMetrics{
		Start:          start,
		End:            end,
		ImpactIndex:    impact,
		PeakSpeedKmh:   speeds[impact] * 3.6,
		PeakAngularDps: gyro[impact].Norm() * 180 / math.Pi,
		TimeToImpactMs: float64(impact-start) * dt * 1000,
	}, true
}
