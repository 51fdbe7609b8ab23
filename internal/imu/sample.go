// Package imu implements the bat-swing reconstruction pipeline: sensor
// calibration, signal conditioning, strapdown navigation, and swing
// event detection over a recorded inertial sample stream.
//
// The pipeline is a strictly sequential batch computation. Each stage
// is a pure function over the previous stage's output; nothing is
// mutated in place across stages, and a whole analysis is repeatable
// for the same input and configuration.
package imu

import "errors"

// Gravity is the expected static gravity magnitude in m/s².
const Gravity = 9.81

// ErrNoData is returned when an analysis is requested on an empty
// sample stream. It is the only hard failure in the pipeline.
var ErrNoData = errors.New("imu: no samples in stream")

// Sample is one raw inertial measurement: specific force in m/s² and
// angular rate in rad/s, both in the sensor body frame. Samples are
// implicitly timestamped by index times the sampling interval.
type Sample struct {
	Accel Vec3
	Gyro  Vec3
}

// AccelSeries extracts the acceleration channel from a sample stream.
func AccelSeries(samples []Sample) []Vec3 {
	out := make([]Vec3, len(samples))
	for i, s := range samples {
		out[i] = s.Accel
	}
	return out
}

// GyroSeries extracts the angular-rate channel from a sample stream.
func GyroSeries(samples []Sample) []Vec3 {
	out := make([]Vec3, len(samples))
	for i, s := range samples {
		out[i] = s.Gyro
	}
	return out
}
