// Package testutil provides shared test helpers and synthetic sensor
// fixtures for the swing pipeline.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/banshee-data/swing.report/internal/imu"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// DecodeJSON unmarshals a recorded JSON response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// SwingSamples builds a synthetic recording: a quiet stance with
// gravity on the Z axis, then a short rotation-and-thrust burst.
// Long enough for fitted calibration and strong enough to trip the
// default swing threshold.
func SwingSamples() []imu.Sample {
	samples := make([]imu.Sample, 300)
	for i := range samples {
		samples[i] = imu.Sample{Accel: imu.Vec3{Z: imu.Gravity}}
	}
	for i := 150; i < 170; i++ {
		samples[i].Gyro = imu.Vec3{Z: 5.0}
		samples[i].Accel.X = 12.0
	}
	return samples
}

// SwingRecording renders SwingSamples in the sensor line format.
func SwingRecording() string {
	var b strings.Builder
	b.WriteString("# synthetic swing fixture\n")
	for _, s := range SwingSamples() {
		fmt.Fprintf(&b, "acc:%g,%g,%g gyro:%g,%g,%g\n",
			s.Accel.X, s.Accel.Y, s.Accel.Z, s.Gyro.X, s.Gyro.Y, s.Gyro.Z)
	}
	return b.String()
}
