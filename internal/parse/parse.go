// Package parse reads bat-sensor recordings: a line-oriented text
// format with three labeled triplets per record (acceleration,
// angular rate, and the sensor's own angle estimate). The analysis
// pipeline only consumes the first two; the angle triplet is retained
// for diagnostics.
package parse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/swing.report/internal/imu"
)

// ErrNoRecords is returned when a recording contains no sample lines.
var ErrNoRecords = errors.New("parse: recording contains no records")

// Record is one parsed sensor line.
type Record struct {
	Accel imu.Vec3 // m/s²
	Gyro  imu.Vec3 // rad/s
	Angle imu.Vec3 // device angle estimate, degrees; informational only
}

// Records parses a recording stream. Blank lines and lines starting
// with '#' are skipped. A malformed sample line is a hard error: the
// pipeline must not run on partially misread data.
func Records(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// ParseRecord extracts the labeled triplets from a single record line,
// e.g. "acc:0.01,-0.02,9.81 gyro:0.001,0.002,0.003 angle:0,0.1,0".
// The angle triplet is optional; acc and gyro are required. The live
// capture service calls this per line as sensor output arrives.
func ParseRecord(line string) (Record, error) {
	var rec Record
	var haveAcc, haveGyro bool

	for _, field := range strings.Fields(line) {
		label, values, ok := strings.Cut(field, ":")
		if !ok {
			return Record{}, fmt.Errorf("malformed field %q", field)
		}

		v, err := parseTriplet(values)
		if err != nil {
			return Record{}, fmt.Errorf("field %q: %w", label, err)
		}

		switch strings.ToLower(label) {
		case "acc", "accel", "a":
			rec.Accel = v
			haveAcc = true
		case "gyro", "gyr", "g":
			rec.Gyro = v
			haveGyro = true
		case "angle", "ang":
			rec.Angle = v
		default:
			return Record{}, fmt.Errorf("unknown field label %q", label)
		}
	}

	if !haveAcc || !haveGyro {
		return Record{}, fmt.Errorf("record missing acc or gyro triplet: %q", line)
	}
	return rec, nil
}

func parseTriplet(s string) (imu.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return imu.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(parts))
	}

	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return imu.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = v
	}
	return imu.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// Samples converts parsed records into the pipeline's input stream.
func Samples(records []Record) []imu.Sample {
	samples := make([]imu.Sample, len(records))
	for i, rec := range records {
		samples[i] = imu.Sample{Accel: rec.Accel, Gyro: rec.Gyro}
	}
	return samples
}

// File reads and converts a recording file in one step.
func File(path string) ([]imu.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	records, err := Records(f)
	if err != nil {
		return nil, err
	}
	return Samples(records), nil
}

// Line formats a sample back into the recording line format. The
// capture service uses it to persist live sensor data in the same
// shape the parser reads.
func Line(s imu.Sample) string {
	return fmt.Sprintf("acc:%g,%g,%g gyro:%g,%g,%g",
		s.Accel.X, s.Accel.Y, s.Accel.Z, s.Gyro.X, s.Gyro.Y, s.Gyro.Z)
}
