// Package capture records live bat-sensor output into the same
// line format the recording parser reads.
package capture

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/swing.report/internal/imu"
	"github.com/banshee-data/swing.report/internal/monitoring"
	"github.com/banshee-data/swing.report/internal/parse"
	"github.com/banshee-data/swing.report/internal/serialmux"
	"github.com/banshee-data/swing.report/internal/timeutil"
)

// Recorder accumulates parsed sensor samples from a serial mux
// subscription for a fixed recording window.
type Recorder struct {
	mux   serialmux.SerialMuxInterface
	clock timeutil.Clock
}

// NewRecorder creates a Recorder reading from the given mux. A nil
// clock uses the real one.
func NewRecorder(mux serialmux.SerialMuxInterface, clock timeutil.Clock) *Recorder {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Recorder{mux: mux, clock: clock}
}

// Recording is the result of one capture window.
type Recording struct {
	StartedAt time.Time
	Duration  time.Duration
	Samples   []imu.Sample
	Skipped   int
}

// Record subscribes to the sensor stream and collects samples until
// the window elapses or the context is cancelled. Lines that fail to
// parse are counted and skipped: live serial output routinely starts
// mid-line, and a truncated first record must not abort the capture.
func (r *Recorder) Record(ctx context.Context, window time.Duration) (*Recording, error) {
	id, ch := r.mux.Subscribe()
	defer r.mux.Unsubscribe(id)

	start := r.clock.Now()
	deadline := r.clock.After(window)
	recording := &Recording{StartedAt: start}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-deadline:
			recording.Duration = r.clock.Since(start)
			if len(recording.Samples) == 0 {
				return nil, fmt.Errorf("capture window ended with no samples: %w", parse.ErrNoRecords)
			}
			if recording.Skipped > 0 {
				monitoring.Logf("capture: skipped %d unparseable lines of %d received",
					recording.Skipped, recording.Skipped+len(recording.Samples))
			}
			return recording, nil

		case line, ok := <-ch:
			if !ok {
				return nil, fmt.Errorf("sensor stream closed during capture")
			}
			rec, err := parse.ParseRecord(line)
			if err != nil {
				recording.Skipped++
				continue
			}
			recording.Samples = append(recording.Samples, imu.Sample{Accel: rec.Accel, Gyro: rec.Gyro})
		}
	}
}

// WriteTo persists the recording in the parser's line format, with a
// comment header recording when and how long the capture ran.
func (rec *Recording) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := fmt.Fprintf(w, "# captured %s (%s, %d samples)\n",
		rec.StartedAt.UTC().Format(time.RFC3339), rec.Duration, len(rec.Samples))
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, s := range rec.Samples {
		n, err := fmt.Fprintln(w, parse.Line(s))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
