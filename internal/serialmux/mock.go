package serialmux

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// MockSerialPort implements SerialPorter for development without a bat
// sensor attached. Reads replay recorded sensor lines; writes (sensor
// commands) are captured but otherwise ignored.
type MockSerialPort struct {
	io.Reader

	mu       sync.Mutex
	closed   bool
	closeRd  func() error
	commands bytes.Buffer
}

func (m *MockSerialPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.New("mock serial port closed")
	}
	return m.commands.Write(p)
}

func (m *MockSerialPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.closeRd()
}

// Commands returns everything written to the mock port so far.
func (m *MockSerialPort) Commands() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commands.String()
}

// NewMockSerialMux creates a SerialMux backed by a mock port that
// emits the given recorded lines in a loop, one line per interval.
func NewMockSerialMux(lines []string, interval time.Duration) *SerialMux[*MockSerialPort] {
	r, w := io.Pipe()
	mockPort := &MockSerialPort{
		Reader:  r,
		closeRd: r.Close,
	}

	go func() {
		defer w.Close()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			<-ticker.C
			line := lines[i%len(lines)]
			if _, err := w.Write([]byte(line + "\n")); err != nil {
				return
			}
		}
	}()

	return NewSerialMux(mockPort)
}
