package serialmux

import (
	"testing"

	"go.bug.st/serial"
)

func TestPortOptionsNormalizeDefaults(t *testing.T) {
	opts, err := PortOptions{}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if opts.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", opts.BaudRate)
	}
	if opts.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", opts.DataBits)
	}
	if opts.StopBits != 1 {
		t.Errorf("StopBits = %d, want 1", opts.StopBits)
	}
	if opts.Parity != "N" {
		t.Errorf("Parity = %q, want N", opts.Parity)
	}
}

func TestPortOptionsNormalizeExplicitValues(t *testing.T) {
	opts, err := PortOptions{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "even"}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if opts.BaudRate != 9600 || opts.DataBits != 7 || opts.StopBits != 2 || opts.Parity != "E" {
		t.Errorf("Normalize = %+v", opts)
	}
}

func TestPortOptionsNormalizeInvalid(t *testing.T) {
	cases := []struct {
		name string
		opts PortOptions
	}{
		{"data bits too low", PortOptions{DataBits: 4}},
		{"data bits too high", PortOptions{DataBits: 9}},
		{"bad stop bits", PortOptions{StopBits: 3}},
		{"bad parity", PortOptions{Parity: "X"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.opts.Normalize(); err == nil {
				t.Errorf("Normalize(%+v) should fail", tc.opts)
			}
		})
	}
}

func TestPortOptionsSerialMode(t *testing.T) {
	mode, err := PortOptions{Parity: "O"}.SerialMode()
	if err != nil {
		t.Fatalf("SerialMode: %v", err)
	}
	if mode.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", mode.BaudRate)
	}
	if mode.Parity != serial.OddParity {
		t.Errorf("Parity = %v, want OddParity", mode.Parity)
	}
	if mode.StopBits != serial.StopBits(1) {
		t.Errorf("StopBits = %v, want 1", mode.StopBits)
	}
}

func TestPortOptionsSerialModeInvalid(t *testing.T) {
	if _, err := (PortOptions{Parity: "Q"}).SerialMode(); err == nil {
		t.Error("SerialMode should fail for unsupported parity")
	}
}
