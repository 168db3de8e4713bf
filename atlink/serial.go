package atlink

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// PortOptions describes how to open the physical serial device the AT
// radio is attached to.
type PortOptions struct {
	Device      string
	BaudRate    int
	ReadTimeout time.Duration
}

// DefaultPortOptions mirrors the values hoppy's config.rs hard-codes for
// its USB-attached radios.
func DefaultPortOptions(device string) PortOptions {
	return PortOptions{
		Device:      device,
		BaudRate:    115200,
		ReadTimeout: 500 * time.Millisecond,
	}
}

// OpenPort opens the underlying serial device. The returned *serial.Port
// satisfies io.ReadWriter and is safe to pass to Open: tarm/serial
// serializes concurrent Read/Write internally against the same fd.
func OpenPort(opts PortOptions) (*serial.Port, error) {
	cfg := &serial.Config{
		Name:        opts.Device,
		Baud:        opts.BaudRate,
		ReadTimeout: opts.ReadTimeout,
	}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("atlink: opening %s: %w", opts.Device, err)
	}
	return port, nil
}
