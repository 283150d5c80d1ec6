package serialport

import (
	"fmt"

	"go.bug.st/serial"
)

// TouchBaud is the sentinel baud rate that RP2040 application firmware
// interprets as "reboot into the UF2 bootloader".
const TouchBaud = 1200

// Toucher sends the bootloader reset pulse: open the port at TouchBaud,
// close it again. No data is exchanged and the device sends no
// acknowledgment; the only confirmation is the bootloader volume showing
// up later.
type Toucher struct {
	open func(path string, mode *serial.Mode) (serial.Port, error)
}

// NewToucher creates a Toucher using the host serial stack.
func NewToucher() *Toucher {
	return &Toucher{open: serial.Open}
}

// Touch performs one open/close pulse at TouchBaud. The returned error is
// advisory only: a device that honors the reset disconnects from the bus
// mid-operation, which surfaces here as an I/O error indistinguishable
// from a real one. Callers log it as a warning and move on.
func (t *Toucher) Touch(path string) error {
	mode := &serial.Mode{
		BaudRate: TouchBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := t.open(path, mode)
	if err != nil {
		return fmt.Errorf("opening %s at %d baud: %w", path, TouchBaud, err)
	}
	if err := port.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
