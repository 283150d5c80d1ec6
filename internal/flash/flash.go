// Package flash sequences device discovery, the bootloader reset and the
// image copy into one install operation.
package flash

import (
	"context"
	"fmt"
	"time"

	"github.com/koinslot/kyflash/internal/fetch"
	"github.com/koinslot/kyflash/internal/serialport"
	"github.com/koinslot/kyflash/internal/volume"
)

// Phase identifies a step of the install state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProbing
	PhaseLocatingSerial
	PhaseTriggering
	PhaseAwaitingVolume
	PhaseFetching
	PhaseWriting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseProbing:
		return "probing existing volume"
	case PhaseLocatingSerial:
		return "locating serial port"
	case PhaseTriggering:
		return "triggering bootloader"
	case PhaseAwaitingVolume:
		return "awaiting volume"
	case PhaseFetching:
		return "fetching image"
	case PhaseWriting:
		return "writing image"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// FailureKind classifies terminal install failures.
type FailureKind int

const (
	// NoDeviceFound: no bootloader volume and no matching serial port.
	NoDeviceFound FailureKind = iota
	// DeviceNotFoundAfterReset: reset sent, volume never became usable
	// within the timeout.
	DeviceNotFoundAfterReset
	// FetchFailed: image bytes could not be obtained; device untouched.
	FetchFailed
	// WriteFailed: I/O error copying the image; volume state undefined.
	WriteFailed
	// HostApiFailure: the OS device/volume API itself failed.
	HostApiFailure
	// Canceled: the caller canceled between phases.
	Canceled
	// VolumeNotMounted: a bootloader volume was attached before any
	// reset was sent but never got a mount point; the operator (or
	// their automounter) must mount it.
	VolumeNotMounted
)

func (k FailureKind) String() string {
	switch k {
	case NoDeviceFound:
		return "NoDeviceFound"
	case DeviceNotFoundAfterReset:
		return "DeviceNotFoundAfterReset"
	case FetchFailed:
		return "FetchFailed"
	case WriteFailed:
		return "WriteFailed"
	case HostApiFailure:
		return "HostApiFailure"
	case Canceled:
		return "Canceled"
	case VolumeNotMounted:
		return "VolumeNotMounted"
	}
	return "Unknown"
}

// Error is a terminal install failure.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Outcome is the terminal result of one install run.
type Outcome struct {
	BytesWritten int64
	Volume       string
	Firmware     string
	Duration     time.Duration
	Err          *Error
}

// Success reports whether the install completed.
func (o Outcome) Success() bool { return o.Err == nil }

// Level classifies events.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
)

// Event is one entry of the ordered install log: phase transitions,
// warnings and the final outcome.
type Event struct {
	Time    time.Time
	Phase   Phase
	Level   Level
	Message string
}

// SerialLocator finds a candidate board on the serial bus.
type SerialLocator interface {
	FindCandidate() (*serialport.Descriptor, error)
}

// Toucher sends the reset pulse. The returned error is advisory.
type Toucher interface {
	Touch(path string) error
}

// VolumeLocator finds the bootloader volume within a timeout.
type VolumeLocator interface {
	Find(ctx context.Context, timeout time.Duration) (*volume.Handle, error)
}

// Fetcher resolves an image reference to local bytes.
type Fetcher interface {
	Fetch(ctx context.Context, ref fetch.Reference) (*fetch.Image, error)
}

// Timings holds the orchestrator's timeouts and delays. The probe
// timeout is short because an already-present volume answers instantly;
// the wait timeout is long because USB re-enumeration after a reset is
// not.
type Timings struct {
	ProbeTimeout time.Duration
	WaitTimeout  time.Duration
	RetouchDelay time.Duration
	SettleDelay  time.Duration
}

// DefaultTimings returns the stock timing profile.
func DefaultTimings() Timings {
	return Timings{
		ProbeTimeout: 2 * time.Second,
		WaitTimeout:  10 * time.Second,
		RetouchDelay: 300 * time.Millisecond,
		SettleDelay:  3 * time.Second,
	}
}
