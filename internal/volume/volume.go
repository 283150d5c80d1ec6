// Package volume locates the mass-storage volume an RP2040-class board
// exposes while its UF2 bootloader is active. One strategy per host
// platform, selected at build time, all behind the same Locator contract.
package volume

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotMounted reports a block device that carries the bootloader label
// but has no mount point. The volume is present yet unusable until the
// operator (or their desktop environment) mounts it; kyflash never mounts
// devices itself.
var ErrNotMounted = errors.New("bootloader volume attached but not mounted")

// Handle locates one bootloader volume. It is valid only for the install
// run that discovered it: the device can unplug at any moment, so a
// handle is re-discovered per run and never reused.
type Handle struct {
	// Root is the writable directory: a drive root on Windows, a mount
	// point elsewhere.
	Root string
	// Device is the block device node when known (Linux only).
	Device string
	// Label is the volume label that matched, when matched by label.
	Label string
}

// Config describes the bootloader volume signature and scan cadence.
type Config struct {
	// Label is the bootloader volume label, e.g. "RPI-RP2".
	Label string
	// MarkerFile names a file whose presence at a volume root also
	// identifies the bootloader, used as a fallback when no label is
	// visible, e.g. "INFO_UF2.TXT".
	MarkerFile string
	// PollInterval is the rescan cadence. Zero means 500ms.
	PollInterval time.Duration
}

func (c Config) interval() time.Duration {
	if c.PollInterval <= 0 {
		return 500 * time.Millisecond
	}
	return c.PollInterval
}

// matches reports whether a scanned volume carries the bootloader
// signature: label first, marker file as the fallback.
func (c Config) matches(h Handle) bool {
	if c.Label != "" && h.Label != "" {
		if strings.Contains(strings.ToLower(h.Label), strings.ToLower(c.Label)) {
			return true
		}
	}
	if c.MarkerFile != "" && h.Root != "" {
		if _, err := os.Stat(filepath.Join(h.Root, c.MarkerFile)); err == nil {
			return true
		}
	}
	return false
}

// Locator finds a bootloader volume within a bounded timeout.
type Locator interface {
	// Find returns a handle as soon as a matching volume is visible, or
	// (nil, nil) once the timeout elapses without a match. A non-nil
	// error means the host volume API failed (or, wrapped ErrNotMounted,
	// that a matching device never got a mount point).
	Find(ctx context.Context, timeout time.Duration) (*Handle, error)
}
