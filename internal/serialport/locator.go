package serialport

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Descriptor holds details about one attached serial device. Descriptors
// are rebuilt on every scan and must not be cached across scans; the bus
// can change between any two enumerations.
type Descriptor struct {
	Path    string
	VID     string
	PID     string
	Product string
}

// Identity describes what makes a serial device a flash candidate.
type Identity struct {
	// VendorID is the USB vendor ID as uppercase hex, e.g. "2E8A".
	VendorID string
	// ProductID optionally pins a product ID; empty matches any product
	// under VendorID.
	ProductID string
	// VendorName matches as a case-insensitive substring of the USB
	// product string.
	VendorName string
}

// Matches reports whether the descriptor satisfies the identity.
func (id Identity) Matches(d Descriptor) bool {
	if id.VendorID != "" && strings.EqualFold(d.VID, id.VendorID) {
		if id.ProductID == "" || strings.EqualFold(d.PID, id.ProductID) {
			return true
		}
	}
	if id.VendorName != "" && d.Product != "" {
		if strings.Contains(strings.ToLower(d.Product), strings.ToLower(id.VendorName)) {
			return true
		}
	}
	return false
}

// Locator finds a candidate board among attached serial devices.
type Locator struct {
	identity  Identity
	enumerate func() ([]*enumerator.PortDetails, error)
}

// NewLocator creates a Locator for the given identity.
func NewLocator(id Identity) *Locator {
	return &Locator{
		identity:  id,
		enumerate: enumerator.GetDetailedPortsList,
	}
}

// FindCandidate enumerates attached serial devices and returns the first
// one matching the identity. No match is (nil, nil) — an expected
// outcome, not a fault. Enumeration order is platform-defined; callers
// must not rely on which of several matching devices is returned. A
// non-nil error means the host enumeration API itself failed.
func (l *Locator) FindCandidate() (*Descriptor, error) {
	ports, err := l.enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}

	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		d := Descriptor{
			Path:    p.Name,
			VID:     p.VID,
			PID:     p.PID,
			Product: p.Product,
		}
		if l.identity.Matches(d) {
			return &d, nil
		}
	}
	return nil, nil
}
