package serialport

import (
	"errors"
	"testing"

	"go.bug.st/serial/enumerator"
)

func fakeEnumerate(ports []*enumerator.PortDetails, err error) func() ([]*enumerator.PortDetails, error) {
	return func() ([]*enumerator.PortDetails, error) {
		return ports, err
	}
}

func TestFindCandidateMatchesVIDPID(t *testing.T) {
	l := NewLocator(Identity{VendorID: "2E8A", ProductID: "00C0"})
	l.enumerate = fakeEnumerate([]*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2e8a", PID: "00c0"},
	}, nil)

	d, err := l.FindCandidate()
	if err != nil {
		t.Fatalf("FindCandidate failed: %v", err)
	}
	if d == nil || d.Path != "/dev/ttyACM0" {
		t.Fatalf("expected /dev/ttyACM0, got %+v", d)
	}
}

func TestFindCandidateVIDOnlyWhenNoProductIDConfigured(t *testing.T) {
	l := NewLocator(Identity{VendorID: "2E8A"})
	l.enumerate = fakeEnumerate([]*enumerator.PortDetails{
		{Name: "COM7", IsUSB: true, VID: "2E8A", PID: "000A"},
	}, nil)

	d, err := l.FindCandidate()
	if err != nil {
		t.Fatalf("FindCandidate failed: %v", err)
	}
	if d == nil || d.Path != "COM7" {
		t.Fatalf("expected COM7, got %+v", d)
	}
}

func TestFindCandidateProductIDMismatch(t *testing.T) {
	l := NewLocator(Identity{VendorID: "2E8A", ProductID: "00C0"})
	l.enumerate = fakeEnumerate([]*enumerator.PortDetails{
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2E8A", PID: "000A"},
	}, nil)

	d, err := l.FindCandidate()
	if err != nil {
		t.Fatalf("FindCandidate failed: %v", err)
	}
	if d != nil {
		t.Fatalf("expected no candidate, got %+v", d)
	}
}

func TestFindCandidateMatchesVendorNameSubstring(t *testing.T) {
	l := NewLocator(Identity{VendorID: "2E8A", VendorName: "Raspberry Pi"})
	l.enumerate = fakeEnumerate([]*enumerator.PortDetails{
		{Name: "/dev/ttyACM2", IsUSB: true, VID: "1234", PID: "5678", Product: "RASPBERRY PI Pico"},
	}, nil)

	d, err := l.FindCandidate()
	if err != nil {
		t.Fatalf("FindCandidate failed: %v", err)
	}
	if d == nil || d.Path != "/dev/ttyACM2" {
		t.Fatalf("expected product-string match, got %+v", d)
	}
}

func TestFindCandidateNoMatchIsNotAnError(t *testing.T) {
	l := NewLocator(Identity{VendorID: "2E8A", VendorName: "Raspberry Pi"})
	l.enumerate = fakeEnumerate([]*enumerator.PortDetails{
		{Name: "/dev/ttyS0", IsUSB: false},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FTDI"},
	}, nil)

	d, err := l.FindCandidate()
	if err != nil {
		t.Fatalf("expected nil error on no match, got %v", err)
	}
	if d != nil {
		t.Fatalf("expected no candidate, got %+v", d)
	}
}

func TestFindCandidateEnumerationFailure(t *testing.T) {
	l := NewLocator(Identity{VendorID: "2E8A"})
	l.enumerate = fakeEnumerate(nil, errors.New("udev unavailable"))

	if _, err := l.FindCandidate(); err == nil {
		t.Fatal("expected error when enumeration fails")
	}
}
