package pages

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koinslot/kyflash/internal/config"
	"github.com/koinslot/kyflash/internal/serialport"
	"github.com/koinslot/kyflash/internal/volume"
)

// staticLocator answers every Find with a fixed handle and records the
// timeout it was given.
type staticLocator struct {
	handle  *volume.Handle
	timeout *time.Duration
}

func (l staticLocator) Find(ctx context.Context, timeout time.Duration) (*volume.Handle, error) {
	if l.timeout != nil {
		*l.timeout = timeout
	}
	return l.handle, nil
}

func newTestDevicesPage(cfg *config.Config, handle *volume.Handle) *DevicesPage {
	p := NewDevicesPage(cfg)
	p.scan = func() ([]serialport.Descriptor, error) { return nil, nil }
	p.locate = func(volume.Config) volume.Locator { return staticLocator{handle: handle} }
	return p
}

func TestDevicesPageMarksCandidates(t *testing.T) {
	cfg := config.Defaults()
	p := newTestDevicesPage(&cfg, nil)
	p.scan = func() ([]serialport.Descriptor, error) {
		return []serialport.Descriptor{
			{Path: "/dev/ttyACM0", VID: "2E8A", PID: "00C0", Product: "Kywy"},
			{Path: "/dev/ttyUSB0", VID: "0403", PID: "6001", Product: "FT232R"},
		}, nil
	}
	p.SetSize(80, 24)

	p.Update(p.Init()())

	view := p.View()
	if !strings.Contains(view, "/dev/ttyACM0") || !strings.Contains(view, "/dev/ttyUSB0") {
		t.Fatalf("expected both ports in view, got %q", view)
	}
	if !strings.Contains(view, "not mounted") {
		t.Fatalf("expected no bootloader volume, got %q", view)
	}
}

func TestDevicesPageShowsVolume(t *testing.T) {
	cfg := config.Defaults()
	p := newTestDevicesPage(&cfg, &volume.Handle{Root: "/media/RPI-RP2", Label: "RPI-RP2"})
	p.SetSize(80, 24)

	p.Update(p.Init()())

	view := p.View()
	if !strings.Contains(view, "/media/RPI-RP2") {
		t.Fatalf("expected volume root in view, got %q", view)
	}
	if !strings.Contains(view, "none attached") {
		t.Fatalf("expected empty port list, got %q", view)
	}
}

func TestDevicesPageScanError(t *testing.T) {
	cfg := config.Defaults()
	p := newTestDevicesPage(&cfg, nil)
	p.scan = func() ([]serialport.Descriptor, error) {
		return nil, errors.New("enumeration failed")
	}
	p.SetSize(80, 24)

	p.Update(p.Init()())

	if !strings.Contains(p.View(), "enumeration failed") {
		t.Fatal("expected scan error in view")
	}
}

func TestDevicesPageRescan(t *testing.T) {
	cfg := config.Defaults()
	calls := 0
	p := newTestDevicesPage(&cfg, nil)
	p.scan = func() ([]serialport.Descriptor, error) {
		calls++
		return nil, nil
	}

	p.Update(p.Init()())
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("expected a rescan command")
	}
	p.Update(cmd())

	if calls != 2 {
		t.Fatalf("expected 2 scans, got %d", calls)
	}
}

func TestDevicesProbeUsesConfiguredTimings(t *testing.T) {
	cfg := config.Defaults()
	cfg.ProbeTimeoutMS = 1234
	cfg.PollIntervalMS = 77
	cfg.VolumeLabel = "NICENANO"

	var gotCfg volume.Config
	var gotTimeout time.Duration
	p := NewDevicesPage(&cfg)
	p.scan = func() ([]serialport.Descriptor, error) { return nil, nil }
	p.locate = func(c volume.Config) volume.Locator {
		gotCfg = c
		return staticLocator{timeout: &gotTimeout}
	}

	p.Update(p.Init()())

	if gotCfg.Label != "NICENANO" {
		t.Errorf("expected configured label, got %q", gotCfg.Label)
	}
	if gotCfg.PollInterval != 77*time.Millisecond {
		t.Errorf("expected 77ms poll interval, got %v", gotCfg.PollInterval)
	}
	if gotTimeout != 1234*time.Millisecond {
		t.Errorf("expected 1234ms probe timeout, got %v", gotTimeout)
	}

	// A settings edit applies on the next rescan, no restart needed.
	cfg.ProbeTimeoutMS = 50
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	p.Update(cmd())
	if gotTimeout != 50*time.Millisecond {
		t.Errorf("expected edited 50ms probe timeout, got %v", gotTimeout)
	}
}
