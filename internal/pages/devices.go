package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/koinslot/kyflash/internal/app"
	"github.com/koinslot/kyflash/internal/config"
	"github.com/koinslot/kyflash/internal/serialport"
	"github.com/koinslot/kyflash/internal/ui"
	"github.com/koinslot/kyflash/internal/volume"
)

// devicesMsg carries one scan result: the attached serial ports plus
// the bootloader volume if one is currently mounted.
type devicesMsg struct {
	Ports   []serialport.Descriptor
	Volume  *volume.Handle
	PortErr error
}

type DevicesPage struct {
	cfg    *config.Config
	scan   func() ([]serialport.Descriptor, error)
	locate func(volume.Config) volume.Locator

	ports    []serialport.Descriptor
	vol      *volume.Handle
	scanning bool
	err      error

	width, height int
}

func NewDevicesPage(cfg *config.Config) *DevicesPage {
	return &DevicesPage{
		cfg:    cfg,
		scan:   serialport.List,
		locate: volume.New,
	}
}

func (p *DevicesPage) Init() tea.Cmd {
	p.scanning = true
	return p.runScan()
}

// identity rebuilds the candidate signature from the live config, so
// settings edits apply on the next rescan.
func (p *DevicesPage) identity() serialport.Identity {
	return serialport.Identity{
		VendorID:   p.cfg.VendorID,
		ProductID:  p.cfg.ProductID,
		VendorName: p.cfg.VendorName,
	}
}

// probe does a one-shot bootloader volume search with the configured
// timings.
func (p *DevicesPage) probe() (*volume.Handle, error) {
	cfg := p.cfg
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ProbeTimeout()+500*time.Millisecond)
	defer cancel()

	loc := p.locate(volume.Config{
		Label:        cfg.VolumeLabel,
		MarkerFile:   cfg.MarkerFile,
		PollInterval: cfg.PollInterval(),
	})
	return loc.Find(ctx, cfg.ProbeTimeout())
}

func (p *DevicesPage) runScan() tea.Cmd {
	scan, probe := p.scan, p.probe
	return func() tea.Msg {
		ports, err := scan()
		// Volume probe errors just mean no bootloader drive right now
		vol, _ := probe()
		return devicesMsg{Ports: ports, Volume: vol, PortErr: err}
	}
}

func (p *DevicesPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case devicesMsg:
		p.scanning = false
		p.ports = msg.Ports
		p.vol = msg.Volume
		p.err = msg.PortErr
		return p, nil

	case tea.KeyMsg:
		if msg.String() == "r" && !p.scanning {
			p.scanning = true
			return p, p.runScan()
		}
	}
	return p, nil
}

func (p *DevicesPage) View() string {
	var inner strings.Builder

	if p.scanning {
		inner.WriteString(ui.DimStyle.Render("Scanning..."))
		return ui.Panel("Devices", inner.String(), p.width, 0, false)
	}

	if p.err != nil {
		inner.WriteString(ui.ErrStyle.Render("Error: "+p.err.Error()) + "\n\n")
	}

	identity := p.identity()
	inner.WriteString(ui.BoldStyle.Render("Serial ports") + "\n")
	if len(p.ports) == 0 {
		inner.WriteString(ui.DimStyle.Render("  none attached") + "\n")
	}
	for _, d := range p.ports {
		marker := "  "
		if identity.Matches(d) {
			marker = ui.SuccessBadge("●") + " "
		}
		product := d.Product
		if product == "" {
			product = ui.DimStyle.Render("(unknown)")
		}
		inner.WriteString(fmt.Sprintf("%s%-16s %s  %s\n",
			marker, d.Path, ui.DimStyle.Render(d.VID+":"+d.PID), product))
	}

	inner.WriteString("\n" + ui.BoldStyle.Render("Bootloader volume") + "\n")
	if p.vol == nil {
		inner.WriteString(ui.DimStyle.Render("  not mounted") + "\n")
	} else {
		inner.WriteString(fmt.Sprintf("  %s  %s\n", p.vol.Root, ui.DimStyle.Render(p.vol.Label)))
	}

	return ui.Panel("Devices", inner.String(), p.width, 0, false)
}

func (p *DevicesPage) Name() string { return "Devices" }

func (p *DevicesPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
	}
}

func (p *DevicesPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
