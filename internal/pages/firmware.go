package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/koinslot/kyflash/internal/app"
	"github.com/koinslot/kyflash/internal/config"
	"github.com/koinslot/kyflash/internal/ui"
)

type FirmwarePage struct {
	cfg     *config.Config
	items   []app.FirmwareItem
	cursor  int
	loading bool
	err     error

	width, height int
}

func NewFirmwarePage(cfg *config.Config) *FirmwarePage {
	return &FirmwarePage{cfg: cfg}
}

func (p *FirmwarePage) Init() tea.Cmd {
	p.loading = true
	return app.LoadFirmware(p.cfg.Repos)
}

func (p *FirmwarePage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case app.FirmwareLoadedMsg:
		p.loading = false
		p.items = msg.Items
		p.err = msg.Err
		if p.cursor >= len(p.items) {
			p.cursor = 0
		}
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "down", "j":
			if p.cursor < len(p.items)-1 {
				p.cursor++
			}
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "enter":
			if p.cursor < len(p.items) {
				it := p.items[p.cursor]
				return p, func() tea.Msg {
					return app.FirmwareSelectedMsg{
						Name:   it.Name,
						Source: it.Source,
						Repo:   it.Repo,
						Tag:    it.Tag,
					}
				}
			}
		case "r":
			p.loading = true
			p.err = nil
			return p, app.LoadFirmware(p.cfg.Repos)
		}
	}
	return p, nil
}

func (p *FirmwarePage) View() string {
	var inner strings.Builder

	if p.loading {
		inner.WriteString(ui.DimStyle.Render("Fetching releases..."))
		return ui.Panel("Firmware", inner.String(), p.width, 0, false)
	}

	if p.err != nil {
		inner.WriteString(ui.ErrStyle.Render("Error: "+p.err.Error()) + "\n\n")
	}

	if len(p.items) == 0 {
		inner.WriteString(ui.DimStyle.Render("No firmware found. Check the configured repos and press r to retry."))
		return ui.Panel("Firmware", inner.String(), p.width, 0, false)
	}

	for i, it := range p.items {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.BoldStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%-36s %s", cursor, it.Name,
			ui.DimStyle.Render(fmt.Sprintf("%s %s  %s", it.Repo, it.Tag, formatSize(it.Size))))
		inner.WriteString(line)
		inner.WriteString("\n")
	}

	return ui.Panel("Firmware", inner.String(), p.width, 0, false)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func (p *FirmwarePage) Name() string { return "Firmware" }

func (p *FirmwarePage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (p *FirmwarePage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
