package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/koinslot/kyflash/internal/app"
	"github.com/koinslot/kyflash/internal/store"
	"github.com/koinslot/kyflash/internal/ui"
)

type historyLoadedMsg struct {
	Records []store.FlashRecord
	Err     error
}

type HistoryPage struct {
	st      *store.Store
	records []store.FlashRecord
	err     error

	width, height int
}

func NewHistoryPage(st *store.Store) *HistoryPage {
	return &HistoryPage{st: st}
}

func (p *HistoryPage) Init() tea.Cmd {
	return p.load()
}

func (p *HistoryPage) load() tea.Cmd {
	st := p.st
	return func() tea.Msg {
		records, err := st.Flashes()
		return historyLoadedMsg{Records: records, Err: err}
	}
}

func (p *HistoryPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		p.records = msg.Records
		p.err = msg.Err
		return p, nil

	case installDoneMsg:
		// A flash just finished on the flash page; pick up its record.
		return p, p.load()

	case tea.KeyMsg:
		if msg.String() == "r" {
			return p, p.load()
		}
	}
	return p, nil
}

func (p *HistoryPage) View() string {
	var inner strings.Builder

	if p.err != nil {
		inner.WriteString(ui.ErrStyle.Render("Error: "+p.err.Error()) + "\n\n")
	}

	if len(p.records) == 0 {
		inner.WriteString(ui.DimStyle.Render("No flashes yet."))
		return ui.Panel("History", inner.String(), p.width, 0, false)
	}

	// Newest first
	for i := len(p.records) - 1; i >= 0; i-- {
		r := p.records[i]
		badge := ui.SuccessBadge("OK")
		if !r.Success {
			badge = ui.FailureBadge(r.Failure)
		}
		inner.WriteString(fmt.Sprintf("%s  %-36s %s\n",
			badge, r.Firmware,
			ui.DimStyle.Render(r.Timestamp.Format("2006-01-02 15:04")+"  "+r.Duration)))
		if len(r.Warnings) > 0 {
			inner.WriteString("    " + ui.WarnStyle.Render(fmt.Sprintf("%d warning(s)", len(r.Warnings))) + "\n")
		}
	}

	return ui.Panel("History", inner.String(), p.width, 0, false)
}

func (p *HistoryPage) Name() string { return "History" }

func (p *HistoryPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

func (p *HistoryPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
