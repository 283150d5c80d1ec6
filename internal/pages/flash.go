package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"

	"github.com/koinslot/kyflash/internal/app"
	"github.com/koinslot/kyflash/internal/fetch"
	"github.com/koinslot/kyflash/internal/flash"
	"github.com/koinslot/kyflash/internal/store"
	"github.com/koinslot/kyflash/internal/ui"
)

// InstallFunc runs one install and delivers its event stream to the
// sink. The page runs it on its own goroutine so the UI stays
// responsive through the multi-second polling sequence.
type InstallFunc func(ctx context.Context, ref fetch.Reference, events func(flash.Event)) flash.Outcome

type flashState int

const (
	flashStateIdle flashState = iota
	flashStateRunning
	flashStateDone
)

// installEventMsg carries one orchestrator event into the UI loop.
type installEventMsg struct {
	Event flash.Event
}

// installDoneMsg carries the terminal outcome of an install run.
type installDoneMsg struct {
	Outcome flash.Outcome
}

type FlashPage struct {
	st      *store.Store
	install InstallFunc

	firmwareName   string
	firmwareSource string

	state    flashState
	output   strings.Builder
	viewport viewport.Model
	warnings []string
	outcome  flash.Outcome
	msgs     chan tea.Msg
	cancel   context.CancelFunc
	started  time.Time

	width, height int
	message       string
}

func NewFlashPage(st *store.Store, install InstallFunc) *FlashPage {
	return &FlashPage{
		st:       st,
		install:  install,
		viewport: viewport.New(0, 0),
	}
}

func (p *FlashPage) Init() tea.Cmd { return nil }

func (p *FlashPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case app.FirmwareSelectedMsg:
		p.firmwareName = msg.Name
		p.firmwareSource = msg.Source
		if p.state == flashStateDone {
			p.state = flashStateIdle
			p.output.Reset()
			p.updateViewportContent()
		}
		return p, nil

	case installEventMsg:
		if p.state != flashStateRunning {
			return p, nil
		}
		e := msg.Event
		if e.Level == flash.LevelWarn {
			p.warnings = append(p.warnings, e.Message)
			p.output.WriteString(ui.WarnStyle.Render("warning: "+e.Message) + "\n")
		} else {
			p.output.WriteString(fmt.Sprintf("[%s] %s\n", e.Phase, e.Message))
		}
		p.updateViewportContent()
		p.viewport.GotoBottom()
		return p, p.listen()

	case installDoneMsg:
		if p.state != flashStateRunning {
			return p, nil
		}
		p.state = flashStateDone
		p.outcome = msg.Outcome
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
		p.updateViewportContent()
		p.viewport.GotoBottom()

		if p.st != nil {
			rec := store.FlashRecord{
				Firmware:  p.firmwareName,
				Source:    p.firmwareSource,
				Volume:    msg.Outcome.Volume,
				Bytes:     msg.Outcome.BytesWritten,
				Success:   msg.Outcome.Success(),
				Warnings:  p.warnings,
				Duration:  msg.Outcome.Duration.String(),
				Timestamp: p.started,
			}
			if msg.Outcome.Err != nil {
				rec.Failure = msg.Outcome.Err.Kind.String()
			}
			p.st.AddFlash(rec)
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *FlashPage) handleKey(msg tea.KeyMsg) (app.Page, tea.Cmd) {
	switch msg.String() {
	case "f":
		if p.state != flashStateRunning {
			return p, p.startInstall()
		}
	case "esc":
		if p.state == flashStateRunning && p.cancel != nil {
			// Cooperative: the orchestrator notices between phases.
			p.cancel()
			p.output.WriteString("canceling...\n")
			p.updateViewportContent()
			return p, nil
		}
		if p.state == flashStateDone {
			p.state = flashStateIdle
			p.output.Reset()
			p.updateViewportContent()
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *FlashPage) startInstall() tea.Cmd {
	if p.firmwareSource == "" {
		p.message = "Select a firmware first ([p] from the sidebar)"
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	ch := make(chan tea.Msg, 64)
	p.msgs = ch

	p.state = flashStateRunning
	p.message = ""
	p.warnings = nil
	p.output.Reset()
	p.started = time.Now()
	p.output.WriteString("Installing " + p.firmwareName + "...\n\n")
	p.updateViewportContent()

	ref := fetch.Reference{Source: p.firmwareSource, FileName: p.firmwareName}
	install := p.install
	go func() {
		out := install(ctx, ref, func(e flash.Event) {
			ch <- installEventMsg{Event: e}
		})
		ch <- installDoneMsg{Outcome: out}
	}()

	return p.listen()
}

// listen blocks on the install channel and resubscribes after every
// event until the done message arrives.
func (p *FlashPage) listen() tea.Cmd {
	ch := p.msgs
	return func() tea.Msg { return <-ch }
}

func (p *FlashPage) View() string {
	var b strings.Builder
	b.WriteString(ui.Title("Flash"))
	b.WriteString("\n")

	firmware := p.firmwareName
	if firmware == "" {
		firmware = ui.DimStyle.Render("(none selected)")
	}
	b.WriteString("Firmware  " + firmware + "\n")

	switch p.state {
	case flashStateRunning:
		b.WriteString("Status    installing...\n")
	case flashStateDone:
		if p.outcome.Success() {
			b.WriteString("Status    " + ui.SuccessBadge("INSTALLED") +
				ui.DimStyle.Render(fmt.Sprintf("  %d bytes in %s", p.outcome.BytesWritten, p.outcome.Duration.Round(time.Millisecond))) + "\n")
		} else {
			b.WriteString("Status    " + ui.FailureBadge(p.outcome.Err.Kind.String()) + "\n")
		}
	default:
		b.WriteString("Status    " + ui.DimStyle.Render("idle") + "\n")
	}

	if p.message != "" {
		b.WriteString("\n" + ui.WarnStyle.Render(p.message) + "\n")
	}

	header := b.String()
	headerHeight := lipgloss.Height(header)
	outputHeight := p.height - headerHeight - 1
	if outputHeight < 5 {
		outputHeight = 5
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, p.viewOutput(p.width, outputHeight))
}

func (p *FlashPage) viewOutput(width, height int) string {
	contentWidth := width - 3
	contentHeight := height - 2
	if contentWidth < 10 {
		contentWidth = 10
	}
	if contentHeight < 3 {
		contentHeight = 3
	}

	oldWidth := p.viewport.Width
	p.viewport.Width = contentWidth
	p.viewport.Height = contentHeight
	if oldWidth != contentWidth && p.output.Len() > 0 {
		p.updateViewportContent()
	}

	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderTop(true).
		BorderForeground(ui.Surface).
		PaddingLeft(1)

	if p.output.Len() == 0 {
		return style.Render(ui.DimStyle.Render("Install log will appear here..."))
	}
	return style.Render(p.viewport.View())
}

func (p *FlashPage) updateViewportContent() {
	if p.viewport.Width > 0 {
		// Hard wrap handles long volume paths and URLs without spaces
		wrapped := wrap.String(p.output.String(), p.viewport.Width)
		lines := strings.Split(wrapped, "\n")
		for i, line := range lines {
			if ansi.PrintableRuneWidth(line) > p.viewport.Width {
				lines[i] = truncate.String(line, uint(p.viewport.Width))
			}
		}
		p.viewport.SetContent(strings.Join(lines, "\n"))
	} else {
		p.viewport.SetContent(p.output.String())
	}
}

func (p *FlashPage) Name() string { return "Flash" }

func (p *FlashPage) ShortHelp() []key.Binding {
	if p.state == flashStateRunning {
		return []key.Binding{
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "flash")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	}
}

func (p *FlashPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
