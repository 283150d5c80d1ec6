package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koinslot/kyflash/internal/app"
	"github.com/koinslot/kyflash/internal/fetch"
	"github.com/koinslot/kyflash/internal/flash"
	"github.com/koinslot/kyflash/internal/store"
)

// fakeInstall emits a scripted event sequence and returns a fixed
// outcome. It records the reference it was invoked with.
type fakeInstall struct {
	events  []flash.Event
	outcome flash.Outcome
	calls   []fetch.Reference
	ctxs    []context.Context
}

func (f *fakeInstall) run(ctx context.Context, ref fetch.Reference, sink func(flash.Event)) flash.Outcome {
	f.calls = append(f.calls, ref)
	f.ctxs = append(f.ctxs, ctx)
	for _, e := range f.events {
		sink(e)
	}
	return f.outcome
}

// drain executes the listen command loop until the done message
// arrives, feeding every message back into the page.
func drain(t *testing.T, p *FlashPage, cmd tea.Cmd) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if cmd == nil {
			t.Fatal("command chain ended before done message")
		}
		msg := cmd()
		var page app.Page
		page, cmd = p.Update(msg)
		p = page.(*FlashPage)
		if _, done := msg.(installDoneMsg); done {
			return
		}
	}
	t.Fatal("done message never arrived")
}

func selectFirmware(p *FlashPage) {
	p.Update(app.FirmwareSelectedMsg{Name: "kywy.uf2", Source: "https://example.com/kywy.uf2"})
}

func TestFlashPageRequiresFirmware(t *testing.T) {
	fake := &fakeInstall{}
	p := NewFlashPage(nil, fake.run)

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if cmd != nil {
		t.Fatal("expected no command without a selected firmware")
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no install calls, got %d", len(fake.calls))
	}
	if p.message == "" {
		t.Fatal("expected a hint message")
	}
}

func TestFlashPageRunsInstall(t *testing.T) {
	fake := &fakeInstall{
		events: []flash.Event{
			{Phase: flash.PhaseProbing, Level: flash.LevelInfo, Message: "checking for mounted volume"},
			{Phase: flash.PhaseWriting, Level: flash.LevelInfo, Message: "writing firmware"},
		},
		outcome: flash.Outcome{BytesWritten: 1024, Volume: "/media/RPI-RP2", Duration: time.Second},
	}
	p := NewFlashPage(nil, fake.run)
	selectFirmware(p)

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if cmd == nil {
		t.Fatal("expected a listen command")
	}
	if p.state != flashStateRunning {
		t.Fatalf("expected running state, got %d", p.state)
	}
	drain(t, p, cmd)

	if p.state != flashStateDone {
		t.Fatalf("expected done state, got %d", p.state)
	}
	if !p.outcome.Success() {
		t.Fatalf("expected success, got %v", p.outcome.Err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 install call, got %d", len(fake.calls))
	}
	if fake.calls[0].Source != "https://example.com/kywy.uf2" {
		t.Fatalf("unexpected source %q", fake.calls[0].Source)
	}
	out := p.output.String()
	if !strings.Contains(out, "writing firmware") {
		t.Fatalf("expected install log in output, got %q", out)
	}
}

func TestFlashPageCollectsWarnings(t *testing.T) {
	fake := &fakeInstall{
		events: []flash.Event{
			{Phase: flash.PhaseTriggering, Level: flash.LevelWarn, Message: "touch failed: port busy"},
		},
		outcome: flash.Outcome{BytesWritten: 64, Duration: time.Second},
	}
	p := NewFlashPage(nil, fake.run)
	selectFirmware(p)

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	drain(t, p, cmd)

	if len(p.warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(p.warnings))
	}
	if !strings.Contains(p.output.String(), "touch failed") {
		t.Fatal("expected warning in output log")
	}
}

func TestFlashPageRecordsHistory(t *testing.T) {
	st := store.New(t.TempDir())
	fake := &fakeInstall{
		outcome: flash.Outcome{
			Err: &flash.Error{Kind: flash.DeviceNotFoundAfterReset},
		},
	}
	p := NewFlashPage(st, fake.run)
	selectFirmware(p)

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	drain(t, p, cmd)

	records, err := st.Flashes()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Success {
		t.Fatal("expected failed record")
	}
	if r.Failure != "DeviceNotFoundAfterReset" {
		t.Fatalf("unexpected failure kind %q", r.Failure)
	}
	if r.Firmware != "kywy.uf2" {
		t.Fatalf("unexpected firmware %q", r.Firmware)
	}
}

func TestFlashPageEscCancelsRun(t *testing.T) {
	ctxCh := make(chan context.Context, 1)
	install := func(ctx context.Context, ref fetch.Reference, sink func(flash.Event)) flash.Outcome {
		ctxCh <- ctx
		<-ctx.Done()
		return flash.Outcome{Err: &flash.Error{Kind: flash.Canceled, Err: ctx.Err()}}
	}
	p := NewFlashPage(nil, install)
	selectFirmware(p)

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if cmd == nil {
		t.Fatal("expected a listen command")
	}
	var ctx context.Context
	select {
	case ctx = <-ctxCh:
	case <-time.After(time.Second):
		t.Fatal("install never started")
	}

	p.Update(tea.KeyMsg{Type: tea.KeyEsc})

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected install context to be canceled")
	}

	drain(t, p, cmd)
	if p.outcome.Success() {
		t.Fatal("expected canceled outcome")
	}
	if p.outcome.Err.Kind != flash.Canceled {
		t.Fatalf("unexpected failure kind %s", p.outcome.Err.Kind)
	}
}

func TestFlashPageIgnoresStrayEvents(t *testing.T) {
	p := NewFlashPage(nil, (&fakeInstall{}).run)

	// Events from a finished run must not disturb the idle page.
	page, cmd := p.Update(installEventMsg{Event: flash.Event{Message: "late"}})
	if cmd != nil {
		t.Fatal("expected no resubscribe while idle")
	}
	p = page.(*FlashPage)
	if p.output.Len() != 0 {
		t.Fatal("expected no output while idle")
	}
}
