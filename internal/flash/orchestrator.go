package flash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/koinslot/kyflash/internal/fetch"
	"github.com/koinslot/kyflash/internal/volume"
)

// Orchestrator runs one install at a time. It is synchronous and
// blocking; callers that need responsiveness run Install on their own
// goroutine and consume the event stream. Each Orchestrator owns its
// state and shares nothing with other instances.
type Orchestrator struct {
	serial  SerialLocator
	toucher Toucher
	volumes VolumeLocator
	fetcher Fetcher
	timings Timings
	events  func(Event)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEvents installs a sink for the ordered install log. The sink is
// called from the goroutine running Install.
func WithEvents(fn func(Event)) Option {
	return func(o *Orchestrator) { o.events = fn }
}

// WithTimings overrides the default timing profile.
func WithTimings(t Timings) Option {
	return func(o *Orchestrator) { o.timings = t }
}

// New creates an Orchestrator over the given collaborators.
func New(serial SerialLocator, toucher Toucher, volumes VolumeLocator, fetcher Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		serial:  serial,
		toucher: toucher,
		volumes: volumes,
		fetcher: fetcher,
		timings: DefaultTimings(),
		events:  func(Event) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Install drives one full install run and returns its terminal outcome.
// Cancellation is honored between phases and inside the volume waits; an
// in-flight touch or write is never interrupted.
func (o *Orchestrator) Install(ctx context.Context, ref fetch.Reference) Outcome {
	start := time.Now()
	out := o.install(ctx, ref)
	out.Firmware = ref.FileName
	out.Duration = time.Since(start)

	if out.Err != nil {
		o.emit(PhaseDone, LevelWarn, fmt.Sprintf("install failed: %v", out.Err))
	} else {
		o.emit(PhaseDone, LevelInfo, fmt.Sprintf("installed %s (%d bytes) to %s", ref.FileName, out.BytesWritten, out.Volume))
	}
	return out
}

func (o *Orchestrator) install(ctx context.Context, ref fetch.Reference) Outcome {
	o.emit(PhaseProbing, LevelInfo, "checking for an existing bootloader volume")
	vol, err := o.volumes.Find(ctx, o.timings.ProbeTimeout)
	if err != nil {
		return fail(classifyVolumeErr(err, false), err)
	}

	if vol == nil {
		// Not in bootloader mode yet: find the running application
		// firmware on the serial bus and reset it.
		o.emit(PhaseLocatingSerial, LevelInfo, "no volume present, scanning serial ports")
		dev, err := o.serial.FindCandidate()
		if err != nil {
			return fail(HostApiFailure, err)
		}
		if dev == nil {
			return fail(NoDeviceFound, errors.New("no bootloader volume and no matching serial device"))
		}
		o.emit(PhaseLocatingSerial, LevelInfo, fmt.Sprintf("candidate %s (VID %s PID %s)", dev.Path, dev.VID, dev.PID))

		if out, ok := o.trigger(ctx, dev.Path); !ok {
			return out
		}

		o.emit(PhaseAwaitingVolume, LevelInfo, "waiting for the bootloader volume")
		vol, err = o.volumes.Find(ctx, o.timings.WaitTimeout)
		if err != nil {
			return fail(classifyVolumeErr(err, true), err)
		}
		if vol == nil {
			return fail(DeviceNotFoundAfterReset, errors.New("bootloader volume did not appear after reset"))
		}
	}
	o.emit(PhaseAwaitingVolume, LevelInfo, "bootloader volume at "+vol.Root)

	if err := ctx.Err(); err != nil {
		return fail(Canceled, err)
	}

	o.emit(PhaseFetching, LevelInfo, "fetching "+ref.Source)
	img, err := o.fetcher.Fetch(ctx, ref)
	if err != nil {
		return fail(FetchFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return fail(Canceled, err)
	}

	// From here the handle is committed: if the volume vanished in the
	// meantime the write fails rather than silently re-discovering a
	// possibly different device.
	o.emit(PhaseWriting, LevelInfo, fmt.Sprintf("copying %s to %s", ref.FileName, vol.Root))
	n, err := writeImage(img, vol, ref.FileName)
	if err != nil {
		return fail(WriteFailed, err)
	}

	return Outcome{BytesWritten: n, Volume: vol.Root}
}

// trigger runs the double-touch sequence. Touch errors are downgraded to
// warnings: a board that honors the reset drops off the bus mid-touch,
// which is indistinguishable from a genuine I/O error. Only cancellation
// aborts here.
func (o *Orchestrator) trigger(ctx context.Context, path string) (Outcome, bool) {
	o.emit(PhaseTriggering, LevelInfo, "sending 1200 baud touch to "+path)
	if err := o.toucher.Touch(path); err != nil {
		o.emit(PhaseTriggering, LevelWarn, fmt.Sprintf("touch: %v (expected if the device reset)", err))
	}
	if err := o.sleep(ctx, o.timings.RetouchDelay); err != nil {
		return fail(Canceled, err), false
	}
	// A second pulse catches devices that miss a single one.
	if err := o.toucher.Touch(path); err != nil {
		o.emit(PhaseTriggering, LevelWarn, fmt.Sprintf("touch: %v (expected if the device reset)", err))
	}
	// Let the OS re-enumerate the device before polling for the volume.
	if err := o.sleep(ctx, o.timings.SettleDelay); err != nil {
		return fail(Canceled, err), false
	}
	return Outcome{}, true
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *Orchestrator) emit(phase Phase, level Level, msg string) {
	o.events(Event{Time: time.Now(), Phase: phase, Level: level, Message: msg})
}

func fail(kind FailureKind, err error) Outcome {
	return Outcome{Err: &Error{Kind: kind, Err: err}}
}

// classifyVolumeErr maps a volume search error to a failure kind. An
// unmounted volume after the reset means the device came back but never
// became usable; before any reset it is its own condition, since no
// reset was sent and the device was in fact found.
func classifyVolumeErr(err error, afterReset bool) FailureKind {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return Canceled
	case errors.Is(err, volume.ErrNotMounted):
		if afterReset {
			return DeviceNotFoundAfterReset
		}
		return VolumeNotMounted
	default:
		return HostApiFailure
	}
}

// writeImage copies the fetched bytes to the volume root under the
// target name. No sync: the bootloader consumes blocks as they arrive
// and detaches on the final one, so flushing is left to the OS.
func writeImage(img *fetch.Image, vol *volume.Handle, name string) (int64, error) {
	src, err := img.Open()
	if err != nil {
		return 0, fmt.Errorf("opening image: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(vol.Root, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", dstPath, err)
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("writing %s: %w", dstPath, err)
	}
	return n, nil
}
