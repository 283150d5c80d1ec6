//go:build linux

package volume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultLabelDir = "/dev/disk/by-label"
const defaultMountsPath = "/proc/mounts"

// linuxLocator is the existing-then-event-driven strategy. Phase one
// synchronously scans the by-label symlinks udev maintains, catching a
// board already in bootloader mode with zero latency. Phase two watches
// the directory for new symlinks; inotify does not replay entries that
// existed before the watch, which is exactly why phase one runs first.
type linuxLocator struct {
	cfg        Config
	labelDir   string
	mountsPath string
}

// New returns the Linux drive locator.
func New(cfg Config) Locator {
	return &linuxLocator{
		cfg:        cfg,
		labelDir:   defaultLabelDir,
		mountsPath: defaultMountsPath,
	}
}

func (l *linuxLocator) Find(ctx context.Context, timeout time.Duration) (*Handle, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	node, err := l.scan()
	if err != nil {
		return nil, err
	}
	if node == "" {
		node, err = l.watch(ctx, deadline.C)
		if err != nil {
			return nil, err
		}
	}
	if node == "" {
		return nil, nil
	}

	// The label is right; now give whoever mounts removable media (the
	// desktop automounter, usually) until the deadline to mount it.
	ticker := time.NewTicker(l.cfg.interval())
	defer ticker.Stop()
	for {
		if mp, ok, err := l.resolveMount(node); err != nil {
			return nil, err
		} else if ok {
			return &Handle{Root: mp, Device: node, Label: l.cfg.Label}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("%w: %s", ErrNotMounted, node)
		case <-ticker.C:
		}
	}
}

// scan checks the by-label directory for an existing match and returns
// the resolved device node, or "" when none is present. A missing
// directory is not an error: udev only creates it once a labeled
// filesystem is attached.
func (l *linuxLocator) scan() (string, error) {
	entries, err := os.ReadDir(l.labelDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("scanning %s: %w", l.labelDir, err)
	}
	for _, e := range entries {
		if e.Name() == l.cfg.Label {
			return l.resolveNode(filepath.Join(l.labelDir, e.Name()))
		}
	}
	return "", nil
}

// watch waits for the label symlink to appear, re-scanning every interval
// as a safety net for events raced while the watch was being established.
func (l *linuxLocator) watch(ctx context.Context, deadline <-chan time.Time) (string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("starting device watch: %w", err)
	}
	defer watcher.Close()

	// The directory may not exist yet; keep retrying from the ticker.
	watching := watcher.Add(l.labelDir) == nil

	ticker := time.NewTicker(l.cfg.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline:
			return "", nil
		case ev := <-watcher.Events:
			if ev.Has(fsnotify.Create) && filepath.Base(ev.Name) == l.cfg.Label {
				node, err := l.resolveNode(ev.Name)
				if err != nil {
					return "", err
				}
				if node != "" {
					return node, nil
				}
				// Dangling link: the device unplugged again between the
				// event and the resolve. Keep waiting, it may come back
				// within the deadline.
			}
		case err := <-watcher.Errors:
			return "", fmt.Errorf("device watch: %w", err)
		case <-ticker.C:
			if !watching {
				watching = watcher.Add(l.labelDir) == nil
			}
			node, err := l.scan()
			if err != nil || node != "" {
				return node, err
			}
		}
	}
}

func (l *linuxLocator) resolveNode(link string) (string, error) {
	node, err := filepath.EvalSymlinks(link)
	if err != nil {
		// The device can unplug between the event and the resolve;
		// a dangling link is "not found", not a host failure.
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("resolving %s: %w", link, err)
	}
	return node, nil
}

// resolveMount maps a block device node to its current mount point by
// reading the live mount table. It never mounts anything itself.
func (l *linuxLocator) resolveMount(node string) (string, bool, error) {
	f, err := os.Open(l.mountsPath)
	if err != nil {
		return "", false, fmt.Errorf("reading mount table: %w", err)
	}
	defer f.Close()
	mp, ok := findMount(f, node)
	return mp, ok, nil
}
