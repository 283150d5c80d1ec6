//go:build darwin

package volume

import (
	"fmt"
	"os"
	"path/filepath"
)

const volumesDir = "/Volumes"

// New returns the macOS drive locator: poll the /Volumes listing, where
// diskarbitrationd mounts the bootloader volume under its label.
func New(cfg Config) Locator {
	return &poller{cfg: cfg, snapshot: darwinSnapshot}
}

func darwinSnapshot() ([]Handle, error) {
	entries, err := os.ReadDir(volumesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", volumesDir, err)
	}

	var out []Handle
	for _, e := range entries {
		out = append(out, Handle{
			Root:  filepath.Join(volumesDir, e.Name()),
			Label: e.Name(),
		})
	}
	return out, nil
}
