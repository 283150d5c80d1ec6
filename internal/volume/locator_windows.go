//go:build windows

package volume

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// New returns the Windows drive locator: poll the logical drive bitmask
// and read each root's volume label.
func New(cfg Config) Locator {
	return &poller{cfg: cfg, snapshot: windowsSnapshot}
}

func windowsSnapshot() ([]Handle, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("listing logical drives: %w", err)
	}

	var out []Handle
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + `:\`
		label, err := volumeLabel(root)
		if err != nil {
			// Removable drives come and go mid-scan; skip, don't fail.
			continue
		}
		out = append(out, Handle{Root: root, Label: label})
	}
	return out, nil
}

func volumeLabel(root string) (string, error) {
	rootPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return "", err
	}

	var name [windows.MAX_PATH + 1]uint16
	var fs [windows.MAX_PATH + 1]uint16
	err = windows.GetVolumeInformation(
		rootPtr,
		&name[0], uint32(len(name)),
		nil, nil, nil,
		&fs[0], uint32(len(fs)),
	)
	if err != nil {
		return "", err
	}
	return windows.UTF16ToString(name[:]), nil
}
