package serialport

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// List returns all currently attached USB serial devices.
func List() ([]Descriptor, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}

	var result []Descriptor
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		result = append(result, Descriptor{
			Path:    p.Name,
			VID:     p.VID,
			PID:     p.PID,
			Product: p.Product,
		})
	}
	return result, nil
}
