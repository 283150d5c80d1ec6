package ui

import (
	"strings"
	"testing"
)

func TestPanelEmbedsTitleInTopBorder(t *testing.T) {
	out := Panel("Devices", "body", 30, 0, false)
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[0], "Devices") {
		t.Errorf("expected title in top border, got %q", lines[0])
	}
	if !strings.Contains(out, "body") {
		t.Error("expected content in panel body")
	}
}

func TestFailureBadgeCarriesKind(t *testing.T) {
	for _, kind := range []string{"NoDeviceFound", "WriteFailed", "Canceled"} {
		if !strings.Contains(FailureBadge(kind), kind) {
			t.Errorf("expected badge to carry %q", kind)
		}
	}
}
