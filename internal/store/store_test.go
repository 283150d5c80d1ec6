package store

import (
	"testing"
	"time"
)

func TestAddAndRetrieveFlashes(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	record := FlashRecord{
		Firmware:  "snake.uf2",
		Source:    "https://dl/snake.uf2",
		Volume:    "/run/media/alex/RPI-RP2",
		Bytes:     262144,
		Success:   true,
		Duration:  "8.2s",
		Timestamp: time.Now(),
	}

	if err := s.AddFlash(record); err != nil {
		t.Fatalf("AddFlash failed: %v", err)
	}

	flashes, err := s.Flashes()
	if err != nil {
		t.Fatalf("Flashes failed: %v", err)
	}
	if len(flashes) != 1 {
		t.Fatalf("expected 1 flash, got %d", len(flashes))
	}
	if flashes[0].Firmware != "snake.uf2" {
		t.Errorf("expected firmware=snake.uf2, got=%s", flashes[0].Firmware)
	}
}

func TestAddMultipleRecords(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	s.AddFlash(FlashRecord{Firmware: "a.uf2", Timestamp: time.Now(), Success: true, Duration: "5s"})
	s.AddFlash(FlashRecord{Firmware: "b.uf2", Timestamp: time.Now(), Success: false, Failure: "DeviceNotFoundAfterReset", Duration: "14s"})

	flashes, _ := s.Flashes()
	if len(flashes) != 2 {
		t.Fatalf("expected 2 flashes, got %d", len(flashes))
	}
	if flashes[1].Failure != "DeviceNotFoundAfterReset" {
		t.Errorf("expected failure kind preserved, got=%s", flashes[1].Failure)
	}
}

func TestEmptyStore(t *testing.T) {
	tmp := t.TempDir()
	s := New(tmp)

	flashes, err := s.Flashes()
	if err != nil {
		t.Fatalf("Flashes on empty store failed: %v", err)
	}
	if len(flashes) != 0 {
		t.Errorf("expected 0 flashes, got %d", len(flashes))
	}
}
