package store

import "time"

// FlashRecord captures the result of one install run.
type FlashRecord struct {
	Firmware  string    `json:"firmware"`
	Source    string    `json:"source"`
	Volume    string    `json:"volume,omitempty"`
	Bytes     int64     `json:"bytes,omitempty"`
	Success   bool      `json:"success"`
	Failure   string    `json:"failure,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Duration  string    `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}
