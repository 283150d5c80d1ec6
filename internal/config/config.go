package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultVendorID    = "2E8A" // Raspberry Pi Foundation
	DefaultVendorName  = "Raspberry Pi"
	DefaultVolumeLabel = "RPI-RP2"
	DefaultMarkerFile  = "INFO_UF2.TXT"

	DefaultPollIntervalMS = 500
	DefaultProbeTimeoutMS = 2000
	DefaultWaitTimeoutMS  = 10000
	DefaultRetouchDelayMS = 300
	DefaultSettleDelayMS  = 3000
)

// Repo identifies a firmware release source.
type Repo struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch,omitempty"`
}

// Config holds all kyflash configuration.
type Config struct {
	VendorID    string `json:"vendor_id,omitempty"`
	ProductID   string `json:"product_id,omitempty"`
	VendorName  string `json:"vendor_name,omitempty"`
	VolumeLabel string `json:"volume_label,omitempty"`
	MarkerFile  string `json:"marker_file,omitempty"`

	PollIntervalMS int `json:"poll_interval_ms,omitempty"`
	ProbeTimeoutMS int `json:"probe_timeout_ms,omitempty"`
	WaitTimeoutMS  int `json:"wait_timeout_ms,omitempty"`
	RetouchDelayMS int `json:"retouch_delay_ms,omitempty"`
	SettleDelayMS  int `json:"settle_delay_ms,omitempty"`

	Repos        []Repo `json:"repos,omitempty"`
	LastFirmware string `json:"last_firmware,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		VendorID:       DefaultVendorID,
		VendorName:     DefaultVendorName,
		VolumeLabel:    DefaultVolumeLabel,
		MarkerFile:     DefaultMarkerFile,
		PollIntervalMS: DefaultPollIntervalMS,
		ProbeTimeoutMS: DefaultProbeTimeoutMS,
		WaitTimeoutMS:  DefaultWaitTimeoutMS,
		RetouchDelayMS: DefaultRetouchDelayMS,
		SettleDelayMS:  DefaultSettleDelayMS,
		Repos: []Repo{
			{Owner: "KOINSLOT-Inc", Repo: "kywy", Branch: "main"},
			{Owner: "KOINSLOT-Inc", Repo: "kywy-rust", Branch: "main"},
		},
	}
}

// Dir returns the directory holding the user config file.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".kyflash"
	}
	return filepath.Join(base, "kyflash")
}

// Load reads the user config and merges it over the defaults.
func Load() Config {
	return LoadFrom(filepath.Join(Dir(), "config.json"))
}

// LoadFrom merges the config file at path over the defaults.
// A missing or malformed file leaves the defaults untouched.
func LoadFrom(path string) Config {
	cfg := Defaults()
	mergeFromFile(&cfg, path)
	return cfg
}

// Save writes the config to the user config file.
func Save(cfg Config) error {
	return SaveTo(cfg, filepath.Join(Dir(), "config.json"))
}

// SaveTo writes the config to the given path, creating parent directories.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// PollInterval returns the volume polling interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// ProbeTimeout returns the initial volume probe timeout as a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

// WaitTimeout returns the post-reset volume wait timeout as a duration.
func (c Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutMS) * time.Millisecond
}

// RetouchDelay returns the delay between the two baud touches.
func (c Config) RetouchDelay() time.Duration {
	return time.Duration(c.RetouchDelayMS) * time.Millisecond
}

// SettleDelay returns the post-touch settle delay before volume polling.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

func mergeFromFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return
	}

	if fileCfg.VendorID != "" {
		cfg.VendorID = fileCfg.VendorID
	}
	if fileCfg.ProductID != "" {
		cfg.ProductID = fileCfg.ProductID
	}
	if fileCfg.VendorName != "" {
		cfg.VendorName = fileCfg.VendorName
	}
	if fileCfg.VolumeLabel != "" {
		cfg.VolumeLabel = fileCfg.VolumeLabel
	}
	if fileCfg.MarkerFile != "" {
		cfg.MarkerFile = fileCfg.MarkerFile
	}
	if fileCfg.PollIntervalMS != 0 {
		cfg.PollIntervalMS = fileCfg.PollIntervalMS
	}
	if fileCfg.ProbeTimeoutMS != 0 {
		cfg.ProbeTimeoutMS = fileCfg.ProbeTimeoutMS
	}
	if fileCfg.WaitTimeoutMS != 0 {
		cfg.WaitTimeoutMS = fileCfg.WaitTimeoutMS
	}
	if fileCfg.RetouchDelayMS != 0 {
		cfg.RetouchDelayMS = fileCfg.RetouchDelayMS
	}
	if fileCfg.SettleDelayMS != 0 {
		cfg.SettleDelayMS = fileCfg.SettleDelayMS
	}
	if len(fileCfg.Repos) > 0 {
		cfg.Repos = fileCfg.Repos
	}
	if fileCfg.LastFirmware != "" {
		cfg.LastFirmware = fileCfg.LastFirmware
	}
}
