// Package config loads the JSON configuration table, following the shape
// of apps/rtcmlogger/config.GetConfig and jsonconfig.GetJSONConfigFromFile:
// a small typed struct, an encoding/json unmarshal, and validation
// immediately after. I/O and parse failures here are fatal at startup —
// this package only returns the error, leaving the "fatal" part (logging
// it and exiting non-zero) to apps/ogntrack, exactly as
// apps/rtcmfilter/main.go does with its own config package.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// maxTimeBufferSeconds caps airspace.time_buffer_seconds at what fits in
// a single unsigned byte.
const maxTimeBufferSeconds = 255

// GliderNet holds the connection details for the upstream APRS/OGN
// server.
type GliderNet struct {
	Host string `json:"host"`
	Port int `json:"port"`
	Filter string `json:"filter"`
}

// Airspace holds the AirspaceStore's construction parameters.
type Airspace struct {
	TimeBufferSeconds int `json:"time_buffer_seconds"`
}

// Config is the top-level JSON configuration table.
type Config struct {
	GliderNet GliderNet `json:"glidernet"`
	Airspace Airspace `json:"airspace"`
}

// BufferDuration returns the AirspaceStore buffer window as a
// time.Duration.
func (c Config) BufferDuration() time.Duration {
	return time.Duration(c.Airspace.TimeBufferSeconds) * time.Second
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %q: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %q is not valid JSON: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}

	return &cfg, nil
}

func (c Config) validate() error {
	if c.GliderNet.Host == "" {
		return fmt.Errorf("glidernet.host is required")
	}
	if c.GliderNet.Port <= 0 || c.GliderNet.Port > 65535 {
		return fmt.Errorf("glidernet.port must be between 1 and 65535, got %d", c.GliderNet.Port)
	}
	if c.Airspace.TimeBufferSeconds <= 0 || c.Airspace.TimeBufferSeconds > maxTimeBufferSeconds {
		return fmt.Errorf("airspace.time_buffer_seconds must be between 1 and %d, got %d",
			maxTimeBufferSeconds, c.Airspace.TimeBufferSeconds)
	}
	return nil
}
