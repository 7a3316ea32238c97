package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goblimey/go-tools/testsupport"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir, err := testsupport.CreateWorkingDirectory()
	if err != nil {
		t.Fatalf("CreateWorkingDirectory: %v", err)
	}
	t.Cleanup(func() { testsupport.RemoveWorkingDirectory(dir) })

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `{
		"glidernet": {"host": "glidern1.glidernet.org", "port": 14580, "filter": "r/51.0/9.0/200"},
		"airspace": {"time_buffer_seconds": 120}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.GliderNet.Host != "glidern1.glidernet.org" {
		t.Errorf("Host = %q", cfg.GliderNet.Host)
	}
	if cfg.GliderNet.Port != 14580 {
		t.Errorf("Port = %d", cfg.GliderNet.Port)
	}
	if cfg.Airspace.TimeBufferSeconds != 120 {
		t.Errorf("TimeBufferSeconds = %d", cfg.Airspace.TimeBufferSeconds)
	}
	if cfg.BufferDuration().Seconds() != 120 {
		t.Errorf("BufferDuration = %v", cfg.BufferDuration())
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.json"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestLoadRejectsOutOfRangeBuffer(t *testing.T) {
	path := writeConfig(t, `{
		"glidernet": {"host": "h", "port": 1, "filter": ""},
		"airspace": {"time_buffer_seconds": 256}
	}`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for time_buffer_seconds > 255")
	}
}

func TestLoadRejectsMissingHost(t *testing.T) {
	path := writeConfig(t, `{
		"glidernet": {"port": 1},
		"airspace": {"time_buffer_seconds": 10}
	}`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for a missing host")
	}
}
