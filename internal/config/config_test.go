package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 50051
providers:
  - name: "udev"
    type: "udev"
devices:
  - name: "my-board"
    consoles:
      - name: "console"
        match: {usb_id: "1234"}
        parameters: {baud: 115200}
    uploaders:
      - name: "dfu"
        match: {usb_id: "0483:df11"}
    modes:
      - name: "off"
        sequence:
          - match: {pdu_port: "1"}
            parameters: {state: "off"}
      - name: "on"
        depends: "off"
        sequence:
          - match: {pdu_port: "1"}
            parameters: {state: "on"}
            stabilisation: "2s"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if len(cfg.Devices) != 1 {
		t.Fatalf("len(Devices) = %d, want 1", len(cfg.Devices))
	}
	d := cfg.Devices[0]
	if d.Name != "my-board" {
		t.Errorf("Devices[0].Name = %q, want %q", d.Name, "my-board")
	}
	if len(d.Modes) != 2 {
		t.Fatalf("len(Modes) = %d, want 2", len(d.Modes))
	}
	if d.Modes[1].Depends != "off" {
		t.Errorf("Modes[1].Depends = %q, want %q", d.Modes[1].Depends, "off")
	}
	got := d.Modes[1].Sequence[0].Stabilisation.Duration
	if got != 2*time.Second {
		t.Errorf("Stabilisation = %v, want 2s", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("devices: []\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 50051 {
		t.Errorf("Server.Port = %d, want 50051", cfg.Server.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestValidate_DuplicateDeviceName(t *testing.T) {
	cfg := &Config{Devices: []DeviceConfig{{Name: "a"}, {Name: "a"}}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for duplicate device name, got nil")
	}
}

func TestValidate_UnknownModeDependency(t *testing.T) {
	cfg := &Config{Devices: []DeviceConfig{{
		Name: "a",
		Modes: []ModeConfig{
			{Name: "on", Depends: "off"},
		},
	}}}
	if err := Validate(cfg); err == nil {
		t.Error("Validate() expected error for unknown mode dependency, got nil")
	}
}
