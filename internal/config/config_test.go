package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyforge/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Workflow.StuckThresholdHours != 2 {
		t.Fatalf("expected default stuck threshold, got %d", cfg.Workflow.StuckThresholdHours)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
data_dir = "` + dir + `/data"
log_dir = "` + dir + `/logs"

[workflow]
stuck_threshold_hours = 6

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Workflow.StuckThresholdHours != 6 {
		t.Fatalf("expected stuck threshold 6, got %d", cfg.Workflow.StuckThresholdHours)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging values, got %+v", cfg.Logging)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "pipeline.db") {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"zero threshold", "[workflow]\nstuck_threshold_hours = 0\n"},
		{"bad format", "[logging]\nformat = \"xml\"\n"},
		{"bad level", "[logging]\nlevel = \"verbose\"\n"},
		{"negative timeout", "[notifications]\nrequest_timeout = -1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.contents), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, d := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s", d)
		}
	}
}

func TestSampleCoversEverySection(t *testing.T) {
	sample := config.Sample()
	for _, section := range []string{"[paths]", "[workflow]", "[notifications]", "[logging]"} {
		if !strings.Contains(sample, section) {
			t.Errorf("sample config missing %s", section)
		}
	}
}
