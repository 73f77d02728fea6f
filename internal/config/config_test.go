package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bobmcallan/vire-charts/internal/charts"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.Charts.UploadsDir != "./uploads" {
		t.Errorf("expected default uploads dir ./uploads, got %s", cfg.Charts.UploadsDir)
	}
	if cfg.Charts.MetadataDir != "./metadata" {
		t.Errorf("expected default metadata dir ./metadata, got %s", cfg.Charts.MetadataDir)
	}
	if len(cfg.Charts.Symbols) != 3 {
		t.Errorf("expected 3 default symbols, got %v", cfg.Charts.Symbols)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected default config to validate, got %v", issues)
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFile_EmptyPath(t *testing.T) {
	cfg, err := LoadFromFile("")
	if err != nil {
		t.Fatalf("LoadFromFile with empty path should not error: %v", err)
	}
	if cfg.Charts.DefaultSymbol != "nifty" {
		t.Errorf("expected default symbol nifty, got %s", cfg.Charts.DefaultSymbol)
	}
}

func TestLoadFromFiles_ValidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "test.toml")

	content := `
[server]
port = 9090
host = "0.0.0.0"

[charts]
uploads_dir = "/srv/uploads"
metadata_dir = "/srv/metadata"
symbols = ["NIFTY", "finnifty"]
default_symbol = "finnifty"
invalid_symbol_status = 400

[logging]
level = "debug"
format = "json"
outputs = ["console", "file"]
file_path = "/tmp/charts.log"
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Charts.UploadsDir != "/srv/uploads" {
		t.Errorf("expected uploads dir /srv/uploads, got %s", cfg.Charts.UploadsDir)
	}
	if cfg.Charts.MetadataDir != "/srv/metadata" {
		t.Errorf("expected metadata dir /srv/metadata, got %s", cfg.Charts.MetadataDir)
	}
	if !reflect.DeepEqual(cfg.SymbolSet(), []string{"nifty", "finnifty"}) {
		t.Errorf("unexpected symbol set %v", cfg.SymbolSet())
	}
	if cfg.DefaultSymbol() != "finnifty" {
		t.Errorf("expected default symbol finnifty, got %s", cfg.DefaultSymbol())
	}
	if cfg.InvalidSymbolStatus() != 400 {
		t.Errorf("expected invalid symbol status 400, got %d", cfg.InvalidSymbolStatus())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.FilePath != "/tmp/charts.log" {
		t.Errorf("expected log file /tmp/charts.log, got %s", cfg.Logging.FilePath)
	}
}

func TestLoadFromFiles_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "partial.toml")

	content := `
[server]
port = 3000
`
	if err := os.WriteFile(tomlPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.Charts.UploadsDir != "./uploads" {
		t.Errorf("expected default uploads dir, got %s", cfg.Charts.UploadsDir)
	}
}

func TestLoadFromFiles_MultipleFiles(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	baseContent := `
[server]
port = 3000
host = "base-host"
`
	if err := os.WriteFile(base, []byte(baseContent), 0644); err != nil {
		t.Fatal(err)
	}

	override := filepath.Join(dir, "override.toml")
	overrideContent := `
[server]
port = 4000
`
	if err := os.WriteFile(override, []byte(overrideContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("expected port 4000 from override, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "base-host" {
		t.Errorf("expected host base-host from base file, got %s", cfg.Server.Host)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/path.toml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "invalid.toml")

	if err := os.WriteFile(tomlPath, []byte("this is not valid {{toml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFiles(tomlPath)
	if err == nil {
		t.Error("expected error for invalid TOML, got nil")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Setenv("VIRE_SERVER_PORT", "9999")
	t.Setenv("VIRE_SERVER_HOST", "env-host")
	t.Setenv("VIRE_UPLOADS_DIR", "/env/uploads")
	t.Setenv("VIRE_METADATA_DIR", "/env/metadata")
	t.Setenv("VIRE_SYMBOLS", "Nifty, sensex ,,")
	t.Setenv("VIRE_LOG_LEVEL", "error")
	t.Setenv("VIRE_LOG_FORMAT", "json")

	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9999 {
		t.Errorf("expected env port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "env-host" {
		t.Errorf("expected env host env-host, got %s", cfg.Server.Host)
	}
	if cfg.Charts.UploadsDir != "/env/uploads" {
		t.Errorf("expected env uploads dir, got %s", cfg.Charts.UploadsDir)
	}
	if cfg.Charts.MetadataDir != "/env/metadata" {
		t.Errorf("expected env metadata dir, got %s", cfg.Charts.MetadataDir)
	}
	if !reflect.DeepEqual(cfg.Charts.Symbols, []string{"Nifty", "sensex"}) {
		t.Errorf("unexpected env symbols %v", cfg.Charts.Symbols)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected env log level error, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected env log format json, got %s", cfg.Logging.Format)
	}
}

func TestApplyEnvOverrides_InvalidPort(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Setenv("VIRE_SERVER_PORT", "not-a-number")

	applyEnvOverrides(cfg)

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port to remain 8000 with invalid env, got %d", cfg.Server.Port)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 7777, "flag-host")

	if cfg.Server.Port != 7777 {
		t.Errorf("expected flag port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "flag-host" {
		t.Errorf("expected flag host flag-host, got %s", cfg.Server.Host)
	}

	ApplyFlagOverrides(cfg, 0, "")

	if cfg.Server.Port != 7777 || cfg.Server.Host != "flag-host" {
		t.Error("zero-value flags should not override config")
	}
}

func TestSymbolSet_NormalizesAndDedupes(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Charts.Symbols = []string{" NIFTY ", "nifty", "", "All", "BankNifty"}

	got := cfg.SymbolSet()
	want := []string{"nifty", "banknifty"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSymbolSet_MatchesRegistry(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Charts.Symbols = []string{"Sensex", " sensex", "ALL", "Nifty", "\tfinnifty\n"}

	registry := charts.NewRegistry(cfg.Charts.Symbols)
	if got, want := cfg.SymbolSet(), registry.Symbols(); !reflect.DeepEqual(got, want) {
		t.Errorf("config symbols %v differ from registry symbols %v", got, want)
	}
	for _, s := range cfg.SymbolSet() {
		if _, err := registry.Parse(s); err != nil {
			t.Errorf("symbol %q from config rejected by registry: %v", s, err)
		}
	}
}

func TestDefaultSymbol_FallsBackToFirst(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Charts.DefaultSymbol = ""
	cfg.Charts.Symbols = []string{"Sensex", "nifty"}

	if got := cfg.DefaultSymbol(); got != "sensex" {
		t.Errorf("expected sensex, got %s", got)
	}
}

func TestInvalidSymbolStatus_ZeroMeansOK(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Charts.InvalidSymbolStatus = 0

	if got := cfg.InvalidSymbolStatus(); got != 200 {
		t.Errorf("expected 200, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"no uploads dir", func(c *Config) { c.Charts.UploadsDir = " " }, "charts.uploads_dir"},
		{"no metadata dir", func(c *Config) { c.Charts.MetadataDir = "" }, "charts.metadata_dir"},
		{"no symbols", func(c *Config) { c.Charts.Symbols = nil; c.Charts.DefaultSymbol = "" }, "at least one symbol"},
		{"reserved symbol", func(c *Config) { c.Charts.Symbols = append(c.Charts.Symbols, "ALL") }, `reserved name "all"`},
		{"unknown default", func(c *Config) { c.Charts.DefaultSymbol = "dax" }, "charts.default_symbol"},
		{"5xx status", func(c *Config) { c.Charts.InvalidSymbolStatus = 500 }, "charts.invalid_symbol_status"},
		{"3xx status", func(c *Config) { c.Charts.InvalidSymbolStatus = 302 }, "charts.invalid_symbol_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			issues := cfg.Validate()
			found := false
			for _, issue := range issues {
				if strings.Contains(issue, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected issue containing %q, got %v", tt.want, issues)
			}
		})
	}
}

func TestValidate_AcceptsClientErrorStatus(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Charts.InvalidSymbolStatus = 404

	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}
