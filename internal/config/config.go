package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/bobmcallan/vire-charts/internal/charts"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Charts  ChartsConfig  `toml:"charts"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// ChartsConfig locates chart images and sidecar metadata on disk.
type ChartsConfig struct {
	UploadsDir          string   `toml:"uploads_dir"`  // {uploads_dir}/{symbol}/{overview|detailed}/*.png
	MetadataDir         string   `toml:"metadata_dir"` // {metadata_dir}/{symbol}.json
	Symbols             []string `toml:"symbols"`
	DefaultSymbol       string   `toml:"default_symbol"` // symbol shown on the timeline page
	InvalidSymbolStatus int      `toml:"invalid_symbol_status"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies VIRE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("VIRE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("VIRE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if dir := os.Getenv("VIRE_UPLOADS_DIR"); dir != "" {
		config.Charts.UploadsDir = dir
	}
	if dir := os.Getenv("VIRE_METADATA_DIR"); dir != "" {
		config.Charts.MetadataDir = dir
	}
	if symbols := os.Getenv("VIRE_SYMBOLS"); symbols != "" {
		config.Charts.Symbols = splitList(symbols)
	}
	if level := os.Getenv("VIRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("VIRE_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate reports configuration problems that would prevent the service from starting.
// An empty result means the configuration is usable.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if strings.TrimSpace(c.Charts.UploadsDir) == "" {
		issues = append(issues, "charts.uploads_dir is required")
	}
	if strings.TrimSpace(c.Charts.MetadataDir) == "" {
		issues = append(issues, "charts.metadata_dir is required")
	}

	symbols := c.SymbolSet()
	if len(symbols) == 0 {
		issues = append(issues, "charts.symbols must list at least one symbol")
	}
	for _, s := range c.Charts.Symbols {
		if charts.IsAll(s) {
			issues = append(issues, fmt.Sprintf("charts.symbols must not contain the reserved name %q", charts.AllSymbols))
		}
	}
	if def := charts.Normalize(c.Charts.DefaultSymbol); def != "" && !contains(symbols, def) {
		issues = append(issues, fmt.Sprintf("charts.default_symbol %q is not in charts.symbols", c.Charts.DefaultSymbol))
	}

	status := c.Charts.InvalidSymbolStatus
	if status != 0 && status != http.StatusOK && (status < 400 || status > 499) {
		issues = append(issues, fmt.Sprintf("charts.invalid_symbol_status must be 200 or a 4xx code (got %d)", status))
	}

	return issues
}

// SymbolSet returns the configured symbols in registry form: lowercase, without
// blanks, duplicates or the reserved "all".
func (c *Config) SymbolSet() []string {
	return charts.NewRegistry(c.Charts.Symbols).Symbols()
}

// DefaultSymbol returns the timeline page symbol, falling back to the first configured symbol.
func (c *Config) DefaultSymbol() string {
	if def := charts.Normalize(c.Charts.DefaultSymbol); def != "" {
		return def
	}
	if symbols := c.SymbolSet(); len(symbols) > 0 {
		return symbols[0]
	}
	return ""
}

// InvalidSymbolStatus returns the HTTP status used for unknown symbols.
func (c *Config) InvalidSymbolStatus() int {
	if c.Charts.InvalidSymbolStatus == 0 {
		return http.StatusOK
	}
	return c.Charts.InvalidSymbolStatus
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
