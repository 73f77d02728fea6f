package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Charts: ChartsConfig{
			UploadsDir:          "./uploads",
			MetadataDir:         "./metadata",
			Symbols:             []string{"nifty", "banknifty", "sensex"},
			DefaultSymbol:       "nifty",
			InvalidSymbolStatus: 200,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
		},
	}
}
