package common

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type TestConfig struct {
	Results struct {
		Dir string `toml:"dir"`
	} `toml:"results"`
	Server struct {
		URL string `toml:"url"`
	} `toml:"server"`
	Browser struct {
		Headless    bool `toml:"headless"`
		TimeoutSecs int  `toml:"timeout_seconds"`
	} `toml:"browser"`
}

var (
	globalConfig     *TestConfig
	globalConfigOnce sync.Once
	resultsDir       string
	resultsDirOnce   sync.Once
)

// LoadTestConfig reads tests/test_config.toml over built-in defaults.
func LoadTestConfig() *TestConfig {
	globalConfigOnce.Do(func() {
		globalConfig = &TestConfig{}
		globalConfig.Results.Dir = "tests/results"
		globalConfig.Server.URL = "http://localhost:8000"
		globalConfig.Browser.Headless = true
		globalConfig.Browser.TimeoutSecs = 30

		root := FindProjectRoot()
		configPaths := []string{
			filepath.Join(root, "tests", "test_config.toml"),
			"test_config.toml",
		}

		for _, path := range configPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if err := toml.Unmarshal(data, globalConfig); err == nil {
				return
			}
		}
	})
	return globalConfig
}

// GetResultsDir returns a timestamped directory for screenshots and logs.
func GetResultsDir() string {
	if dir := os.Getenv("VIRE_TEST_RESULTS_DIR"); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
		return dir
	}

	resultsDirOnce.Do(func() {
		baseDir := LoadTestConfig().Results.Dir
		if !filepath.IsAbs(baseDir) {
			baseDir = filepath.Join(FindProjectRoot(), baseDir)
		}
		resultsDir = filepath.Join(baseDir, time.Now().Format("2006-01-02-15-04-05"))
		os.MkdirAll(resultsDir, 0755)
	})
	return resultsDir
}

func GetScreenshotDir(subdir string) string {
	dir := filepath.Join(GetResultsDir(), subdir)
	os.MkdirAll(dir, 0755)
	return dir
}

// GetTestURL returns VIRE_TEST_URL, falling back to the configured server URL.
func GetTestURL() string {
	if url := os.Getenv("VIRE_TEST_URL"); url != "" {
		return url
	}
	return LoadTestConfig().Server.URL
}

// FindProjectRoot walks up from the working directory to the directory holding go.mod.
func FindProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
