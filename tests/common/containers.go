package common

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	chartsImage   = "vire-charts:test"
	chartsPort    = "8000/tcp"
	containerData = "/app/data"
)

var (
	chartsBuildOnce  sync.Once
	chartsBuildError error
)

// PNGBytes is the smallest valid PNG (1x1 transparent pixel).
var PNGBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// Fixture is a chart tree copied into the container before startup.
// Images maps a path relative to the uploads root ("nifty/overview/2024-01-05.png")
// to its content; Metadata maps a sidecar filename ("nifty.json") to its content.
type Fixture struct {
	Images   map[string][]byte
	Metadata map[string]string
}

// ChartsContainer wraps a running vire-charts container.
type ChartsContainer struct {
	container testcontainers.Container
	url       string
}

// URL returns the base URL of the running container.
func (c *ChartsContainer) URL() string {
	return c.url
}

// CollectLogs saves container stdout/stderr to dir/vire-charts.log.
func (c *ChartsContainer) CollectLogs(dir string) {
	if c == nil || c.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reader, err := c.container.Logs(ctx)
	if err != nil {
		return
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return
	}
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "vire-charts.log"), logs, 0644)
}

// buildChartsImage builds the vire-charts:test image once per test run.
func buildChartsImage() error {
	chartsBuildOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    FindProjectRoot(),
					Dockerfile: "tests/docker/Dockerfile",
					Repo:       "vire-charts",
					Tag:        "test",
					KeepImage:  true,
				},
			},
		}

		_, chartsBuildError = testcontainers.GenericContainer(ctx, req)
		if chartsBuildError != nil {
			// Image may have built successfully even if container creation failed
			if strings.Contains(chartsBuildError.Error(), chartsImage) {
				chartsBuildError = nil
			}
		}
	})
	return chartsBuildError
}

// StartCharts starts a vire-charts container serving fixture. The test is
// skipped in short mode or when no Docker provider is available.
func StartCharts(t *testing.T, fixture Fixture) *ChartsContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	if err := buildChartsImage(); err != nil {
		t.Fatalf("build vire-charts image: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	files := make([]testcontainers.ContainerFile, 0, len(fixture.Images)+len(fixture.Metadata))
	for rel, content := range fixture.Images {
		files = append(files, testcontainers.ContainerFile{
			Reader:            bytes.NewReader(content),
			ContainerFilePath: containerData + "/uploads/" + rel,
			FileMode:          0644,
		})
	}
	for name, doc := range fixture.Metadata {
		files = append(files, testcontainers.ContainerFile{
			Reader:            strings.NewReader(doc),
			ContainerFilePath: containerData + "/metadata/" + name,
			FileMode:          0644,
		})
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        chartsImage,
			ExposedPorts: []string{chartsPort},
			Env: map[string]string{
				"VIRE_SERVER_HOST":  "0.0.0.0",
				"VIRE_SERVER_PORT":  "8000",
				"VIRE_UPLOADS_DIR":  containerData + "/uploads",
				"VIRE_METADATA_DIR": containerData + "/metadata",
				"VIRE_LOG_LEVEL":    "debug",
			},
			Files:      files,
			WaitingFor: wait.ForHTTP("/api/health").WithPort(chartsPort).WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start vire-charts: %v", err)
	}

	c := &ChartsContainer{container: ctr}
	t.Cleanup(func() {
		if t.Failed() {
			c.CollectLogs(GetResultsDir())
		}
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		ctr.Terminate(cleanupCtx)
	})

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, chartsPort)
	if err != nil {
		t.Fatalf("get mapped port: %v", err)
	}
	c.url = fmt.Sprintf("http://%s:%s", host, port.Port())

	return c
}
