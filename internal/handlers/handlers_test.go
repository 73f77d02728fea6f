package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/vire-charts/internal/charts"
	"github.com/bobmcallan/vire-charts/internal/common"
)

// --- fixtures ---

type chartFixture struct {
	images   *charts.DiskImageStore
	metaDir  string
	registry *charts.Registry
	builder  *charts.Builder
}

func newChartFixture(t *testing.T) *chartFixture {
	t.Helper()
	f := &chartFixture{
		images:   charts.NewDiskImageStore(t.TempDir(), ""),
		metaDir:  t.TempDir(),
		registry: charts.NewRegistry([]string{"nifty", "banknifty", "sensex"}),
	}
	f.builder = charts.NewBuilder(f.registry, f.images, charts.NewFileMetadataStore(f.metaDir), common.NewSilentLogger())
	return f
}

func (f *chartFixture) addImage(t *testing.T, symbol string, category charts.Category, name string) {
	t.Helper()
	dir := f.images.Dir(symbol, category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("\x89PNG\r\n\x1a\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func (f *chartFixture) addMetadata(t *testing.T, symbol, doc string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.metaDir, symbol+".json"), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
}

// --- health / version ---

func TestHealthHandler_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %s", body["status"])
	}
}

func TestHealthHandler_RejectsNonGET(t *testing.T) {
	handler := NewHealthHandler(nil)

	req := httptest.NewRequest("POST", "/api/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestVersionHandler_ReturnsJSON(t *testing.T) {
	handler := NewVersionHandler(nil)

	req := httptest.NewRequest("GET", "/api/version", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	for _, field := range []string{"version", "build", "git_commit"} {
		if _, ok := body[field]; !ok {
			t.Errorf("expected %s field in response", field)
		}
	}
}

func TestVersionHandler_RejectsNonGET(t *testing.T) {
	handler := NewVersionHandler(nil)

	req := httptest.NewRequest("DELETE", "/api/version", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

// --- helpers ---

func TestRequireMethod_Matches(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	if !RequireMethod(w, req, "GET") {
		t.Error("expected RequireMethod to return true for matching method")
	}
}

func TestRequireMethod_HeadAllowedForGet(t *testing.T) {
	req := httptest.NewRequest("HEAD", "/test", nil)
	w := httptest.NewRecorder()

	if !RequireMethod(w, req, "GET") {
		t.Error("expected HEAD to satisfy GET")
	}
}

func TestRequireMethod_Mismatch(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()

	if RequireMethod(w, req, "GET") {
		t.Error("expected RequireMethod to return false for mismatching method")
	}
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusCreated, map[string]string{"key": "value"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["key"] != "value" {
		t.Errorf("expected key=value, got key=%s", body["key"])
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "something went wrong")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(body) != 1 || body["error"] != "something went wrong" {
		t.Errorf("expected only the error field, got %v", body)
	}
}
