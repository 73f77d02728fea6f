package handlers

import (
	"net/http"

	"github.com/bobmcallan/vire-charts/internal/charts"
	"github.com/bobmcallan/vire-charts/internal/common"
)

// ImageFiles resolves a chart image to a file on disk.
type ImageFiles interface {
	FilePath(symbol string, category charts.Category, name string) (string, bool)
}

// ImageHandler serves GET /uploads/{symbol}/{category}/{file}.
type ImageHandler struct {
	logger   *common.Logger
	registry *charts.Registry
	files    ImageFiles
}

// NewImageHandler creates an image handler.
func NewImageHandler(logger *common.Logger, registry *charts.Registry, files ImageFiles) *ImageHandler {
	return &ImageHandler{
		logger:   logger,
		registry: registry,
		files:    files,
	}
}

// ServeHTTP writes the raw PNG bytes. Anything that does not resolve to a PNG
// in a known symbol and category directory is a 404.
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbol, err := h.registry.Parse(r.PathValue("symbol"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	category, ok := charts.ParseCategory(r.PathValue("category"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	path, ok := h.files.FilePath(symbol, category, r.PathValue("file"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
