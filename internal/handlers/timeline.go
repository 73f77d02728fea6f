package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-charts/internal/charts"
	"github.com/bobmcallan/vire-charts/internal/common"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFS, "templates/*.html"))

// IndexBuilder builds the chart index of a single symbol.
type IndexBuilder interface {
	Build(symbol string) (charts.Index, error)
}

// TimelineHandler renders the chart timeline page, newest date first.
type TimelineHandler struct {
	logger        *common.Logger
	builder       IndexBuilder
	symbols       []string
	defaultSymbol string
}

type timelineDay struct {
	Date         string
	Overview     string
	Detailed     []string
	Tags         []string
	Descriptions []string
	Summaries    []string
}

type timelinePage struct {
	Title   string
	Symbol  string
	Symbols []string
	Days    []timelineDay
}

// NewTimelineHandler creates a timeline page handler.
func NewTimelineHandler(logger *common.Logger, builder IndexBuilder, symbols []string, defaultSymbol string) *TimelineHandler {
	return &TimelineHandler{
		logger:        logger,
		builder:       builder,
		symbols:       symbols,
		defaultSymbol: defaultSymbol,
	}
}

// ServeHTTP handles GET / and GET /?symbol={symbol}.
func (h *TimelineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = h.defaultSymbol
	}

	index, err := h.builder.Build(symbol)
	if err != nil {
		if errors.Is(err, charts.ErrInvalidSymbol) {
			http.Error(w, "Invalid symbol", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	symbol = charts.Normalize(symbol)
	page := timelinePage{
		Title:   strings.ToUpper(symbol),
		Symbol:  symbol,
		Symbols: h.symbols,
	}
	for _, date := range index.DateKeys(true) {
		entry := index[date]
		day := timelineDay{
			Date:         date,
			Detailed:     entry.Detailed,
			Tags:         entry.Tags,
			Descriptions: entry.Descriptions,
			Summaries:    entry.Summaries,
		}
		if entry.Overview != nil {
			day.Overview = *entry.Overview
		}
		page.Days = append(page.Days, day)
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "timeline.html", page); err != nil {
		if h.logger != nil {
			h.logger.Error().Str("template", "timeline.html").Str("error", err.Error()).Msg("failed to render page")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
