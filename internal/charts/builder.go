package charts

import (
	"sort"
	"strings"

	"github.com/bobmcallan/vire-charts/internal/common"
)

// Entry is the chart bundle for one date key.
type Entry struct {
	Overview     *string  `json:"overview"`
	Detailed     []string `json:"detailed"`
	Tags         []string `json:"tags"`
	Descriptions []string `json:"descriptions"`
	Summaries    []string `json:"summaries"`
}

// Index maps date keys to entries for one symbol. encoding/json emits map keys
// in ascending order, which is the index order.
type Index map[string]Entry

// DateKeys returns the date keys in ascending order, or descending when newestFirst is set.
func (ix Index) DateKeys(newestFirst bool) []string {
	keys := make([]string, 0, len(ix))
	for k := range ix {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if newestFirst {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	return keys
}

// AllIndex maps every known symbol to its index.
type AllIndex map[string]Index

// Builder assembles chart indexes. It holds no per-request state and is safe
// for concurrent use.
type Builder struct {
	registry *Registry
	images   ImageStore
	metadata MetadataStore
	logger   *common.Logger
}

// NewBuilder creates a builder over the given stores.
func NewBuilder(registry *Registry, images ImageStore, metadata MetadataStore, logger *common.Logger) *Builder {
	return &Builder{
		registry: registry,
		images:   images,
		metadata: metadata,
		logger:   logger,
	}
}

// Registry returns the symbol registry.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Build returns the index for one symbol. An unknown symbol returns ErrInvalidSymbol.
// Unreadable directories and metadata degrade to empty inputs.
func (b *Builder) Build(symbol string) (Index, error) {
	sym, err := b.registry.Parse(symbol)
	if err != nil {
		return nil, err
	}

	overview := b.list(sym, CategoryOverview)
	detailed := b.list(sym, CategoryDetailed)
	meta := b.load(sym)

	overviewByKey := make(map[string]Image, len(overview))
	keys := make(map[string]struct{}, len(overview)+len(detailed)+len(meta))
	for _, img := range overview {
		if _, ok := overviewByKey[img.DateKey]; !ok {
			overviewByKey[img.DateKey] = img
		}
		keys[img.DateKey] = struct{}{}
	}
	for _, img := range detailed {
		keys[img.DateKey] = struct{}{}
	}
	for k := range meta {
		keys[k] = struct{}{}
	}

	index := make(Index, len(keys))
	for key := range keys {
		index[key] = assemble(key, overviewByKey, detailed, meta[key])
	}

	if b.logger != nil {
		b.logger.Debug().
			Str("symbol", sym).
			Int("overview_files", len(overview)).
			Int("detailed_files", len(detailed)).
			Int("metadata_keys", len(meta)).
			Int("dates", len(index)).
			Msg("chart index built")
	}

	return index, nil
}

// BuildAll returns the index of every known symbol.
func (b *Builder) BuildAll() AllIndex {
	all := make(AllIndex, len(b.registry.symbols))
	for _, sym := range b.registry.symbols {
		index, err := b.Build(sym)
		if err != nil {
			// registry symbols always parse
			index = Index{}
		}
		all[sym] = index
	}
	return all
}

// Query dispatches "all" to BuildAll and everything else to Build.
// The result marshals to the /charts/{symbol} response body.
func (b *Builder) Query(symbol string) (interface{}, error) {
	if IsAll(symbol) {
		return b.BuildAll(), nil
	}
	return b.Build(symbol)
}

func assemble(key string, overviewByKey map[string]Image, detailed []Image, rec Record) Entry {
	var matches []string
	for _, img := range detailed {
		if strings.HasPrefix(img.Name, key) {
			matches = append(matches, img.Path)
		}
	}

	entry := Entry{
		Tags:         orEmpty(rec.Tags),
		Descriptions: orEmpty(rec.Descriptions),
		Summaries:    orEmpty(rec.Summaries),
	}

	switch img, ok := overviewByKey[key]; {
	case ok:
		p := img.Path
		entry.Overview = &p
	case len(matches) > 0:
		p := matches[0]
		entry.Overview = &p
	case rec.Overview != nil:
		p := *rec.Overview
		entry.Overview = &p
	}

	if len(matches) > 0 {
		entry.Detailed = matches
	} else {
		entry.Detailed = orEmpty(rec.Detailed)
	}

	return entry
}

func (b *Builder) list(symbol string, category Category) []Image {
	images, err := b.images.ListByDateKey(symbol, category)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn().Err(err).Str("symbol", symbol).Str("category", string(category)).Msg("image listing failed, treating as empty")
		}
		return nil
	}
	return images
}

func (b *Builder) load(symbol string) Metadata {
	md, err := b.metadata.Load(symbol)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn().Err(err).Str("symbol", symbol).Msg("metadata unavailable, treating as empty")
		}
		return Metadata{}
	}
	return md
}

func orEmpty(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
