// Package charts builds the date-keyed chart index for market index symbols
// from PNG files on disk and sidecar metadata documents.
package charts

import (
	"errors"
	"fmt"
	"strings"
)

// AllSymbols is the reserved query value that selects every known symbol.
const AllSymbols = "all"

// ErrInvalidSymbol is returned for symbols outside the registry.
var ErrInvalidSymbol = errors.New("invalid symbol")

// Registry is the fixed set of known symbols. It is immutable after construction.
type Registry struct {
	symbols []string
	known   map[string]struct{}
}

// NewRegistry normalizes symbols to lowercase and drops blanks, duplicates and "all".
// Order is preserved.
func NewRegistry(symbols []string) *Registry {
	r := &Registry{known: make(map[string]struct{}, len(symbols))}
	for _, s := range symbols {
		n := Normalize(s)
		if n == "" || n == AllSymbols {
			continue
		}
		if _, dup := r.known[n]; dup {
			continue
		}
		r.known[n] = struct{}{}
		r.symbols = append(r.symbols, n)
	}
	return r
}

// Normalize returns the internal form of a symbol.
func Normalize(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}

// IsAll reports whether symbol is the "all symbols" selector.
func IsAll(symbol string) bool {
	return Normalize(symbol) == AllSymbols
}

// Symbols returns a copy of the known symbols in configured order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.symbols))
	copy(out, r.symbols)
	return out
}

// Parse returns the normalized symbol, or ErrInvalidSymbol if it is unknown.
func (r *Registry) Parse(symbol string) (string, error) {
	n := Normalize(symbol)
	if _, ok := r.known[n]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return n, nil
}
