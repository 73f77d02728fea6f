package charts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Record is the annotation metadata for one date key. Overview and Detailed
// are nil when the document does not declare them.
type Record struct {
	Tags         []string
	Descriptions []string
	Summaries    []string
	Overview     *string
	Detailed     []string
}

// Metadata maps date keys to records for one symbol.
type Metadata map[string]Record

// MetadataStore loads the metadata document of a symbol.
type MetadataStore interface {
	// Load returns an empty Metadata and a nil error when no document exists.
	Load(symbol string) (Metadata, error)
}

// FileMetadataStore reads {dir}/{symbol}.json, falling back to .yaml and .yml.
// Every call reads the file again; the ingestion process may rewrite it at any time.
type FileMetadataStore struct {
	dir string
}

// NewFileMetadataStore creates a store reading documents from dir.
func NewFileMetadataStore(dir string) *FileMetadataStore {
	return &FileMetadataStore{dir: dir}
}

// Dir returns the metadata directory.
func (s *FileMetadataStore) Dir() string {
	return s.dir
}

type decodeFunc func([]byte) (map[string]interface{}, error)

// itemFunc converts one list item to a string, reporting false to skip it.
type itemFunc func(interface{}) (string, bool)

var metadataFormats = []struct {
	ext    string
	decode decodeFunc
	item   itemFunc
}{
	{".json", decodeJSON, jsonItem},
	{".yaml", decodeYAML, yamlItem},
	{".yml", decodeYAML, yamlItem},
}

// Load implements MetadataStore.
func (s *FileMetadataStore) Load(symbol string) (Metadata, error) {
	for _, f := range metadataFormats {
		path := filepath.Join(s.dir, symbol+f.ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Metadata{}, fmt.Errorf("failed to read metadata %s: %w", path, err)
		}

		doc, err := f.decode(data)
		if err != nil {
			return Metadata{}, fmt.Errorf("failed to parse metadata %s: %w", path, err)
		}
		return parseDocument(doc, f.item), nil
	}
	return Metadata{}, nil
}

func decodeJSON(data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeYAML(data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseDocument reads records best-effort. A key whose value is not an object
// still yields an (empty) record so the date key stays visible.
func parseDocument(doc map[string]interface{}, item itemFunc) Metadata {
	md := make(Metadata, len(doc))
	for key, raw := range doc {
		fields, _ := raw.(map[string]interface{})
		rec := Record{
			Tags:         stringList(fields["tags"], item),
			Descriptions: stringList(fields["descriptions"], item),
			Summaries:    stringList(fields["summaries"], item),
			Detailed:     stringList(fields["detailed"], item),
		}
		if s, ok := fields["overview"].(string); ok {
			rec.Overview = &s
		}
		md[key] = rec
	}
	return md
}

// stringList returns the items of a list accepted by item, or nil if v is not a list.
func stringList(v interface{}, item itemFunc) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := item(it); ok {
			out = append(out, s)
		}
	}
	return out
}

// jsonItem keeps string items only.
func jsonItem(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// yamlItem also keeps unquoted scalars (tags: [2024, true]) in their
// printed form. Nested lists, maps and nulls are skipped.
func yamlItem(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case time.Time:
		if t.Equal(t.Truncate(24*time.Hour)) && t.Location() == time.UTC {
			return t.Format("2006-01-02"), true
		}
		return t.Format(time.RFC3339Nano), true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}
