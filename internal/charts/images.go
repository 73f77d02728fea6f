package charts

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Category is an image kind stored in its own directory per symbol.
type Category string

const (
	CategoryOverview Category = "overview"
	CategoryDetailed Category = "detailed"
)

// Categories lists every image category.
var Categories = []Category{CategoryOverview, CategoryDetailed}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryOverview, CategoryDetailed:
		return Category(s), true
	}
	return "", false
}

const imageExt = ".png"

// Image is one chart file discovered on disk.
type Image struct {
	DateKey string // filename without extension
	Name    string // filename
	Path    string // servable URL path
}

// ImageStore lists chart images for a symbol and category.
type ImageStore interface {
	// ListByDateKey returns images ordered by filename. A missing directory is
	// not an error and yields an empty list.
	ListByDateKey(symbol string, category Category) ([]Image, error)
}

// DiskImageStore reads images from {root}/{symbol}/{category}/*.png and renders
// servable paths under {urlPrefix}/{symbol}/{category}/.
type DiskImageStore struct {
	root      string
	urlPrefix string
}

// DefaultURLPrefix is the path prefix images are served under.
const DefaultURLPrefix = "/uploads"

// NewDiskImageStore creates a store rooted at root.
func NewDiskImageStore(root, urlPrefix string) *DiskImageStore {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	return &DiskImageStore{
		root:      root,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}
}

// Dir returns the directory holding images of a symbol and category.
func (s *DiskImageStore) Dir(symbol string, category Category) string {
	return filepath.Join(s.root, symbol, string(category))
}

// URLPrefix returns the normalized servable path prefix.
func (s *DiskImageStore) URLPrefix() string {
	return s.urlPrefix
}

// ListByDateKey implements ImageStore.
func (s *DiskImageStore) ListByDateKey(symbol string, category Category) ([]Image, error) {
	dir := s.Dir(symbol, category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	images := make([]Image, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !IsImageName(name) || !isRegularEntry(dir, e) {
			continue
		}
		images = append(images, Image{
			DateKey: strings.TrimSuffix(name, imageExt),
			Name:    name,
			Path:    s.servablePath(symbol, category, name),
		})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

// FilePath resolves a servable filename to a regular file on disk.
// The boolean is false for names that are not plain PNG filenames or do not exist.
func (s *DiskImageStore) FilePath(symbol string, category Category, name string) (string, bool) {
	if !IsImageName(name) || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	full := filepath.Join(s.Dir(symbol, category), name)
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return full, true
}

// EnsureDirs creates the image directories for a symbol.
func (s *DiskImageStore) EnsureDirs(symbol string) error {
	for _, c := range Categories {
		if err := os.MkdirAll(s.Dir(symbol, c), 0755); err != nil {
			return fmt.Errorf("failed to create %s directory for %s: %w", c, symbol, err)
		}
	}
	return nil
}

// isRegularEntry reports whether e is a regular file, following symlinks so
// listing agrees with FilePath.
func isRegularEntry(dir string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

func (s *DiskImageStore) servablePath(symbol string, category Category, name string) string {
	return path.Join(s.urlPrefix, url.PathEscape(symbol), string(category), url.PathEscape(name))
}

// IsImageName reports whether name matches *.png with a non-empty stem.
func IsImageName(name string) bool {
	return len(name) > len(imageExt) && strings.HasSuffix(name, imageExt) && !strings.HasPrefix(name, ".")
}
