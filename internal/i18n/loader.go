package i18n

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Fixture represents a serialised bundle of configuration + translations.
type Fixture struct {
	Config       Config                       `json:"config"`
	Translations map[string]map[string]string `json:"translations"`
}

// Config captures the language table the catalog was authored against.
type Config struct {
	DefaultLanguage string   `json:"default_language"`
	Languages       []string `json:"languages"`
}

//go:embed testdata/catalog.json
var defaultCatalogData embed.FS

// DefaultFixture loads the built-in translation catalog shipped with the
// module.
func DefaultFixture() (*Fixture, error) {
	data, err := defaultCatalogData.ReadFile("testdata/catalog.json")
	if err != nil {
		return nil, fmt.Errorf("i18n: read embedded catalog: %w", err)
	}

	return decodeFixture(bytes.NewReader(data))
}

// Loader reads translation catalogs from disk, validating each file against
// the catalog schema before decoding.
type Loader struct {
	path string
}

// NewLoader constructs a loader that reads the provided file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the configured catalog file.
func (l *Loader) Load(ctx context.Context) (*Fixture, error) {
	if l == nil || l.path == "" {
		return nil, errors.New("i18n: loader path cannot be empty")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(filepath.Clean(l.path))
	if err != nil {
		return nil, fmt.Errorf("i18n: open catalog %q: %w", l.path, err)
	}

	if err := ValidateCatalogDocument(data); err != nil {
		return nil, fmt.Errorf("i18n: catalog %q: %w", l.path, err)
	}

	return decodeFixture(bytes.NewReader(data))
}

func decodeFixture(r io.Reader) (*Fixture, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var fx Fixture
	if err := decoder.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if fx.Translations == nil {
		fx.Translations = map[string]map[string]string{}
	}

	return &fx, nil
}
