package themes

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ManifestLoader reads a go-theme manifest from a theme directory.
type ManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" {
		return nil, fmt.Errorf("theme path required")
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// SelectorConfig pins the site theme and its default variant.
type SelectorConfig struct {
	Name           string
	Path           string
	DefaultVariant string
	CSSVarPrefix   string
}

// Selector resolves the site theme's design tokens for a light or dark
// variant through go-theme. The manifest is loaded lazily and registered
// once.
type Selector struct {
	cfg      SelectorConfig
	registry *gotheme.MemoryRegistry
	loader   ManifestLoader

	mu     sync.Mutex
	loaded bool
}

// NewSelector constructs a selector. A nil loader defaults to reading the
// manifest from the configured theme directory.
func NewSelector(cfg SelectorConfig, loader ManifestLoader) *Selector {
	if loader == nil {
		loader = fsManifestLoader{}
	}
	if strings.TrimSpace(cfg.DefaultVariant) == "" {
		cfg.DefaultVariant = VariantLight
	}
	return &Selector{
		cfg:      cfg,
		registry: gotheme.NewRegistry(),
		loader:   loader,
	}
}

// Selection resolves the manifest for the requested variant.
func (s *Selector) Selection(variant string) (*gotheme.Selection, error) {
	if err := s.ensureManifest(); err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.cfg.Name,
		DefaultVariant: s.cfg.DefaultVariant,
	}

	resolved := strings.TrimSpace(variant)
	if resolved == "" {
		resolved = s.cfg.DefaultVariant
	}

	selection, err := selector.Select(s.cfg.Name, resolved)
	if err != nil {
		return nil, fmt.Errorf("select theme %s/%s: %w", s.cfg.Name, resolved, err)
	}
	return selection, nil
}

// Context flattens a selection into the data the renderer consumes.
type Context struct {
	Name    string
	Variant string
	Tokens  map[string]string
	CSSVars map[string]string
	Assets  []string
}

// Context resolves the variant and flattens its tokens and CSS variables.
func (s *Selector) Context(variant string) (Context, error) {
	selection, err := s.Selection(variant)
	if err != nil {
		return Context{}, err
	}

	return Context{
		Name:    selection.Theme,
		Variant: selection.Variant,
		Tokens:  selection.Tokens(),
		CSSVars: selection.CSSVariables(s.cfg.CSSVarPrefix),
		Assets:  collectAssets(selection),
	}, nil
}

func (s *Selector) ensureManifest() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}

	manifest, err := s.loader.Load(s.cfg.Path)
	if err != nil {
		return fmt.Errorf("load theme manifest from %s: %w", s.cfg.Path, err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, s.cfg.Name) {
		normalized.Name = strings.TrimSpace(s.cfg.Name)
	}
	if normalized.Name == "" {
		return fmt.Errorf("theme name required for manifest registration")
	}

	if err := s.registry.Register(&normalized); err != nil {
		return fmt.Errorf("register theme manifest: %w", err)
	}
	s.loaded = true
	return nil
}

// SplitAssets partitions theme asset paths into stylesheets and scripts by
// extension. Assets of any other kind are dropped.
func SplitAssets(assets []string) (stylesheets, scripts []string) {
	for _, asset := range assets {
		switch strings.ToLower(path.Ext(asset)) {
		case ".css":
			stylesheets = append(stylesheets, asset)
		case ".js", ".mjs":
			scripts = append(scripts, asset)
		}
	}
	return stylesheets, scripts
}

// collectAssets merges the manifest's base asset files with any
// variant-specific overrides.
func collectAssets(selection *gotheme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	files := selection.Manifest.Assets.Files
	if variant := strings.TrimSpace(selection.Variant); variant != "" {
		if v, ok := selection.Manifest.Variants[variant]; ok && len(v.Assets.Files) > 0 {
			merged := make(map[string]string, len(files)+len(v.Assets.Files))
			for key, path := range files {
				merged[key] = path
			}
			for key, path := range v.Assets.Files {
				merged[key] = path
			}
			files = merged
		}
	}

	var assets []string
	for _, path := range files {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			assets = append(assets, trimmed)
		}
	}
	return assets
}
