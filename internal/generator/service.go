// Package generator exports the site as static artifacts: every page in
// every language, plus theme assets, a sitemap, and a build manifest that
// lets repeat runs skip unchanged outputs.
package generator

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/internal/pages"
	"github.com/denudev/sitekit/internal/render"
	"github.com/denudev/sitekit/internal/themes"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// ErrServiceDisabled indicates the generator feature gate is off.
var ErrServiceDisabled = errors.New("generator: service disabled")

// Config controls one export run.
type Config struct {
	OutputDir       string
	CanonicalHost   string
	Languages       []string
	DefaultLanguage string
	Variant         string
	CleanFirst      bool
}

// Dependencies carries the collaborators a build renders through.
type Dependencies struct {
	Collection *pages.Collection
	Renderer   *pages.Renderer
	Layout     *render.Layout
	Pipeline   *render.Pipeline
	Translator interfaces.Translator
	Themes     *themes.Selector
	ThemeFS    fs.FS
	Logger     interfaces.Logger
}

// BuildOptions filters one build invocation.
type BuildOptions struct {
	Force     bool
	Languages []string
	Routes    []string
}

// BuildResult summarizes a completed build.
type BuildResult struct {
	PagesRendered int
	PagesSkipped  int
	AssetsCopied  int
	Outputs       []string
	Duration      time.Duration
}

// Service exports the site.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildAssets(ctx context.Context) (int, error)
}

type service struct {
	cfg    Config
	deps   Dependencies
	writer artifactWriter
	logger interfaces.Logger
}

// NewService constructs a generator writing to the configured output
// directory.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	writer, err := newDirWriter(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	return newServiceWithWriter(cfg, deps, writer), nil
}

func newServiceWithWriter(cfg Config, deps Dependencies, writer artifactWriter) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{cfg: cfg, deps: deps, writer: writer, logger: logger}
}

// NewDisabledService returns a service that rejects every build.
func NewDisabledService() Service {
	return disabledService{}
}

type disabledService struct{}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildAssets(context.Context) (int, error) {
	return 0, ErrServiceDisabled
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	start := time.Now()

	if s.cfg.CleanFirst {
		for _, lang := range s.cfg.Languages {
			if strings.EqualFold(lang, s.cfg.DefaultLanguage) {
				continue
			}
			if err := s.writer.RemoveAll(ctx, lang); err != nil {
				return nil, fmt.Errorf("generator: clean %s: %w", lang, err)
			}
		}
		if err := s.writer.RemoveAll(ctx, "assets"); err != nil {
			return nil, fmt.Errorf("generator: clean assets: %w", err)
		}
	}

	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return nil, err
	}

	languages := opts.Languages
	if len(languages) == 0 {
		languages = s.cfg.Languages
	}

	result := &BuildResult{}
	env := environments.Detect(s.cfg.CanonicalHost)

	for _, doc := range s.deps.Collection.All() {
		if len(opts.Routes) > 0 && !containsRoute(opts.Routes, doc.Route) {
			continue
		}
		for _, lang := range languages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			output := outputPath(doc.Route, lang, s.cfg.DefaultLanguage)
			rendered, err := s.renderPage(ctx, doc, env, lang)
			if err != nil {
				return nil, fmt.Errorf("generator: render %s (%s): %w", doc.Route, lang, err)
			}

			sum := checksum(rendered)
			key := pageKey(doc.Route, lang)
			if prior, ok := manifest.Pages[key]; ok && !opts.Force && prior.Checksum == sum {
				result.PagesSkipped++
				continue
			}

			if err := s.writer.WriteFile(ctx, output, rendered); err != nil {
				return nil, fmt.Errorf("generator: write %s: %w", output, err)
			}
			manifest.Pages[key] = manifestPage{
				Route:      doc.Route,
				Language:   lang,
				Output:     output,
				Checksum:   sum,
				RenderedAt: time.Now().UTC(),
			}
			result.PagesRendered++
			result.Outputs = append(result.Outputs, output)
		}
	}

	copied, err := s.buildAssets(ctx, manifest)
	if err != nil {
		return nil, err
	}
	result.AssetsCopied = copied

	if err := s.writeSitemap(ctx, env, languages); err != nil {
		return nil, err
	}

	manifest.GeneratedAt = time.Now().UTC()
	if err := s.storeManifest(ctx, manifest); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	s.logger.Info("generator.build.done",
		"rendered", result.PagesRendered,
		"skipped", result.PagesSkipped,
		"assets", result.AssetsCopied,
		"duration", result.Duration.String(),
	)
	return result, nil
}

func (s *service) BuildAssets(ctx context.Context) (int, error) {
	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return 0, err
	}
	copied, err := s.buildAssets(ctx, manifest)
	if err != nil {
		return 0, err
	}
	manifest.GeneratedAt = time.Now().UTC()
	if err := s.storeManifest(ctx, manifest); err != nil {
		return 0, err
	}
	return copied, nil
}

func (s *service) renderPage(ctx context.Context, doc *pages.Document, env environments.Context, lang string) ([]byte, error) {
	body, err := s.deps.Renderer.Render(doc)
	if err != nil {
		return nil, err
	}

	data := render.LayoutData{
		Lang:        lang,
		Title:       s.deps.Translator.Translate(lang, doc.FrontMatter.Title),
		Description: s.deps.Translator.Translate(lang, doc.FrontMatter.Description),
		Canonical:   env.Origin() + doc.Route,
		Body:        template.HTML(body),
	}
	if s.deps.Themes != nil {
		if themeCtx, err := s.deps.Themes.Context(s.cfg.Variant); err == nil {
			data.Stylesheets, data.Scripts = themes.SplitAssets(themeCtx.Assets)
		}
	}

	shell, err := s.deps.Layout.Execute(data)
	if err != nil {
		return nil, err
	}

	tree, err := dom.ParseString(shell)
	if err != nil {
		return nil, err
	}

	req := render.Request{
		Env:      env,
		Language: lang,
		Variant:  s.cfg.Variant,
	}
	if err := s.deps.Pipeline.Render(ctx, tree, req); err != nil {
		return nil, err
	}

	out, err := dom.Render(tree)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (s *service) buildAssets(ctx context.Context, manifest *buildManifest) (int, error) {
	if s.deps.Themes == nil || s.deps.ThemeFS == nil {
		return 0, nil
	}

	themeCtx, err := s.deps.Themes.Context(s.cfg.Variant)
	if err != nil {
		return 0, fmt.Errorf("generator: theme assets: %w", err)
	}

	copied := 0
	for _, asset := range themeCtx.Assets {
		source := strings.TrimPrefix(asset, "/")
		data, err := fs.ReadFile(s.deps.ThemeFS, source)
		if err != nil {
			s.logger.Warn("generator.asset.missing", "asset", source, "error", err)
			continue
		}

		output := "assets/" + source
		sum := checksum(data)
		if prior, ok := manifest.Assets[source]; ok && prior.Checksum == sum {
			continue
		}
		if err := s.writer.WriteFile(ctx, output, data); err != nil {
			return copied, fmt.Errorf("generator: write asset %s: %w", output, err)
		}
		manifest.Assets[source] = manifestAsset{
			Source:   source,
			Output:   output,
			Checksum: sum,
			CopiedAt: time.Now().UTC(),
		}
		copied++
	}
	return copied, nil
}

func (s *service) writeSitemap(ctx context.Context, env environments.Context, languages []string) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, doc := range s.deps.Collection.All() {
		for _, lang := range languages {
			loc := env.Origin() + "/" + strings.TrimPrefix(outputPath(doc.Route, lang, s.cfg.DefaultLanguage), "/")
			loc = strings.TrimSuffix(loc, "index.html")
			b.WriteString("  <url><loc>")
			b.WriteString(loc)
			b.WriteString("</loc></url>\n")
		}
	}
	b.WriteString("</urlset>\n")
	return s.writer.WriteFile(ctx, "sitemap.xml", []byte(b.String()))
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	data, err := s.writer.ReadFile(ctx, manifestFileName)
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) storeManifest(ctx context.Context, manifest *buildManifest) error {
	data, err := manifest.encode()
	if err != nil {
		return fmt.Errorf("generator: encode manifest: %w", err)
	}
	return s.writer.WriteFile(ctx, manifestFileName, data)
}

func containsRoute(routes []string, route string) bool {
	for _, candidate := range routes {
		if strings.EqualFold(strings.TrimSpace(candidate), route) {
			return true
		}
	}
	return false
}
