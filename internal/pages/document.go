// Package pages loads the site's page documents: Markdown or HTML sources
// with YAML frontmatter, keyed by route.
package pages

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/google/uuid"

	"github.com/denudev/sitekit/internal/identity"
)

var (
	// ErrTitleRequired indicates a document without a title key.
	ErrTitleRequired = errors.New("pages: title is required")
	// ErrSlugInvalid indicates a frontmatter slug that is not URL safe.
	ErrSlugInvalid = errors.New("pages: slug is invalid")
)

// FrontMatter is the structured metadata of one page document.
type FrontMatter struct {
	Title       string         `yaml:"title"`
	Slug        string         `yaml:"slug"`
	Description string         `yaml:"description"`
	Template    string         `yaml:"template"`
	Nav         bool           `yaml:"nav"`
	NavOrder    int            `yaml:"nav_order"`
	Draft       bool           `yaml:"draft"`
	Date        time.Time      `yaml:"date"`
	Custom      map[string]any `yaml:",inline"`
}

// Document is one parsed page source. Body holds the raw Markdown or HTML
// without the frontmatter delimiters; rendering happens lazily.
type Document struct {
	ID           uuid.UUID
	FilePath     string
	Route        string
	Format       Format
	FrontMatter  FrontMatter
	Body         []byte
	LastModified time.Time
}

// Format discriminates page source encodings.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// FormatForPath maps a file extension to its source format. Unknown
// extensions are treated as HTML and passed through untouched.
func FormatForPath(path string) Format {
	switch strings.ToLower(fileExtension(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatHTML
	}
}

func fileExtension(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx:]
	}
	return ""
}

// ParseFrontMatter extracts metadata and body content from the provided
// source bytes. Sources without a frontmatter block yield zero metadata and
// the full body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("pages: parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}

// BuildDocument assembles a Document from a file path, raw content, and
// modification time.
func BuildDocument(path string, source []byte, modified time.Time) (*Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, fmt.Errorf("%w: %s", ErrTitleRequired, path)
	}

	return &Document{
		ID:           identity.PageUUID(path),
		FilePath:     path,
		Format:       FormatForPath(path),
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
	}, nil
}
