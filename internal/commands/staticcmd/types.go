// Package staticcmd exposes the static export operations as command
// messages.
package staticcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/denudev/sitekit/internal/generator"
)

const (
	buildSiteMessageType   = "sitekit.static.build"
	buildAssetsMessageType = "sitekit.static.assets"
)

// ResultCallback receives build results. The callback is optional and is
// invoked synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a static command execution.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand executes a generator build using the provided filters.
type BuildSiteCommand struct {
	Languages      []string       `json:"languages,omitempty"`
	Routes         []string       `json:"routes,omitempty"`
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures language and route filters are well-formed.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	for _, lang := range m.Languages {
		if strings.TrimSpace(lang) == "" {
			errs["languages"] = validation.NewError("sitekit.static.build.language_invalid", "languages must not contain empty values")
			break
		}
	}
	for _, route := range m.Routes {
		if strings.TrimSpace(route) == "" {
			errs["routes"] = validation.NewError("sitekit.static.build.route_invalid", "routes must not contain empty values")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BuildAssetsCommand copies theme assets without re-rendering pages.
type BuildAssetsCommand struct {
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildAssetsCommand) Type() string { return buildAssetsMessageType }

// Validate implements command.Message validation; assets builds carry no
// arguments.
func (BuildAssetsCommand) Validate() error { return nil }
