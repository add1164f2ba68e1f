// Package bootstrap builds a configured sitekit module for the CLI tools.
package bootstrap

import (
	"fmt"
	"strings"

	sitekit "github.com/denudev/sitekit"
	"github.com/denudev/sitekit/internal/di"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// Options captures configuration shared by the CLI bootstraps.
type Options struct {
	ConfigPath     string
	PagesDir       string
	FragmentsDir   string
	ThemePath      string
	OutputDir      string
	Languages      []string
	Addr           string
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the sitekit module for CLI consumers.
type Module struct {
	Module *sitekit.Module
	Config sitekit.Config
}

// BuildModule constructs a sitekit module from the layered configuration and
// any flag overrides.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := sitekit.LoadConfig(strings.TrimSpace(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if dir := strings.TrimSpace(opts.PagesDir); dir != "" {
		cfg.Pages.Enabled = true
		cfg.Pages.Dir = dir
	}
	if dir := strings.TrimSpace(opts.FragmentsDir); dir != "" {
		cfg.Fragments.Dir = dir
	}
	if path := strings.TrimSpace(opts.ThemePath); path != "" {
		cfg.Features.Themes = true
		cfg.Themes.Path = path
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Features.Generator = true
		cfg.Generator.Enabled = true
		cfg.Generator.OutputDir = dir
	}
	if len(opts.Languages) > 0 {
		cfg.I18N.Languages = cloneStrings(opts.Languages)
	}
	if addr := strings.TrimSpace(opts.Addr); addr != "" {
		cfg.Server.Addr = addr
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := sitekit.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise sitekit module: %w", err)
	}

	return &Module{Module: module, Config: cfg}, nil
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func cloneStrings(values []string) []string {
	return append([]string(nil), values...)
}
