package themes_test

import (
	"errors"
	"strings"
	"testing"

	gotheme "github.com/goliatone/go-theme"

	"github.com/denudev/sitekit/internal/themes"
)

type failingLoader struct {
	calls int
	err   error
}

func (f *failingLoader) Load(string) (*gotheme.Manifest, error) {
	f.calls++
	return nil, f.err
}

func TestSplitAssetsPartitionsByExtension(t *testing.T) {
	stylesheets, scripts := themes.SplitAssets([]string{
		"css/theme.css",
		"js/toggle.js",
		"js/boot.mjs",
		"fonts/sans.woff2",
	})

	if len(stylesheets) != 1 || stylesheets[0] != "css/theme.css" {
		t.Fatalf("expected single stylesheet got %v", stylesheets)
	}
	if len(scripts) != 2 || scripts[0] != "js/toggle.js" || scripts[1] != "js/boot.mjs" {
		t.Fatalf("expected scripts in order got %v", scripts)
	}
}

func TestSelectorPropagatesLoaderFailure(t *testing.T) {
	loader := &failingLoader{err: errors.New("manifest missing")}
	selector := themes.NewSelector(themes.SelectorConfig{
		Name: "denu",
		Path: "themes/denu",
	}, loader)

	_, err := selector.Context(themes.VariantLight)
	if err == nil {
		t.Fatal("expected load error")
	}
	if !strings.Contains(err.Error(), "manifest missing") {
		t.Fatalf("expected wrapped loader error got %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected one load attempt got %d", loader.calls)
	}
}
