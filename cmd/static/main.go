// Command static exports the site as static artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/denudev/sitekit/cmd/internal/bootstrap"
	"github.com/denudev/sitekit/internal/commands/staticcmd"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("static: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("static", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	pagesDir := fs.String("pages-dir", "", "Directory holding page sources")
	fragmentsDir := fs.String("fragments-dir", "", "Directory holding fragment partials")
	themePath := fs.String("theme", "", "Path to the theme manifest directory")
	outputDir := fs.String("output", "dist", "Output directory for generated artifacts")
	languages := fs.String("languages", "", "Comma separated language filter (defaults to configured languages)")
	routes := fs.String("routes", "", "Comma separated route filter (defaults to every page)")
	force := fs.Bool("force", false, "Rewrite artifacts even when checksums are unchanged")
	assetsOnly := fs.Bool("assets-only", false, "Copy theme assets without re-rendering pages")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := bootstrap.BuildModule(bootstrap.Options{
		ConfigPath:   *configPath,
		PagesDir:     *pagesDir,
		FragmentsDir: *fragmentsDir,
		ThemePath:    *themePath,
		OutputDir:    *outputDir,
	})
	if err != nil {
		return err
	}
	defer func() { _ = module.Module.Close(context.Background()) }()

	ctx := context.Background()
	service := module.Module.Generator()

	if *assetsOnly {
		handler := staticcmd.NewBuildAssetsHandler(service, nil)
		return handler.Execute(ctx, staticcmd.BuildAssetsCommand{
			ResultCallback: func(envelope staticcmd.ResultEnvelope) {
				fmt.Printf("assets copied: %v\n", envelope.Metadata["copied"])
			},
		})
	}

	handler := staticcmd.NewBuildSiteHandler(service, nil)
	return handler.Execute(ctx, staticcmd.BuildSiteCommand{
		Languages: bootstrap.SplitList(*languages),
		Routes:    bootstrap.SplitList(*routes),
		Force:     *force,
		ResultCallback: func(envelope staticcmd.ResultEnvelope) {
			if envelope.Result == nil {
				return
			}
			fmt.Printf("rendered %d pages (%d unchanged, %d assets) in %s\n",
				envelope.Result.PagesRendered,
				envelope.Result.PagesSkipped,
				envelope.Result.AssetsCopied,
				envelope.Result.Duration,
			)
		},
	})
}
