// Command serve runs the site over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denudev/sitekit/cmd/internal/bootstrap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	addr := fs.String("addr", "", "Listen address (overrides configuration)")
	pagesDir := fs.String("pages-dir", "", "Directory holding page sources")
	fragmentsDir := fs.String("fragments-dir", "", "Directory holding fragment partials")
	themePath := fs.String("theme", "", "Path to the theme manifest directory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := bootstrap.BuildModule(bootstrap.Options{
		ConfigPath:   *configPath,
		Addr:         *addr,
		PagesDir:     *pagesDir,
		FragmentsDir: *fragmentsDir,
		ThemePath:    *themePath,
	})
	if err != nil {
		return err
	}
	defer func() { _ = module.Module.Close(context.Background()) }()

	srv := module.Module.Server()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		timeout := module.Config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown after %s: %w", sig, err)
		}
		return nil
	}
}
