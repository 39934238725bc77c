// Command launchpad serves and administers a launchpad site document.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"launchpad/internal/adapters/api"
	"launchpad/internal/config"
	"launchpad/internal/intent"
	"launchpad/internal/launchpad"
	"launchpad/internal/observability"
	"launchpad/internal/resolver"
	"launchpad/internal/site"
	"launchpad/pkg/domain"
)

var exitFunc = os.Exit

const usage = `usage: launchpad [-config file] <command> [flags]

commands:
  serve             run the HTTP API and /metrics
  groups            print the resolved groups
  catalogs          print the catalogs
  add-group         add a group (-title)
  add-bookmark      add a bookmark (-url, -title, -group)
  count-bookmarks   count bookmarks for -url
  delete-bookmarks  delete bookmarks for -url
  seed              store a seed document as the original site (-file, -reset)
`

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("launchpad", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger, logCloser, err := observability.NewLogger(cfg.Log, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logCloser.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err := run(ctx, cfg, logger, cmd, rest, stdout, stderr); err != nil {
		var usageErr usageError
		if errors.As(err, &usageErr) {
			_, _ = fmt.Fprintf(stderr, "%v\n%s", err, usage)
			return 2
		}
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

// app bundles the collaborators every command needs.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	backend  site.Backend
	store    *site.Store
	adapter  *launchpad.Adapter
	registry *prometheus.Registry
}

func openApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	backend, err := site.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := seedIfEmpty(ctx, backend, cfg.Site.SeedFile, logger); err != nil {
		_ = backend.Close()
		return nil, err
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	store := site.NewStore(backend)
	adapter := launchpad.New(store, intent.NewLocalService(store),
		launchpad.WithLogger(logger),
		launchpad.WithMetrics(metrics),
		launchpad.WithMaxVersion(cfg.Site.MaxVersion),
		launchpad.WithResolverConfig(resolver.Config{
			DeviceClass: domain.DeviceClass(cfg.Device.Class),
			InPlace:     cfg.Navigation.InPlace,
		}),
	)
	return &app{cfg: cfg, logger: logger, backend: backend, store: store, adapter: adapter, registry: registry}, nil
}

func (a *app) Close() error { return a.store.Close() }

// seedIfEmpty stores the configured seed as the original document when the
// backend has none yet.
func seedIfEmpty(ctx context.Context, backend site.Backend, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	_, found, err := backend.LoadDocument(ctx, site.DocumentOriginal)
	if err != nil {
		return fmt.Errorf("check original site: %w", err)
	}
	if found {
		return nil
	}
	doc, err := site.LoadSeed(path)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "seeding original site", slog.String("file", path))
	return site.Seed(ctx, backend, doc, false)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, cmd string, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "", "group or bookmark title")
	url := fs.String("url", "", "bookmark url or shell hash")
	group := fs.String("group", "", "target group id (default group when empty)")
	file := fs.String("file", cfg.Site.SeedFile, "seed document (JSON or YAML)")
	reset := fs.Bool("reset", false, "also replace the personalized site")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	if cmd == "seed" {
		return runSeed(ctx, cfg, *file, *reset, stdout)
	}

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	switch cmd {
	case "serve":
		return a.serve(ctx)
	case "groups":
		groups, err := a.adapter.Groups(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, groups)
	case "catalogs":
		catalogs, err := a.adapter.Catalogs(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, catalogs)
	case "add-group":
		g, err := a.adapter.AddGroup(ctx, *title)
		if err != nil {
			return err
		}
		return printJSON(stdout, g)
	case "add-bookmark":
		var target *domain.Group
		if *group != "" {
			target = &domain.Group{ID: *group}
		}
		tile, err := a.adapter.AddBookmark(ctx, launchpad.Bookmark{URL: *url, Title: *title}, target)
		if err != nil {
			return err
		}
		return printJSON(stdout, tile)
	case "count-bookmarks":
		n, err := a.adapter.CountBookmarks(ctx, *url)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, n)
		return err
	case "delete-bookmarks":
		n, err := a.adapter.DeleteBookmarks(ctx, *url)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, n)
		return err
	default:
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}

func runSeed(ctx context.Context, cfg config.Config, path string, reset bool, stdout io.Writer) error {
	if path == "" {
		return usageError("seed requires -file")
	}
	doc, err := site.LoadSeed(path)
	if err != nil {
		return err
	}
	if err := site.CheckVersion(doc.Version, cfg.Site.MaxVersion); err != nil {
		return err
	}
	backend, err := site.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = backend.Close() }()
	if err := site.Seed(ctx, backend, doc, reset); err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "seeded %d groups, %d applications, %d catalogs\n", len(doc.Groups), len(doc.Applications), len(doc.Catalogs))
	return err
}

func (a *app) serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/", api.NewHandler(a.adapter, a.logger))
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.cfg.HTTP.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
