package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/location"
	"github.com/openrend/rend/internal/render"
	"github.com/openrend/rend/internal/screen"
	"github.com/openrend/rend/internal/server"
	"github.com/openrend/rend/internal/viewer"
)

func runShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rend show [options] <path-or-url> [<path-or-url>...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "References may also be given as a single comma-delimited list.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/rend/config.yaml)")
	display := fs.Int("display", -1, "Display index to show on (default: configured default)")
	width := fs.Int("width", 0, "Override window width in pixels")
	height := fs.Int("height", 0, "Override window height in pixels")
	page := fs.Int("page", 0, "Target page for paged content")
	updatePage := fs.Bool("update-page", false, "Re-read the viewer's current page before navigating")
	refresh := fs.Bool("refresh", false, "Reload a reused browser tab instead of reassigning its URL")
	reposition := fs.Bool("always-reposition", false, "Apply geometry to reused windows too")
	kind := fs.String("kind", "", "Force location kind: file or url (default: inferred)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	refs := splitRefs(fs.Args())
	if len(refs) == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := newLogger(cfg)

	opts := render.Options{
		Width:            *width,
		Height:           *height,
		Refresh:          *refresh,
		AlwaysReposition: *reposition,
	}
	if *display >= 0 {
		opts.Display = display
	}
	if *page > 0 {
		opts.Page = page
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "update-page" {
			opts.UpdatePage = updatePage
		}
	})
	switch *kind {
	case "":
	case "file":
		k := location.KindFile
		opts.KindHint = &k
	case "url":
		k := location.KindURL
		opts.KindHint = &k
	default:
		fmt.Fprintf(os.Stderr, "unknown location kind %q (want file or url)\n", *kind)
		return 2
	}

	screens, err := screen.NewProvider()
	if err != nil {
		logger.Warn("no display detection available", "err", err)
		screens = noScreens{}
	}

	srv := server.NewManager(cfg.Server, logger)
	// The browser fetches a published table page only after the open
	// action returns, so hold the server until the page has been served.
	defer func() {
		waitCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.StartTimeout())
		defer cancel()
		if err := srv.WaitRendered(waitCtx); err != nil {
			logger.Warn("table page not confirmed rendered", "err", err)
		}
		srv.Shutdown()
	}()
	manager := render.New(cfg, logger, screens, viewer.NewRegistry(cfg.Viewer, logger), srv)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(refs) > 1 {
		if err := manager.ShowAll(ctx, refs, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	resolved, err := manager.Show(ctx, refs[0], opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if resolved != nil {
		fmt.Println(*resolved)
	}
	return 0
}

// splitRefs flattens comma-delimited reference lists, so both
// "show a.pdf b.pdf" and "show a.pdf,b.pdf" name two locations.
func splitRefs(args []string) []string {
	var refs []string
	for _, arg := range args {
		for _, ref := range strings.Split(arg, ",") {
			if ref = strings.TrimSpace(ref); ref != "" {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// noScreens stands in when no display detection backend is available;
// geometry falls back to configured displays only.
type noScreens struct{}

func (noScreens) Displays(context.Context) ([]screen.Display, error) {
	return nil, fmt.Errorf("display detection unavailable")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}
