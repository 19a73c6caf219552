package viewer

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/geometry"
	"github.com/openrend/rend/internal/location"
)

const previewApp = "Preview"

// pageTitlePattern extracts the current page from the PDF viewer's window
// title, e.g. "report.pdf (Page 3 of 12)".
var pageTitlePattern = regexp.MustCompile(`Page (\d+) of (\d+)`)

// ScriptedViewer drives the native PDF reader and browser through a
// ScriptBridge. It reconciles desired state against the live window set:
// an existing matching window is reused and nudged, a missing one is
// created and positioned.
type ScriptedViewer struct {
	bridge ScriptBridge
	cfg    config.ViewerConfig
	logger *slog.Logger

	// pageCount and sleep are injectable for tests.
	pageCount func(path string) (int, error)
	sleep     func(d time.Duration)
}

func NewScripted(bridge ScriptBridge, cfg config.ViewerConfig, logger *slog.Logger) *ScriptedViewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptedViewer{
		bridge:    bridge,
		cfg:       cfg,
		logger:    logger,
		pageCount: api.PageCountFile,
		sleep:     time.Sleep,
	}
}

func (v *ScriptedViewer) Supports() []location.ContentKind {
	return []location.ContentKind{location.ContentPdf, location.ContentWeb}
}

func (v *ScriptedViewer) Show(ctx context.Context, loc location.Location, ext geometry.Extent, opts Options) (*int, error) {
	if loc.Content == location.ContentPdf {
		if _, ok := loc.Path(); ok {
			return v.showPDF(ctx, loc, ext, opts)
		}
	}
	if err := v.showURL(ctx, loc, ext, opts); err != nil {
		return nil, err
	}
	return nil, nil
}

// showPDF walks the viewer from closed to ready: open, settle, position,
// normalize display mode, sync the page.
func (v *ScriptedViewer) showPDF(ctx context.Context, loc location.Location, ext geometry.Extent, opts Options) (*int, error) {
	path, _ := loc.Path()

	current := 0
	if opts.UpdatePage {
		if title, err := v.bridge.PreviewFrontTitle(ctx); err == nil {
			if n, ok := parsePageTitle(title); ok {
				current = n
			}
		} else {
			// No front window yet. Not fatal, there is no page to keep.
			v.logger.Debug("no current page readable", "err", err)
		}
	}

	if err := v.retry(ctx, "open file", func() error {
		return v.bridge.OpenFile(ctx, path)
	}); err != nil {
		return nil, err
	}
	// The open action has no completion signal.
	v.sleep(v.cfg.SettleDelay())

	if err := v.retry(ctx, "activate viewer", func() error {
		return v.bridge.ActivateApp(ctx, previewApp)
	}); err != nil {
		return nil, err
	}
	if err := v.retry(ctx, "position window", func() error {
		return v.bridge.SetFrontWindowBounds(ctx, previewApp, ext)
	}); err != nil {
		return nil, err
	}

	// The app's default display mode varies by user preference; force
	// single-page continuous scroll so tiling is consistent.
	if err := v.retry(ctx, "set single page mode", func() error {
		return v.bridge.SelectMenu(ctx, "View", "Single Page")
	}); err != nil {
		return nil, err
	}
	if err := v.retry(ctx, "set continuous scroll", func() error {
		return v.bridge.SelectMenu(ctx, "View", "Continuous Scroll")
	}); err != nil {
		return nil, err
	}

	target := current
	if opts.Page != nil {
		target = *opts.Page
	}
	if target > 0 {
		if n, err := v.pageCount(path); err == nil && target > n {
			v.logger.Warn("page past end of document", "page", target, "pages", n)
			target = n
		}
		// Navigating to the page already shown only causes flicker.
		if target != current {
			if err := v.retry(ctx, "go to page", func() error {
				return v.bridge.GoToPage(ctx, target)
			}); err != nil {
				return nil, err
			}
		}
		return &target, nil
	}
	return nil, nil
}

func (v *ScriptedViewer) showURL(ctx context.Context, loc location.Location, ext geometry.Extent, opts Options) error {
	url := v.targetURL(loc)
	windows, err := v.bridge.BrowserWindows(ctx)
	if err != nil {
		return &InteractionError{Step: "enumerate browser windows", Err: err}
	}

	// A match is a window with exactly that one tab. Windows carrying
	// extra tabs never match, even when one tab has the right URL.
	match := -1
	for _, w := range windows {
		if len(w.TabURLs) == 1 && w.TabURLs[0] == url {
			match = w.ID
			break
		}
	}
	if match < 0 {
		if err := v.retry(ctx, "create browser window", func() error {
			return v.bridge.CreateWindow(ctx, []string{url}, ext)
		}); err != nil {
			return err
		}
		return v.switchBack(ctx)
	}

	v.logger.Debug("reusing browser window", "window", match, "url", url)
	if opts.Refresh {
		// Reload keeps the tab's scroll and page state; reassigning the
		// URL would reset it.
		if err := v.retry(ctx, "reload tab", func() error {
			return v.bridge.ReloadActiveTab(ctx, match)
		}); err != nil {
			return err
		}
		v.sleep(v.cfg.SettleDelay())
		if err := v.retry(ctx, "forward", func() error {
			return v.bridge.ForwardKeystroke(ctx)
		}); err != nil {
			return err
		}
	}
	if err := v.retry(ctx, "raise window", func() error {
		return v.bridge.RaiseWindow(ctx, match)
	}); err != nil {
		return err
	}
	// A reused window keeps its geometry; the user may have moved it.
	if opts.AlwaysReposition {
		if err := v.retry(ctx, "position window", func() error {
			return v.bridge.SetWindowBounds(ctx, match, ext)
		}); err != nil {
			return err
		}
	}
	return v.switchBack(ctx)
}

// ShowAll puts urls into one window, one tab per URL in order. A window
// matches only when its full tab list equals urls position by position.
func (v *ScriptedViewer) ShowAll(ctx context.Context, urls []string, ext geometry.Extent) error {
	targets := make([]string, len(urls))
	for i, u := range urls {
		targets[i] = mangleURL(u, v.cfg.MangleURLs)
	}

	windows, err := v.bridge.BrowserWindows(ctx)
	if err != nil {
		return &InteractionError{Step: "enumerate browser windows", Err: err}
	}
	match := -1
	for _, w := range windows {
		if slices.Equal(w.TabURLs, targets) {
			match = w.ID
			break
		}
	}
	if match < 0 {
		if err := v.retry(ctx, "create browser window", func() error {
			return v.bridge.CreateWindow(ctx, targets, ext)
		}); err != nil {
			return err
		}
		return v.switchBack(ctx)
	}

	// Overwriting tabs in place is cheaper than closing and reopening.
	for i, u := range targets {
		tab := i
		url := u
		if err := v.retry(ctx, "set tab url", func() error {
			return v.bridge.SetTabURL(ctx, match, tab, url)
		}); err != nil {
			return err
		}
	}
	if err := v.retry(ctx, "raise window", func() error {
		return v.bridge.RaiseWindow(ctx, match)
	}); err != nil {
		return err
	}
	if err := v.retry(ctx, "position window", func() error {
		return v.bridge.SetWindowBounds(ctx, match, ext)
	}); err != nil {
		return err
	}
	return v.switchBack(ctx)
}

func (v *ScriptedViewer) targetURL(loc location.Location) string {
	return mangleURL(loc.URL(), v.cfg.MangleURLs)
}

func (v *ScriptedViewer) switchBack(ctx context.Context) error {
	if v.cfg.SwitchBackApp == "" {
		return nil
	}
	return v.retry(ctx, "switch back", func() error {
		return v.bridge.ActivateApp(ctx, v.cfg.SwitchBackApp)
	})
}

// retry runs one UI step, retrying after a settle delay when the step
// targets a window or menu item that is not there yet.
func (v *ScriptedViewer) retry(ctx context.Context, step string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= v.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			v.logger.Debug("retrying viewer step", "step", step, "attempt", attempt)
			v.sleep(v.cfg.SettleDelay())
		}
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return &InteractionError{Step: step, Err: err}
}

func parsePageTitle(title string) (int, bool) {
	m := pageTitlePattern.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// mangleURL appends a trailing slash to any URL not already ending in one,
// matching how Safari reports tab URLs so equality against live tab state
// holds.
func mangleURL(url string, enabled bool) string {
	if !enabled || strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}
