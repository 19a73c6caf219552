package viewer

import (
	"context"
	"log/slog"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/geometry"
	"github.com/openrend/rend/internal/location"
)

// PageTarget is an open page tab reported by the DevTools endpoint.
type PageTarget struct {
	ID  string
	URL string
}

// DevToolsSession is the protocol surface the viewer drives. The real
// session speaks to a Chromium over chromedp.
type DevToolsSession interface {
	PageTargets(ctx context.Context) ([]PageTarget, error)
	CreateWindow(ctx context.Context, url string) (string, error)
	Reload(ctx context.Context, id string) error
	BringToFront(ctx context.Context, id string) error
	SetWindowBounds(ctx context.Context, id string, ext geometry.Extent) error
}

// DevToolsViewer drives a running Chromium over the DevTools protocol.
// Same reconciliation policy as the scripted web path, with one
// divergence: targets are matched per tab rather than per window, since
// the protocol exposes no window tab grouping.
type DevToolsViewer struct {
	cfg    config.ViewerConfig
	logger *slog.Logger
	dial   func(ctx context.Context) (DevToolsSession, context.CancelFunc, error)
}

func NewDevTools(cfg config.ViewerConfig, logger *slog.Logger) *DevToolsViewer {
	if logger == nil {
		logger = slog.Default()
	}
	v := &DevToolsViewer{cfg: cfg, logger: logger}
	v.dial = func(ctx context.Context) (DevToolsSession, context.CancelFunc, error) {
		allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, cfg.DevToolsURL)
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
		release := func() {
			cancelBrowser()
			cancelAlloc()
		}
		return &chromedpSession{browserCtx: browserCtx}, release, nil
	}
	return v
}

func (v *DevToolsViewer) Supports() []location.ContentKind {
	return []location.ContentKind{location.ContentWeb}
}

func (v *DevToolsViewer) Show(ctx context.Context, loc location.Location, ext geometry.Extent, opts Options) (*int, error) {
	url := mangleURL(loc.URL(), v.cfg.MangleURLs)

	sess, release, err := v.dial(ctx)
	if err != nil {
		return nil, &InteractionError{Step: "connect devtools endpoint", Err: err}
	}
	defer release()

	targets, err := sess.PageTargets(ctx)
	if err != nil {
		return nil, &InteractionError{Step: "enumerate browser targets", Err: err}
	}
	match := ""
	for _, t := range targets {
		if t.URL == url {
			match = t.ID
			break
		}
	}

	if match == "" {
		id, err := sess.CreateWindow(ctx, url)
		if err != nil {
			return nil, &InteractionError{Step: "create browser window", Err: err}
		}
		if err := sess.SetWindowBounds(ctx, id, ext); err != nil {
			return nil, &InteractionError{Step: "create browser window", Err: err}
		}
		return nil, nil
	}

	v.logger.Debug("reusing browser tab", "target", match, "url", url)
	if opts.Refresh {
		if err := sess.Reload(ctx, match); err != nil {
			return nil, &InteractionError{Step: "reuse browser tab", Err: err}
		}
	}
	if err := sess.BringToFront(ctx, match); err != nil {
		return nil, &InteractionError{Step: "reuse browser tab", Err: err}
	}
	if opts.AlwaysReposition {
		if err := sess.SetWindowBounds(ctx, match, ext); err != nil {
			return nil, &InteractionError{Step: "reuse browser tab", Err: err}
		}
	}
	return nil, nil
}

// chromedpSession runs each protocol call against the shared browser
// context, opening a per-target context where a call is tab scoped.
type chromedpSession struct {
	browserCtx context.Context
}

func (s *chromedpSession) PageTargets(_ context.Context) ([]PageTarget, error) {
	infos, err := chromedp.Targets(s.browserCtx)
	if err != nil {
		return nil, err
	}
	var targets []PageTarget
	for _, t := range infos {
		if t.Type == "page" {
			targets = append(targets, PageTarget{ID: string(t.TargetID), URL: t.URL})
		}
	}
	return targets, nil
}

func (s *chromedpSession) CreateWindow(_ context.Context, url string) (string, error) {
	var id target.ID
	err := chromedp.Run(s.browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		id, err = target.CreateTarget(url).WithNewWindow(true).Do(ctx)
		return err
	}))
	return string(id), err
}

func (s *chromedpSession) Reload(_ context.Context, id string) error {
	return s.runInTab(id, chromedp.Reload())
}

func (s *chromedpSession) BringToFront(_ context.Context, id string) error {
	return s.runInTab(id, page.BringToFront())
}

func (s *chromedpSession) SetWindowBounds(_ context.Context, id string, ext geometry.Extent) error {
	return chromedp.Run(s.browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		windowID, _, err := browser.GetWindowForTarget().WithTargetID(target.ID(id)).Do(ctx)
		if err != nil {
			return err
		}
		bounds := &browser.Bounds{
			Left:        int64(ext.X),
			Top:         int64(ext.Y),
			Width:       int64(ext.Width),
			Height:      int64(ext.Height),
			WindowState: browser.WindowStateNormal,
		}
		return browser.SetWindowBounds(windowID, bounds).Do(ctx)
	}))
}

func (s *chromedpSession) runInTab(id string, action chromedp.Action) error {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx, chromedp.WithTargetID(target.ID(id)))
	defer cancel()
	return chromedp.Run(tabCtx, action)
}
