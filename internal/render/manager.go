// Package render is the entry point that ties classification, geometry,
// the tabular pipeline and viewer dispatch together.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/geometry"
	"github.com/openrend/rend/internal/location"
	"github.com/openrend/rend/internal/screen"
	"github.com/openrend/rend/internal/table"
	"github.com/openrend/rend/internal/viewer"
)

// GeometryNotFoundError reports a display index with neither configured
// nor detected bounds. Callers fall back to the primary display and warn
// rather than fail.
type GeometryNotFoundError struct {
	Index int
}

func (e *GeometryNotFoundError) Error() string {
	return fmt.Sprintf("no configured or detected display with index %d", e.Index)
}

// Options for one show request.
type Options struct {
	// Display selects a physical screen. Nil uses the configured default.
	Display *int
	// Width and Height override the resolved geometry's size. Zero keeps
	// the resolved value.
	Width  int
	Height int
	// Page is the target page for paged content.
	Page *int
	// UpdatePage re-reads the viewer's current page before navigating.
	// Nil uses the configured default.
	UpdatePage *bool
	// Refresh reloads reused browser tabs instead of reassigning URLs.
	Refresh bool
	// AlwaysReposition applies geometry to reused windows.
	AlwaysReposition bool
	// KindHint forces the location kind instead of inferring it.
	KindHint *location.Kind
}

// Manager resolves a reference or dataset to a viewer invocation.
type Manager struct {
	cfg     *config.Config
	logger  *slog.Logger
	screens screen.Provider
	viewers *viewer.Registry
	server  Publisher
	osID    string
}

func New(cfg *config.Config, logger *slog.Logger, screens screen.Provider, viewers *viewer.Registry, server Publisher) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:     cfg,
		logger:  logger,
		screens: screens,
		viewers: viewers,
		server:  server,
		osID:    runtime.GOOS,
	}
}

// Show classifies ref, resolves geometry and a capable viewer, and shows
// it. Returns the resolved page for paged content.
func (m *Manager) Show(ctx context.Context, ref string, opts Options) (*int, error) {
	loc, err := location.Classify(ref, opts.KindHint)
	if err != nil {
		return nil, err
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	if loc.Content == location.ContentTabular {
		if path, ok := loc.Path(); ok && table.IsSupportedPath(path) {
			return nil, m.showTabularPath(ctx, path, opts)
		}
	}
	loc = m.coerceWebExtension(loc)
	return m.dispatch(ctx, loc, opts)
}

// ShowAll shows several references. When every reference resolves to a
// web location and the platform viewer can batch, they land in one window
// with one tab each; otherwise each is shown in turn.
func (m *Manager) ShowAll(ctx context.Context, refs []string, opts Options) error {
	locs := make([]location.Location, 0, len(refs))
	allWeb := true
	for _, ref := range refs {
		loc, err := location.Classify(ref, opts.KindHint)
		if err != nil {
			return err
		}
		if err := loc.Validate(); err != nil {
			return err
		}
		loc = m.coerceWebExtension(loc)
		if loc.Kind != location.KindURL || loc.Content != location.ContentWeb {
			allWeb = false
		}
		locs = append(locs, loc)
	}

	if allWeb && len(locs) > 1 {
		if batch, ok := m.viewers.Resolve(m.osID, location.ContentWeb).(viewer.BatchViewer); ok {
			urls := make([]string, len(locs))
			for i, loc := range locs {
				urls[i] = loc.URL()
			}
			return batch.ShowAll(ctx, urls, m.resolveGeometry(ctx, opts))
		}
	}
	for _, loc := range locs {
		if _, err := m.dispatch(ctx, loc, opts); err != nil {
			return err
		}
	}
	return nil
}

// ShowFrame renders an in-memory dataset through the tabular pipeline.
func (m *Manager) ShowFrame(ctx context.Context, src table.FrameSource, opts Options) error {
	t := FrameTransmuter{
		Layouts: table.FrameLayoutFactory{Options: m.cfg.Table},
		Server:  m.server,
	}
	loc, err := t.Transmute(ctx, src)
	if err != nil {
		return err
	}
	_, err = m.dispatch(ctx, loc, opts)
	return err
}

// ShowDescriber renders a dataset with pre-computed column metadata.
func (m *Manager) ShowDescriber(ctx context.Context, d *table.FrameDescriber, opts Options) error {
	t := DescriberTransmuter{
		Layouts: table.DescriberLayoutFactory{Options: m.cfg.Table},
		Server:  m.server,
	}
	loc, err := t.Transmute(ctx, d)
	if err != nil {
		return err
	}
	_, err = m.dispatch(ctx, loc, opts)
	return err
}

// showTabularPath publishes every sheet of a tabular file. Multi-sheet
// workbooks go through the batch path so each sheet gets its own tab.
func (m *Manager) showTabularPath(ctx context.Context, path string, opts Options) error {
	sources, err := table.SourcesFromPath(path)
	if err != nil {
		return err
	}
	t := FrameTransmuter{
		Layouts: table.FrameLayoutFactory{Options: m.cfg.Table},
		Server:  m.server,
	}
	urls := make([]string, 0, len(sources))
	var last location.Location
	for _, src := range sources {
		loc, err := t.Transmute(ctx, src)
		if err != nil {
			return err
		}
		urls = append(urls, loc.URL())
		last = loc
	}

	if len(urls) > 1 {
		if batch, ok := m.viewers.Resolve(m.osID, location.ContentWeb).(viewer.BatchViewer); ok {
			return batch.ShowAll(ctx, urls, m.resolveGeometry(ctx, opts))
		}
	}
	_, err = m.dispatch(ctx, last, opts)
	return err
}

func (m *Manager) dispatch(ctx context.Context, loc location.Location, opts Options) (*int, error) {
	ext := m.resolveGeometry(ctx, opts)
	v := m.viewers.Resolve(m.osID, loc.Content)
	m.logger.Debug("dispatching", "ref", loc.Value, "content", loc.Content, "geometry", ext)
	return v.Show(ctx, loc, ext, m.viewerOptions(opts))
}

func (m *Manager) viewerOptions(opts Options) viewer.Options {
	updatePage := m.cfg.Viewer.UpdatePage
	if opts.UpdatePage != nil {
		updatePage = *opts.UpdatePage
	}
	return viewer.Options{
		Page:             opts.Page,
		UpdatePage:       updatePage,
		Refresh:          opts.Refresh,
		AlwaysReposition: opts.AlwaysReposition,
	}
}

// coerceWebExtension reroutes files whose extension is configured for the
// web viewer, e.g. html or svg, as file URLs.
func (m *Manager) coerceWebExtension(loc location.Location) location.Location {
	path, ok := loc.Path()
	if !ok || loc.Kind != location.KindFile {
		return loc
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !m.cfg.Viewer.IsWebExtension(ext) {
		return loc
	}
	coerced := loc.AsURL()
	coerced.Content = location.ContentWeb
	return coerced
}

// resolveGeometry picks the target extent: explicit display index, else
// the configured default display, preferring configured bounds over
// detected ones. An unknown index falls back to the primary display with
// a warning instead of failing the show.
func (m *Manager) resolveGeometry(ctx context.Context, opts Options) geometry.Extent {
	index := m.cfg.DefaultDisplay
	if opts.Display != nil {
		index = *opts.Display
	}

	ext, err := m.displayExtent(ctx, index)
	if err != nil {
		m.logger.Warn("falling back to primary display", "err", err)
		if primary, perr := m.displayExtent(ctx, -1); perr == nil {
			ext = primary
		} else {
			ext = fallbackExtent
		}
	}
	return ext.WithSize(opts.Width, opts.Height)
}

// fallbackExtent is used when neither configuration nor detection yields
// any display at all.
var fallbackExtent = geometry.Extent{Width: 1280, Height: 1024}

// displayExtent resolves bounds for a display index; index -1 means the
// primary detected display. Detected displays yield their left half so a
// shown window does not cover the whole screen.
func (m *Manager) displayExtent(ctx context.Context, index int) (geometry.Extent, error) {
	if index >= 0 {
		if d, ok := m.cfg.DisplayByIndex(index); ok {
			return d.Extent(), nil
		}
	}
	displays, err := m.screens.Displays(ctx)
	if err != nil {
		return geometry.Extent{}, err
	}
	if index >= 0 {
		if d, ok := screen.ByIndex(displays, index); ok {
			return d.Bounds.LeftHalf(), nil
		}
		return geometry.Extent{}, &GeometryNotFoundError{Index: index}
	}
	if d, ok := screen.Primary(displays); ok {
		return d.Bounds.LeftHalf(), nil
	}
	return geometry.Extent{}, &GeometryNotFoundError{Index: index}
}
