package viewer

import (
	"log/slog"
	"runtime"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/location"
)

// Registry maps (os, content kind) to a viewer. Resolution never fails:
// pairs with no specialized viewer get the default viewer, which opens
// anything through the OS handler. Adding an OS means registering viewers,
// never changing the lookup.
type Registry struct {
	viewers  map[string]map[location.ContentKind]Viewer
	fallback Viewer
}

// NewRegistry builds the registry for the given configuration. Which
// specialized viewers exist depends on the build platform and on whether a
// DevTools endpoint is configured.
func NewRegistry(cfg config.ViewerConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		viewers:  make(map[string]map[location.ContentKind]Viewer),
		fallback: NewDefault(logger),
	}
	registerPlatform(r, cfg, logger)
	if cfg.DevToolsURL != "" {
		// Explicit endpoint wins over the platform's scripted web viewer.
		r.Register(runtime.GOOS, NewDevTools(cfg, logger))
	}
	return r
}

// Register binds v to every content kind it supports on osID. Later
// registrations win.
func (r *Registry) Register(osID string, v Viewer) {
	byKind, ok := r.viewers[osID]
	if !ok {
		byKind = make(map[location.ContentKind]Viewer)
		r.viewers[osID] = byKind
	}
	for _, kind := range v.Supports() {
		byKind[kind] = v
	}
}

// Resolve returns the viewer for (osID, kind), falling back to the default
// viewer when none is registered.
func (r *Registry) Resolve(osID string, kind location.ContentKind) Viewer {
	if v, ok := r.viewers[osID][kind]; ok {
		return v
	}
	return r.fallback
}
