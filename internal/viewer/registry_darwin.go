//go:build darwin

package viewer

import (
	"log/slog"

	"github.com/openrend/rend/internal/config"
)

func registerPlatform(r *Registry, cfg config.ViewerConfig, logger *slog.Logger) {
	bridge := NewOsascriptBridge(cfg, logger)
	r.Register("darwin", NewScripted(bridge, cfg, logger))
}
