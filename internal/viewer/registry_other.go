//go:build !darwin

package viewer

import (
	"log/slog"

	"github.com/openrend/rend/internal/config"
)

// Only the default handler is available without a scripting bridge; a
// configured DevTools endpoint adds the Chromium viewer in NewRegistry.
func registerPlatform(_ *Registry, _ config.ViewerConfig, _ *slog.Logger) {}
