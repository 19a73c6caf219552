package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/openrend/rend/internal/geometry"
	"github.com/openrend/rend/internal/location"
)

// DefaultViewer hands the location to the OS default handler. It supports
// every content kind and ignores geometry, which makes it the universal
// registry fallback.
type DefaultViewer struct {
	logger *slog.Logger
	run    func(ctx context.Context, name string, args ...string) error
}

func NewDefault(logger *slog.Logger) *DefaultViewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultViewer{
		logger: logger,
		run: func(ctx context.Context, name string, args ...string) error {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			if err != nil {
				return fmt.Errorf("%s: %w: %s", name, err, out)
			}
			return nil
		},
	}
}

func (v *DefaultViewer) Supports() []location.ContentKind {
	return []location.ContentKind{
		location.ContentPdf,
		location.ContentWeb,
		location.ContentTabular,
		location.ContentOther,
	}
}

func (v *DefaultViewer) Show(ctx context.Context, loc location.Location, _ geometry.Extent, _ Options) (*int, error) {
	ref := loc.Value
	if loc.Kind == location.KindURL {
		ref = loc.URL()
	}
	name, args := openCommand(ref)
	v.logger.Debug("opening with default handler", "ref", ref, "cmd", name)
	if err := v.run(ctx, name, args...); err != nil {
		return nil, &InteractionError{Step: "open with default handler", Err: err}
	}
	return nil, nil
}

func openCommand(ref string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{ref}
	case "windows":
		return "cmd", []string{"/c", "start", "", ref}
	default:
		return "xdg-open", []string{ref}
	}
}
