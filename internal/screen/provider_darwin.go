//go:build darwin

package screen

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/openrend/rend/internal/geometry"
)

// ScriptProvider reads the desktop bounds through the Finder scripting
// surface. macOS exposes no per-monitor query without private APIs, so the
// provider reports the combined desktop as a single display.
type ScriptProvider struct{}

var _ Provider = (*ScriptProvider)(nil)

func NewScriptProvider() *ScriptProvider { return &ScriptProvider{} }

func (p *ScriptProvider) Displays(ctx context.Context) ([]Display, error) {
	out, err := exec.CommandContext(ctx,
		"osascript", "-e",
		`tell application "Finder" to get bounds of window of desktop`).Output()
	if err != nil {
		return nil, fmt.Errorf("desktop bounds query failed: %w", err)
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) != 4 {
		return nil, fmt.Errorf("unexpected desktop bounds %q", strings.TrimSpace(string(out)))
	}
	vals := make([]int, 4)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("unexpected desktop bounds %q: %w", strings.TrimSpace(string(out)), err)
		}
		vals[i] = v
	}

	return []Display{{
		Index: 0,
		Name:  "desktop",
		Bounds: geometry.Extent{
			X:      vals[0],
			Y:      vals[1],
			Width:  vals[2] - vals[0],
			Height: vals[3] - vals[1],
		},
	}}, nil
}

// NewProvider returns the platform display provider.
func NewProvider() (Provider, error) {
	return NewScriptProvider(), nil
}
