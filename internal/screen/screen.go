// Package screen enumerates physical displays and their pixel bounds.
package screen

import (
	"context"
	"fmt"

	"github.com/openrend/rend/internal/geometry"
)

// Display describes a physical display. Index uniquely identifies a display
// for the duration of one process run; indices are not stable across
// reboots or display reconfiguration.
type Display struct {
	Index  int
	Name   string
	Bounds geometry.Extent
}

func (d Display) String() string {
	return fmt.Sprintf("display %d (%s): %s", d.Index, d.Name, d.Bounds)
}

// Provider is a pure query over the machine's display set.
type Provider interface {
	Displays(ctx context.Context) ([]Display, error)
}

// Primary returns the display with the lowest index, conventionally the
// primary screen.
func Primary(displays []Display) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}
	best := displays[0]
	for _, d := range displays[1:] {
		if d.Index < best.Index {
			best = d
		}
	}
	return best, true
}

// ByIndex finds the display with the given index.
func ByIndex(displays []Display, index int) (Display, bool) {
	for _, d := range displays {
		if d.Index == index {
			return d, true
		}
	}
	return Display{}, false
}
