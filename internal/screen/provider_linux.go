//go:build linux

package screen

import (
	"context"
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/openrend/rend/internal/geometry"
)

// X11Provider enumerates displays through XRandR, adjusting the primary
// display bounds for the window manager's work area (panels, docks).
type X11Provider struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var _ Provider = (*X11Provider)(nil)

// NewX11Provider opens a fresh X11 connection.
func NewX11Provider() (*X11Provider, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &X11Provider{xu: xu, root: xu.RootWin()}, nil
}

// Close disconnects from the X server.
func (p *X11Provider) Close() {
	if p != nil && p.xu != nil {
		p.xu.Conn().Close()
	}
}

// Displays queries active CRTCs and returns one Display per enabled output.
func (p *X11Provider) Displays(ctx context.Context) ([]Display, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := randr.Init(p.xu.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(p.xu.Conn(), p.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var displays []Display
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(p.xu.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("screen%d", i)
		if out, err := randr.GetOutputInfo(p.xu.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		displays = append(displays, Display{
			Index: i,
			Name:  name,
			Bounds: geometry.Extent{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].Index < displays[j].Index
	})

	p.clampToWorkArea(displays)
	return displays, nil
}

// clampToWorkArea intersects each display with the EWMH work area for the
// current desktop so windows are not positioned under panels.
func (p *X11Provider) clampToWorkArea(displays []Display) {
	workArea, err := ewmh.WorkareaGet(p.xu)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktop := 0
	if cur, err := ewmh.CurrentDesktopGet(p.xu); err == nil && int(cur) < len(workArea) {
		desktop = int(cur)
	}
	wa := workArea[desktop]
	waExt := geometry.Extent{
		X:      int(wa.X),
		Y:      int(wa.Y),
		Width:  int(wa.Width),
		Height: int(wa.Height),
	}

	for i := range displays {
		b := &displays[i].Bounds
		x1 := max(b.X, waExt.X)
		y1 := max(b.Y, waExt.Y)
		x2 := min(b.X+b.Width, waExt.X+waExt.Width)
		y2 := min(b.Y+b.Height, waExt.Y+waExt.Height)
		if x2 > x1 && y2 > y1 {
			b.X, b.Y, b.Width, b.Height = x1, y1, x2-x1, y2-y1
		}
	}
}

// NewProvider returns the platform display provider.
func NewProvider() (Provider, error) {
	return NewX11Provider()
}
