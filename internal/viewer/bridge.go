package viewer

import (
	"context"

	"github.com/openrend/rend/internal/geometry"
)

// BrowserWindow is the live tab state of one browser window, read back
// from the OS on every reconciliation pass.
type BrowserWindow struct {
	ID      int
	TabURLs []string
}

// ScriptBridge is the narrow surface onto native GUI scripting. Each
// method is one parameterized procedure returning simple values; all
// match/reuse/reposition decisions stay on this side so they can be tested
// against a fake bridge.
type ScriptBridge interface {
	// PreviewFrontTitle returns the title of the PDF viewer's front
	// window, used to recover the current page.
	PreviewFrontTitle(ctx context.Context) (string, error)
	// OpenFile hands path to the PDF viewer.
	OpenFile(ctx context.Context, path string) error
	// ActivateApp brings the named application to the foreground.
	ActivateApp(ctx context.Context, app string) error
	// SetFrontWindowBounds positions the app's front window in one
	// absolute assignment.
	SetFrontWindowBounds(ctx context.Context, app string, ext geometry.Extent) error
	// SelectMenu walks a menu path in the PDF viewer.
	SelectMenu(ctx context.Context, menu, item string) error
	// GoToPage drives the PDF viewer's go-to-page keyboard sequence.
	GoToPage(ctx context.Context, page int) error

	// BrowserWindows enumerates the browser's open windows and their tab
	// URLs in tab order.
	BrowserWindows(ctx context.Context) ([]BrowserWindow, error)
	// SetTabURL reassigns the URL of one tab in place.
	SetTabURL(ctx context.Context, windowID, tab int, url string) error
	// ReloadActiveTab reloads the window's active tab, preserving its
	// scroll and page state.
	ReloadActiveTab(ctx context.Context, windowID int) error
	// ForwardKeystroke sends the browser's history-forward shortcut.
	ForwardKeystroke(ctx context.Context) error
	// RaiseWindow brings the window to the front.
	RaiseWindow(ctx context.Context, windowID int) error
	// SetWindowBounds positions the window.
	SetWindowBounds(ctx context.Context, windowID int, ext geometry.Extent) error
	// CreateWindow opens a new browser window with one tab per URL,
	// positioned to ext.
	CreateWindow(ctx context.Context, urls []string, ext geometry.Extent) error
}
