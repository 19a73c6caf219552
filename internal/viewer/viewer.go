// Package viewer selects and drives the native application that renders a
// location: the OS default handler, a scripted PDF reader or browser, or a
// Chromium instance over the DevTools protocol. Reconciliation against live
// window state happens here; the OS is always queried, never cached.
package viewer

import (
	"context"
	"fmt"

	"github.com/openrend/rend/internal/geometry"
	"github.com/openrend/rend/internal/location"
)

// Options tune a single show call.
type Options struct {
	// Page is the target page for paged content. Nil keeps the page the
	// viewer opens to.
	Page *int
	// UpdatePage re-reads the viewer's current page before navigating.
	UpdatePage bool
	// Refresh reloads a reused browser tab instead of reassigning its URL.
	Refresh bool
	// AlwaysReposition applies geometry to reused windows too. New windows
	// are always positioned.
	AlwaysReposition bool
}

// Viewer renders locations of the content kinds it supports. Show returns
// the resolved current page for paged content, nil otherwise.
type Viewer interface {
	Supports() []location.ContentKind
	Show(ctx context.Context, loc location.Location, ext geometry.Extent, opts Options) (*int, error)
}

// BatchViewer can put several URLs into one window, one tab each.
type BatchViewer interface {
	ShowAll(ctx context.Context, urls []string, ext geometry.Extent) error
}

// UnsupportedContentKindError reports a content kind no viewer handles.
// Guarded against even though the default-viewer fallback makes it
// unreachable through the registry.
type UnsupportedContentKindError struct {
	OS   string
	Kind location.ContentKind
}

func (e *UnsupportedContentKindError) Error() string {
	return fmt.Sprintf("no viewer for %s content on %s", e.Kind, e.OS)
}

// InteractionError reports a native UI automation step that still failed
// after its local retry.
type InteractionError struct {
	Step string
	Err  error
}

func (e *InteractionError) Error() string {
	return fmt.Sprintf("viewer interaction %q failed: %v", e.Step, e.Err)
}

func (e *InteractionError) Unwrap() error { return e.Err }
