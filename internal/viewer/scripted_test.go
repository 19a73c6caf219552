package viewer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/openrend/rend/internal/config"
	"github.com/openrend/rend/internal/geometry"
	"github.com/openrend/rend/internal/location"
)

// fakeBridge records every scripting call and keeps an in-memory window
// set that CreateWindow appends to.
type fakeBridge struct {
	title    string
	titleErr error
	windows  []BrowserWindow
	nextID   int

	calls map[string]int
	// failures counts down per step; while positive the step errors.
	failures map[string]int

	goToPages []int
	created   [][]string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		nextID:   1,
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}
}

func (b *fakeBridge) step(name string) error {
	b.calls[name]++
	if b.failures[name] > 0 {
		b.failures[name]--
		return fmt.Errorf("%s unavailable", name)
	}
	return nil
}

func (b *fakeBridge) PreviewFrontTitle(context.Context) (string, error) {
	b.calls["title"]++
	return b.title, b.titleErr
}

func (b *fakeBridge) OpenFile(_ context.Context, _ string) error { return b.step("open") }

func (b *fakeBridge) ActivateApp(_ context.Context, _ string) error { return b.step("activate") }

func (b *fakeBridge) SetFrontWindowBounds(_ context.Context, _ string, _ geometry.Extent) error {
	return b.step("frontBounds")
}

func (b *fakeBridge) SelectMenu(_ context.Context, _, _ string) error { return b.step("menu") }

func (b *fakeBridge) GoToPage(_ context.Context, page int) error {
	b.goToPages = append(b.goToPages, page)
	return b.step("goToPage")
}

func (b *fakeBridge) BrowserWindows(context.Context) ([]BrowserWindow, error) {
	if err := b.step("list"); err != nil {
		return nil, err
	}
	return b.windows, nil
}

func (b *fakeBridge) SetTabURL(_ context.Context, windowID, tab int, url string) error {
	if err := b.step("setTab"); err != nil {
		return err
	}
	for i := range b.windows {
		if b.windows[i].ID == windowID && tab < len(b.windows[i].TabURLs) {
			b.windows[i].TabURLs[tab] = url
		}
	}
	return nil
}

func (b *fakeBridge) ReloadActiveTab(_ context.Context, _ int) error { return b.step("reload") }

func (b *fakeBridge) ForwardKeystroke(context.Context) error { return b.step("forward") }

func (b *fakeBridge) RaiseWindow(_ context.Context, _ int) error { return b.step("raise") }

func (b *fakeBridge) SetWindowBounds(_ context.Context, _ int, _ geometry.Extent) error {
	return b.step("bounds")
}

func (b *fakeBridge) CreateWindow(_ context.Context, urls []string, _ geometry.Extent) error {
	if err := b.step("create"); err != nil {
		return err
	}
	tabs := append([]string(nil), urls...)
	b.windows = append(b.windows, BrowserWindow{ID: b.nextID, TabURLs: tabs})
	b.nextID++
	b.created = append(b.created, tabs)
	return nil
}

func newTestViewer(b *fakeBridge, cfg config.ViewerConfig) *ScriptedViewer {
	v := NewScripted(b, cfg, nil)
	v.sleep = func(time.Duration) {}
	v.pageCount = func(string) (int, error) { return 100, nil }
	return v
}

func webLocation(t *testing.T, url string) location.Location {
	t.Helper()
	loc, err := location.Classify(url, nil)
	if err != nil {
		t.Fatalf("classify %q: %v", url, err)
	}
	return loc
}

func pdfLocation() location.Location {
	return location.Location{Kind: location.KindFile, Content: location.ContentPdf, Value: "/tmp/sample.pdf"}
}

var testExtent = geometry.Extent{X: 10, Y: 20, Width: 800, Height: 600}

func TestWebReuseIsIdempotent(t *testing.T) {
	b := newFakeBridge()
	v := newTestViewer(b, config.ViewerConfig{})
	loc := webLocation(t, "https://example.com/doc")
	ctx := context.Background()

	if _, err := v.Show(ctx, loc, testExtent, Options{}); err != nil {
		t.Fatalf("first show failed: %v", err)
	}
	if len(b.windows) != 1 {
		t.Fatalf("window count after first show = %d, want 1", len(b.windows))
	}
	if _, err := v.Show(ctx, loc, testExtent, Options{}); err != nil {
		t.Fatalf("second show failed: %v", err)
	}
	if len(b.windows) != 1 {
		t.Fatalf("second show created a window, count = %d", len(b.windows))
	}
	if b.calls["create"] != 1 {
		t.Fatalf("create called %d times, want 1", b.calls["create"])
	}
	if b.calls["raise"] == 0 {
		t.Fatal("reused window was not raised")
	}
}

func TestReusedWindowKeepsGeometry(t *testing.T) {
	for _, tc := range []struct {
		name       string
		reposition bool
		wantBounds int
	}{
		{"default leaves window alone", false, 0},
		{"always_reposition applies bounds", true, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := newFakeBridge()
			b.windows = []BrowserWindow{{ID: 7, TabURLs: []string{"https://example.com/doc"}}}
			v := newTestViewer(b, config.ViewerConfig{})

			_, err := v.Show(context.Background(), webLocation(t, "https://example.com/doc"),
				testExtent, Options{AlwaysReposition: tc.reposition})
			if err != nil {
				t.Fatalf("show failed: %v", err)
			}
			if b.calls["bounds"] != tc.wantBounds {
				t.Fatalf("bounds called %d times, want %d", b.calls["bounds"], tc.wantBounds)
			}
			if b.calls["create"] != 0 {
				t.Fatal("matching window was not reused")
			}
		})
	}
}

func TestRefreshReloadsInsteadOfReassigning(t *testing.T) {
	b := newFakeBridge()
	b.windows = []BrowserWindow{{ID: 3, TabURLs: []string{"https://example.com/app"}}}
	v := newTestViewer(b, config.ViewerConfig{})

	_, err := v.Show(context.Background(), webLocation(t, "https://example.com/app"),
		testExtent, Options{Refresh: true})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if b.calls["reload"] != 1 || b.calls["forward"] != 1 {
		t.Fatalf("reload=%d forward=%d, want 1 each", b.calls["reload"], b.calls["forward"])
	}
	if b.calls["setTab"] != 0 {
		t.Fatal("refresh must not reassign the tab URL")
	}
}

func TestWindowWithExtraTabsNeverMatches(t *testing.T) {
	b := newFakeBridge()
	b.windows = []BrowserWindow{{ID: 1, TabURLs: []string{"https://example.com/doc", "https://other.example"}}}
	v := newTestViewer(b, config.ViewerConfig{})

	_, err := v.Show(context.Background(), webLocation(t, "https://example.com/doc"), testExtent, Options{})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if b.calls["create"] != 1 {
		t.Fatalf("expected a new window, create called %d times", b.calls["create"])
	}
}

func TestBatchMatchIsOrderSensitive(t *testing.T) {
	urlA, urlB := "https://example.com/a", "https://example.com/b"
	b := newFakeBridge()
	b.windows = []BrowserWindow{{ID: 5, TabURLs: []string{urlA, urlB}}}
	v := newTestViewer(b, config.ViewerConfig{})
	ctx := context.Background()

	if err := v.ShowAll(ctx, []string{urlB, urlA}, testExtent); err != nil {
		t.Fatalf("reversed batch failed: %v", err)
	}
	if b.calls["create"] != 1 {
		t.Fatalf("[B, A] matched a [A, B] window; create called %d times", b.calls["create"])
	}
}

func TestBatchReuseOverwritesTabsAndPositions(t *testing.T) {
	urlA, urlB := "https://example.com/a", "https://example.com/b"
	b := newFakeBridge()
	b.windows = []BrowserWindow{{ID: 5, TabURLs: []string{urlA, urlB}}}
	v := newTestViewer(b, config.ViewerConfig{})

	if err := v.ShowAll(context.Background(), []string{urlA, urlB}, testExtent); err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if b.calls["create"] != 0 {
		t.Fatal("matching window was not reused")
	}
	if b.calls["setTab"] != 2 {
		t.Fatalf("setTab called %d times, want 2", b.calls["setTab"])
	}
	if b.calls["bounds"] != 1 {
		t.Fatalf("batch reuse must always position; bounds called %d times", b.calls["bounds"])
	}
}

func TestPageSkipWhenAlreadyOnTarget(t *testing.T) {
	b := newFakeBridge()
	b.title = "sample.pdf (Page 3 of 12)"
	v := newTestViewer(b, config.ViewerConfig{UpdatePage: true})

	page := 3
	got, err := v.Show(context.Background(), pdfLocation(), testExtent,
		Options{Page: &page, UpdatePage: true})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if len(b.goToPages) != 0 {
		t.Fatalf("go-to-page issued %v despite matching current page", b.goToPages)
	}
	if got == nil || *got != 3 {
		t.Fatalf("resolved page = %v, want 3", got)
	}
}

func TestFirstShowNavigatesToPage(t *testing.T) {
	b := newFakeBridge()
	b.titleErr = errors.New("no front window")
	v := newTestViewer(b, config.ViewerConfig{})

	page := 3
	got, err := v.Show(context.Background(), pdfLocation(), testExtent,
		Options{Page: &page, UpdatePage: true})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if len(b.goToPages) != 1 || b.goToPages[0] != 3 {
		t.Fatalf("goToPages = %v, want [3]", b.goToPages)
	}
	if b.calls["menu"] != 2 {
		t.Fatalf("menu actions = %d, want 2 (single page + continuous scroll)", b.calls["menu"])
	}
	if b.calls["frontBounds"] != 1 {
		t.Fatalf("window positioned %d times, want 1", b.calls["frontBounds"])
	}
	if got == nil || *got != 3 {
		t.Fatalf("resolved page = %v, want 3", got)
	}
}

func TestPageClampedToDocumentLength(t *testing.T) {
	b := newFakeBridge()
	v := newTestViewer(b, config.ViewerConfig{})
	v.pageCount = func(string) (int, error) { return 5, nil }

	page := 9
	got, err := v.Show(context.Background(), pdfLocation(), testExtent, Options{Page: &page})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if len(b.goToPages) != 1 || b.goToPages[0] != 5 {
		t.Fatalf("goToPages = %v, want [5]", b.goToPages)
	}
	if got == nil || *got != 5 {
		t.Fatalf("resolved page = %v, want 5", got)
	}
}

func TestSoftFailureRetriesOnce(t *testing.T) {
	b := newFakeBridge()
	b.failures["open"] = 1
	v := newTestViewer(b, config.ViewerConfig{RetryAttempts: 1})

	if _, err := v.Show(context.Background(), pdfLocation(), testExtent, Options{}); err != nil {
		t.Fatalf("show failed despite retry: %v", err)
	}
	if b.calls["open"] != 2 {
		t.Fatalf("open attempted %d times, want 2", b.calls["open"])
	}
}

func TestHardFailureSurfacesInteractionError(t *testing.T) {
	b := newFakeBridge()
	b.failures["open"] = 5
	v := newTestViewer(b, config.ViewerConfig{RetryAttempts: 1})

	_, err := v.Show(context.Background(), pdfLocation(), testExtent, Options{})
	var interactionErr *InteractionError
	if !errors.As(err, &interactionErr) {
		t.Fatalf("error = %v, want InteractionError", err)
	}
	if interactionErr.Step != "open file" {
		t.Fatalf("failed step = %q, want %q", interactionErr.Step, "open file")
	}
}

func TestSwitchBackActivatesConfiguredApp(t *testing.T) {
	b := newFakeBridge()
	v := newTestViewer(b, config.ViewerConfig{SwitchBackApp: "Terminal"})

	_, err := v.Show(context.Background(), webLocation(t, "https://example.com/doc"), testExtent, Options{})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if b.calls["activate"] != 1 {
		t.Fatalf("activate called %d times, want 1", b.calls["activate"])
	}
}

func TestParsePageTitle(t *testing.T) {
	tests := []struct {
		title string
		want  int
		ok    bool
	}{
		{"report.pdf (Page 3 of 12)", 3, true},
		{"report.pdf (Page 12 of 12)", 12, true},
		{"report.pdf", 0, false},
		{"", 0, false},
		{"Page of", 0, false},
	}
	for _, tc := range tests {
		got, ok := parsePageTitle(tc.title)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parsePageTitle(%q) = %d, %v; want %d, %v", tc.title, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMangleURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com", "https://example.com/"},
		{"http://example.com", "http://example.com/"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/path", "https://example.com/path/"},
		{"https://example.com?q=1", "https://example.com?q=1/"},
		{"file:///tmp/page.html", "file:///tmp/page.html/"},
	}
	for _, tc := range tests {
		if got := mangleURL(tc.url, true); got != tc.want {
			t.Errorf("mangleURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
	if got := mangleURL("https://example.com", false); got != "https://example.com" {
		t.Errorf("disabled mangle rewrote %q", got)
	}
}
