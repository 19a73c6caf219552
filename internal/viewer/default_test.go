package viewer

import (
	"context"
	"strings"
	"testing"

	"github.com/openrend/rend/internal/geometry"
	"github.com/openrend/rend/internal/location"
)

func TestDefaultViewerDelegatesToHandler(t *testing.T) {
	var gotName string
	var gotArgs []string
	v := NewDefault(nil)
	v.run = func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}

	loc := location.Location{Kind: location.KindFile, Content: location.ContentOther, Value: "/tmp/notes.txt"}
	page, err := v.Show(context.Background(), loc, geometry.Extent{}, Options{})
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if page != nil {
		t.Fatalf("default viewer returned page %d", *page)
	}
	if gotName == "" {
		t.Fatal("no command executed")
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "/tmp/notes.txt") {
		t.Fatalf("command args %v missing the target path", gotArgs)
	}
}
