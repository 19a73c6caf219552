package screen

import (
	"testing"

	"github.com/openrend/rend/internal/geometry"
)

func TestPrimary(t *testing.T) {
	displays := []Display{
		{Index: 2, Name: "DP-2", Bounds: geometry.Extent{X: 1920, Width: 1920, Height: 1080}},
		{Index: 0, Name: "DP-1", Bounds: geometry.Extent{Width: 1920, Height: 1080}},
	}

	primary, ok := Primary(displays)
	if !ok {
		t.Fatal("expected a primary display")
	}
	if primary.Index != 0 {
		t.Fatalf("primary index = %d, want 0", primary.Index)
	}

	if _, ok := Primary(nil); ok {
		t.Fatal("expected no primary for empty set")
	}
}

func TestByIndex(t *testing.T) {
	displays := []Display{
		{Index: 0, Name: "DP-1"},
		{Index: 1, Name: "HDMI-1"},
	}

	d, ok := ByIndex(displays, 1)
	if !ok || d.Name != "HDMI-1" {
		t.Fatalf("ByIndex(1) = %+v, ok = %v", d, ok)
	}
	if _, ok := ByIndex(displays, 5); ok {
		t.Fatal("expected miss for unknown index")
	}
}
