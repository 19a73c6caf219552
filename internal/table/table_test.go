package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openrend/rend/internal/config"
)

func sampleFrame() *Frame {
	return &Frame{
		Name:    "states",
		Columns: []string{"state", "population", "area"},
		Rows: [][]string{
			{"Illinois", "12812508", "57914"},
			{"Iowa", "3190369", "56273"},
			{"Wisconsin", "5893718", "65496"},
		},
	}
}

func TestNumericColumns(t *testing.T) {
	numeric := sampleFrame().NumericColumns()
	want := []bool{false, true, true}
	for i, w := range want {
		if numeric[i] != w {
			t.Fatalf("column %d numeric = %v, want %v", i, numeric[i], w)
		}
	}
}

func TestFrameLayoutFactory(t *testing.T) {
	factory := FrameLayoutFactory{Options: config.Default().Table}
	src := NewCachedFrameSource(sampleFrame(), "")

	doc, err := factory.Build(src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Layout.Title != "states" {
		t.Fatalf("title = %q", doc.Layout.Title)
	}
	if len(doc.Layout.Columns) != 3 {
		t.Fatalf("columns = %d", len(doc.Layout.Columns))
	}
	if !doc.Layout.Columns[0].AlignLeft {
		t.Fatal("text column should be left aligned")
	}
	if doc.Layout.Columns[1].AlignLeft {
		t.Fatal("numeric column should not be left aligned")
	}
	if doc.Layout.PageSize != 100 {
		t.Fatalf("page size = %d", doc.Layout.PageSize)
	}
	if len(doc.Rows) != 3 {
		t.Fatalf("rows = %d", len(doc.Rows))
	}
}

func TestDescriberLayoutFactoryTooltips(t *testing.T) {
	d := NewFrameDescriber(sampleFrame(), "state statistics")
	factory := DescriberLayoutFactory{Options: config.Default().Table}

	doc, err := factory.Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Layout.Description != "state statistics" {
		t.Fatalf("description = %q", doc.Layout.Description)
	}

	var popCol *Column
	for i := range doc.Layout.Columns {
		if doc.Layout.Columns[i].Name == "population" {
			popCol = &doc.Layout.Columns[i]
		}
	}
	if popCol == nil {
		t.Fatal("population column missing")
	}
	if !strings.Contains(popCol.Tooltip, "mean=") {
		t.Fatalf("tooltip = %q, want numeric summary", popCol.Tooltip)
	}
}

func TestDescribe(t *testing.T) {
	meta := Describe(sampleFrame())
	if got := meta["state"]; got != "count=3 distinct=3" {
		t.Fatalf("state meta = %q", got)
	}
	if !strings.Contains(meta["area"], "min=5.627e+04") && !strings.Contains(meta["area"], "min=56273") {
		t.Fatalf("area meta = %q", meta["area"])
	}
}

func TestPathFrameSourceCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	content := "name,score\nalpha,1\nbeta,2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sources, err := SourcesFromPath(path)
	if err != nil {
		t.Fatalf("SourcesFromPath: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("sources = %d", len(sources))
	}
	frame, err := sources[0].Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(frame.Columns) != 2 || frame.Columns[0] != "name" {
		t.Fatalf("columns = %v", frame.Columns)
	}
	if len(frame.Rows) != 2 || frame.Rows[1][1] != "2" {
		t.Fatalf("rows = %v", frame.Rows)
	}
}

func TestPathFrameSourceTSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.tsv")
	if err := os.WriteFile(path, []byte("a\tb\n1\t2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src := &PathFrameSource{Path: path}
	frame, err := src.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if frame.Rows[0][1] != "2" {
		t.Fatalf("rows = %v", frame.Rows)
	}
}

func TestSourcesFromPathRejectsUnknown(t *testing.T) {
	if _, err := SourcesFromPath("data.parquet"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if IsSupportedPath("data.parquet") {
		t.Fatal("parquet should not be supported")
	}
	if !IsSupportedPath("data.xlsx") {
		t.Fatal("xlsx should be supported")
	}
}
