// Package table converts in-memory tabular datasets into immutable layout
// documents served by the rendering server.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Frame is an in-memory tabular dataset: ordered columns and string cells.
type Frame struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// NumericColumns reports, per column, whether every non-empty cell parses
// as a number. Used for alignment and describer statistics.
func (f *Frame) NumericColumns() []bool {
	numeric := make([]bool, len(f.Columns))
	for i := range numeric {
		numeric[i] = true
	}
	for _, row := range f.Rows {
		for i := 0; i < len(numeric) && i < len(row); i++ {
			if !numeric[i] || row[i] == "" {
				continue
			}
			if _, err := strconv.ParseFloat(row[i], 64); err != nil {
				numeric[i] = false
			}
		}
	}
	return numeric
}

// FrameSource produces a frame on demand.
type FrameSource interface {
	Name() string
	Frame() (*Frame, error)
}

// CachedFrameSource wraps an already-materialized frame.
type CachedFrameSource struct {
	frame *Frame
	name  string
}

// NewCachedFrameSource wraps a frame; name overrides the frame's own name
// when non-empty.
func NewCachedFrameSource(frame *Frame, name string) *CachedFrameSource {
	return &CachedFrameSource{frame: frame, name: name}
}

func (s *CachedFrameSource) Name() string {
	if s.name != "" {
		return s.name
	}
	if s.frame.Name != "" {
		return s.frame.Name
	}
	return "Untitled"
}

func (s *CachedFrameSource) Frame() (*Frame, error) { return s.frame, nil }

// PathFrameSource reads a frame from a CSV or TSV file.
type PathFrameSource struct {
	Path string
}

func (s *PathFrameSource) Name() string { return s.Path }

func (s *PathFrameSource) Frame() (*Frame, error) {
	ext := strings.ToLower(filepath.Ext(s.Path))
	switch ext {
	case ".csv":
		return readDelimited(s.Path, ',')
	case ".tsv":
		return readDelimited(s.Path, '\t')
	default:
		return nil, fmt.Errorf("unsupported tabular extension %q", ext)
	}
}

// IsSupportedPath reports whether SourcesFromPath can ingest the file.
func IsSupportedPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".xlsx":
		return true
	}
	return false
}

// SourcesFromPath builds frame sources for a tabular file. Workbooks fan
// out to one source per sheet; delimited files yield a single source.
func SourcesFromPath(path string) ([]FrameSource, error) {
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		return sheetSources(path)
	}
	if !IsSupportedPath(path) {
		return nil, fmt.Errorf("unsupported tabular file %q", path)
	}
	return []FrameSource{&PathFrameSource{Path: path}}, nil
}

func readDelimited(path string, comma rune) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return &Frame{Name: path}, nil
	}
	return &Frame{Name: path, Columns: records[0], Rows: records[1:]}, nil
}

func sheetSources(path string) ([]FrameSource, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer wb.Close()

	var sources []FrameSource
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%s: sheet %q: %w", path, sheet, err)
		}
		frame := &Frame{Name: sheet}
		if len(rows) > 0 {
			frame.Columns = rows[0]
			frame.Rows = rows[1:]
		}
		sources = append(sources, NewCachedFrameSource(frame, sheet))
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	return sources, nil
}
