package table

import (
	"fmt"

	"github.com/openrend/rend/internal/config"
)

// Column describes one rendered table column. Immutable after the layout
// is built.
type Column struct {
	Name       string `json:"name"`
	WidthPX    int    `json:"width_px"`
	Sortable   bool   `json:"sortable"`
	Filterable bool   `json:"filterable"`
	Deletable  bool   `json:"deletable"`
	Wrap       bool   `json:"wrap"`
	AlignLeft  bool   `json:"align_left"`
	Tooltip    string `json:"tooltip,omitempty"`
}

// Layout is the derived, immutable description of a dataset for one render
// pass.
type Layout struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns"`
	PageSize    int      `json:"page_size"`
	RowHeightPX int      `json:"row_height_px"`
	FontSizePX  int      `json:"font_size_px"`
}

// Document pairs a layout with the row data it renders.
type Document struct {
	Layout Layout     `json:"layout"`
	Rows   [][]string `json:"rows"`
}

// FrameLayoutFactory builds a Document from a frame source using the
// configured layout defaults.
type FrameLayoutFactory struct {
	Options config.TableConfig
}

func (f FrameLayoutFactory) Build(src FrameSource) (*Document, error) {
	frame, err := src.Frame()
	if err != nil {
		return nil, fmt.Errorf("frame source %q: %w", src.Name(), err)
	}
	return f.build(frame, src.Name(), "", nil)
}

func (f FrameLayoutFactory) build(frame *Frame, title, desc string, tooltips map[string]string) (*Document, error) {
	numeric := frame.NumericColumns()
	columns := make([]Column, len(frame.Columns))
	for i, name := range frame.Columns {
		col := Column{
			Name:       name,
			WidthPX:    f.Options.ColumnWidthPX,
			Sortable:   f.Options.ColumnSort,
			Filterable: f.Options.ColumnFilter,
			Deletable:  f.Options.ColumnDelete,
			Wrap:       f.Options.CellWrap,
			AlignLeft:  !numeric[i],
			Tooltip:    name,
		}
		if tip, ok := tooltips[name]; ok {
			col.Tooltip = tip
		}
		columns[i] = col
	}

	return &Document{
		Layout: Layout{
			Title:       title,
			Description: desc,
			Columns:     columns,
			PageSize:    f.Options.PageSize,
			RowHeightPX: f.Options.RowHeightPX,
			FontSizePX:  f.Options.FontSizePX,
		},
		Rows: frame.Rows,
	}, nil
}

// DescriberLayoutFactory builds a Document from a described frame. The
// pre-computed per-column metadata is rendered as header tooltips rather
// than recomputed.
type DescriberLayoutFactory struct {
	Options config.TableConfig
	// ColumnMetaFormat formats the column name and its metadata value.
	ColumnMetaFormat string
}

const defaultColumnMetaFormat = "%s: %s"

func (f DescriberLayoutFactory) Build(d *FrameDescriber) (*Document, error) {
	frame, err := d.Source.Frame()
	if err != nil {
		return nil, fmt.Errorf("describer %q: %w", d.Name(), err)
	}

	format := f.ColumnMetaFormat
	if format == "" {
		format = defaultColumnMetaFormat
	}
	tooltips := make(map[string]string, len(d.ColumnMeta))
	for name, meta := range d.ColumnMeta {
		if meta != "" && meta != name {
			tooltips[name] = fmt.Sprintf(format, name, meta)
		}
	}

	inner := FrameLayoutFactory{Options: f.Options}
	return inner.build(frame, d.Name(), d.Desc, tooltips)
}
