package table

import (
	"fmt"
	"strconv"
)

// FrameDescriber pairs a frame source with descriptive metadata: a dataset
// description and per-column annotations shown as header tooltips.
type FrameDescriber struct {
	Source     FrameSource
	Title      string
	Desc       string
	ColumnMeta map[string]string
}

func (d *FrameDescriber) Name() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Source.Name()
}

// Describer groups one or more described frames shown together.
type Describer struct {
	Name       string
	Describers []*FrameDescriber
}

// Describe computes per-column summary metadata for a frame: count, mean,
// min and max for numeric columns, count and distinct for the rest.
func Describe(frame *Frame) map[string]string {
	numeric := frame.NumericColumns()
	meta := make(map[string]string, len(frame.Columns))

	for i, name := range frame.Columns {
		if numeric[i] {
			meta[name] = describeNumeric(frame, i)
		} else {
			meta[name] = describeText(frame, i)
		}
	}
	return meta
}

func describeNumeric(frame *Frame, col int) string {
	var count int
	var sum, minV, maxV float64
	for _, row := range frame.Rows {
		if col >= len(row) || row[col] == "" {
			continue
		}
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			continue
		}
		if count == 0 {
			minV, maxV = v, v
		} else {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		sum += v
		count++
	}
	if count == 0 {
		return "count=0"
	}
	return fmt.Sprintf("count=%d mean=%.4g min=%.4g max=%.4g",
		count, sum/float64(count), minV, maxV)
}

func describeText(frame *Frame, col int) string {
	count := 0
	distinct := map[string]struct{}{}
	for _, row := range frame.Rows {
		if col >= len(row) || row[col] == "" {
			continue
		}
		count++
		distinct[row[col]] = struct{}{}
	}
	return fmt.Sprintf("count=%d distinct=%d", count, len(distinct))
}

// NewFrameDescriber computes metadata for a frame and wraps it for the
// describer layout path.
func NewFrameDescriber(frame *Frame, desc string) *FrameDescriber {
	return &FrameDescriber{
		Source:     NewCachedFrameSource(frame, ""),
		Desc:       desc,
		ColumnMeta: Describe(frame),
	}
}
