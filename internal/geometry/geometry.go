package geometry

import "fmt"

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%d x %d", s.Width, s.Height)
}

// IsZero reports whether the size carries no dimensions.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Extent is a positioned rectangle in screen coordinates.
type Extent struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

func (e Extent) String() string {
	return fmt.Sprintf("%d x %d @ (%d, %d)", e.Width, e.Height, e.X, e.Y)
}

// Size returns the extent's dimensions without position.
func (e Extent) Size() Size {
	return Size{Width: e.Width, Height: e.Height}
}

// IsZero reports whether the extent carries no dimensions.
func (e Extent) IsZero() bool {
	return e.Width == 0 && e.Height == 0
}

// Contains reports whether the point (x, y) lies inside the extent.
func (e Extent) Contains(x, y int) bool {
	return x >= e.X && x < e.X+e.Width && y >= e.Y && y < e.Y+e.Height
}

// WithSize returns a copy of the extent with the given dimensions, keeping
// the position. Zero dimensions are ignored so callers can override width
// and height independently.
func (e Extent) WithSize(width, height int) Extent {
	out := e
	if width > 0 {
		out.Width = width
	}
	if height > 0 {
		out.Height = height
	}
	return out
}

// LeftHalf returns the left half of the extent, the conventional fallback
// target when no display configuration matches the detected screen.
func (e Extent) LeftHalf() Extent {
	return Extent{X: e.X, Y: e.Y, Width: e.Width / 2, Height: e.Height}
}
