package segment

import "math"

// Polarity labels a prompt point as foreground or background.
// The numeric values match the label convention of the mask oracle.
type Polarity int

const (
	Negative Polarity = iota
	Positive
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "unknown"
	}
}

// ImagePoint is a location in source image pixels.
type ImagePoint struct{ X, Y float64 }

// CanvasPoint is a location on the display surface.
type CanvasPoint struct{ X, Y float64 }

// Size is a width/height pair in either space.
type Size struct{ W, H float64 }

// Empty reports whether the size has no area.
func (s Size) Empty() bool { return !(s.W > 0) || !(s.H > 0) }

// SizeOf returns an integer dimension pair as a Size.
func SizeOf(w, h int) Size { return Size{W: float64(w), H: float64(h)} }

// LabeledPoint is a single prompt point in image space.
type LabeledPoint struct {
	Position ImagePoint
	Label    Polarity
}

// Mask is a boolean grid in row-major order.
type Mask struct {
	Width, Height int
	Bits          []bool
}

// NewMask allocates an empty mask. Non-positive dimensions yield an empty grid.
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Mask{Width: w, Height: h, Bits: make([]bool, w*h)}
}

// At reports the bit at x,y. Out-of-range coordinates read as false.
func (m *Mask) At(x, y int) bool {
	if m == nil || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set stores v at x,y. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if m == nil || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Bits[y*m.Width+x] = v
}

// Area counts the set bits.
func (m *Mask) Area() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// SameSize reports whether the mask covers exactly w x h pixels.
func (m *Mask) SameSize(w, h int) bool {
	return m != nil && m.Width == w && m.Height == h && len(m.Bits) == w*h
}

// IoU returns intersection over union of two equally sized masks.
// Two empty masks are considered identical.
func (m *Mask) IoU(o *Mask) float64 {
	if m == nil || o == nil || m.Width != o.Width || m.Height != o.Height {
		return 0
	}
	inter, union := 0, 0
	for i, a := range m.Bits {
		b := o.Bits[i]
		if a && b {
			inter++
		}
		if a || b {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// CandidateMask is one oracle proposal with its confidence.
type CandidateMask struct {
	Mask  *Mask
	Score float64
}

func validScore(s float64) bool { return !math.IsNaN(s) }
