package segment

import (
	"image"
	"math"
)

// Mapper converts between image space and canvas space for an image fitted and
// centered inside a canvas.
type Mapper struct {
	// AllowUpscale lets Fit return a scale above 1 for images smaller than the canvas.
	AllowUpscale bool
}

// Fit returns the aspect preserving scale that fits img inside canvas.
func (m Mapper) Fit(canvas, img Size) (float64, error) {
	if canvas.Empty() || img.Empty() {
		return 0, ErrLayoutNotReady
	}
	scale := math.Min(canvas.W/img.W, canvas.H/img.H)
	if !m.AllowUpscale && scale > 1 {
		scale = 1
	}
	return scale, nil
}

// Offset returns the centering offset of an image drawn at scale.
func Offset(canvas, img Size, scale float64) CanvasPoint {
	return CanvasPoint{
		X: (canvas.W - img.W*scale) / 2,
		Y: (canvas.H - img.H*scale) / 2,
	}
}

// ToCanvas maps an image point onto the canvas.
func (m Mapper) ToCanvas(p ImagePoint, canvas, img Size, scale float64) CanvasPoint {
	off := Offset(canvas, img, scale)
	return CanvasPoint{X: p.X*scale + off.X, Y: p.Y*scale + off.Y}
}

// ToImage is the inverse of ToCanvas. The result may lie outside the image.
func (m Mapper) ToImage(p CanvasPoint, canvas, img Size, scale float64) (ImagePoint, error) {
	if !(scale > 0) {
		return ImagePoint{}, ErrLayoutNotReady
	}
	off := Offset(canvas, img, scale)
	return ImagePoint{X: (p.X - off.X) / scale, Y: (p.Y - off.Y) / scale}, nil
}

// Viewport is one computed layout of an image inside a canvas.
type Viewport struct {
	Canvas Size
	Image  Size
	Scale  float64
	Offset CanvasPoint
}

// Viewport fits img into canvas and captures the result.
func (m Mapper) Viewport(canvas, img Size) (Viewport, error) {
	scale, err := m.Fit(canvas, img)
	if err != nil {
		return Viewport{}, err
	}
	return Viewport{Canvas: canvas, Image: img, Scale: scale, Offset: Offset(canvas, img, scale)}, nil
}

func (v Viewport) ToCanvas(p ImagePoint) CanvasPoint {
	return CanvasPoint{X: p.X*v.Scale + v.Offset.X, Y: p.Y*v.Scale + v.Offset.Y}
}

func (v Viewport) ToImage(p CanvasPoint) (ImagePoint, error) {
	if !(v.Scale > 0) {
		return ImagePoint{}, ErrLayoutNotReady
	}
	return ImagePoint{X: (p.X - v.Offset.X) / v.Scale, Y: (p.Y - v.Offset.Y) / v.Scale}, nil
}

// ScaledRect is the integer canvas rectangle covered by the scaled image.
// Width and height are at least one pixel.
func (v Viewport) ScaledRect() image.Rectangle {
	w := int(math.Max(1, math.Round(v.Image.W*v.Scale)))
	h := int(math.Max(1, math.Round(v.Image.H*v.Scale)))
	x := int(math.Round(v.Offset.X))
	y := int(math.Round(v.Offset.Y))
	return image.Rect(x, y, x+w, y+h)
}
