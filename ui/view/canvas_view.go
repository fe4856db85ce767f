package view

import (
	"image"
	"strconv"
	"strings"

	"github.com/soocke/clickmask-go/domain/segment"
	"github.com/soocke/clickmask-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasView shows rendered frames and reports clicks and size changes in
// canvas pixels.
type CanvasView interface {
	ShowFrame(img image.Image)
	Reset()
}

// CanvasHandlers receive canvas events on the Tk goroutine.
type CanvasHandlers struct {
	OnClick  func(pt segment.CanvasPoint, label segment.Polarity)
	OnResize func(w, h int)
}

type canvasView struct {
	label     *LabelWidget
	prevPhoto *Img // disposed before replacement so old frames are not retained
	width     int
	height    int
}

// NewCanvasView creates the drawing label at row of the root grid. Left click
// places a positive point, right click a negative one.
func NewCanvasView(row, width, height int, h CanvasHandlers) CanvasView {
	v := &canvasView{width: width, height: height}
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(placeholder(width, height))))
	v.label = Label(Image(v.prevPhoto), Borderwidth(0), Anchor("nw"), Background("#cccccc"))
	Grid(v.label, Row(row), Column(0), Columnspan(5), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	if h.OnClick != nil {
		Bind(v.label, "<Button-1>", Command(func(e *Event) {
			h.OnClick(segment.CanvasPoint{X: float64(e.X), Y: float64(e.Y)}, segment.Positive)
		}))
		Bind(v.label, "<Button-3>", Command(func(e *Event) {
			h.OnClick(segment.CanvasPoint{X: float64(e.X), Y: float64(e.Y)}, segment.Negative)
		}))
	}
	if h.OnResize != nil {
		Bind(v.label, "<Configure>", Command(func(e *Event) {
			if cw, ch, ok := eventSize(e.Width, e.Height); ok {
				h.OnResize(cw, ch)
			}
		}))
	}
	return v
}

// eventSize parses the size reported by a <Configure> event. Tk passes it as
// text; sizes of one pixel or less come from unmapped widgets and are skipped.
func eventSize(width, height string) (int, int, bool) {
	w, err := strconv.Atoi(strings.TrimSpace(width))
	if err != nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(height))
	if err != nil {
		return 0, 0, false
	}
	if w <= 1 || h <= 1 {
		return 0, 0, false
	}
	return w, h, true
}

func placeholder(w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func (v *canvasView) ShowFrame(img image.Image) {
	if v.label == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(img)
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(pngBytes))
	v.label.Configure(Image(v.prevPhoto))
}

func (v *canvasView) Reset() {
	v.ShowFrame(placeholder(v.width, v.height))
}
