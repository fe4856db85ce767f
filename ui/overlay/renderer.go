package overlay

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/soocke/clickmask-go/config"
	"github.com/soocke/clickmask-go/domain/segment"
	"github.com/soocke/clickmask-go/ui/images"
)

// Style holds the fixed colors and sizes of the overlay.
type Style struct {
	Background   color.RGBA
	Tint         color.NRGBA
	Positive     color.RGBA
	Negative     color.RGBA
	MarkerRadius float64
}

// DefaultStyle matches config.DefaultConfig.
func DefaultStyle() Style { return StyleFromConfig(config.DefaultConfig()) }

// StyleFromConfig parses the overlay colors from cfg. Unparseable colors fall back
// to the defaults.
func StyleFromConfig(cfg *config.Config) Style {
	d := config.DefaultConfig()
	if cfg == nil {
		cfg = d
	}
	alpha := cfg.MaskAlpha
	if alpha < 0 || alpha > 255 {
		alpha = d.MaskAlpha
	}
	radius := cfg.MarkerRadius
	if radius <= 0 {
		radius = d.MarkerRadius
	}
	tr, tg, tb := parseHex(cfg.MaskColor, d.MaskColor)
	return Style{
		Background:   rgba(parseHex(cfg.BackgroundColor, d.BackgroundColor)),
		Tint:         color.NRGBA{R: tr, G: tg, B: tb, A: uint8(alpha)},
		Positive:     rgba(parseHex(cfg.PositiveColor, d.PositiveColor)),
		Negative:     rgba(parseHex(cfg.NegativeColor, d.NegativeColor)),
		MarkerRadius: radius,
	}
}

func parseHex(v, fallback string) (uint8, uint8, uint8) {
	c, err := colorful.Hex(v)
	if err != nil {
		c, _ = colorful.Hex(fallback)
	}
	return c.Clamped().RGB255()
}

func rgba(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }

// Scene is everything one frame is built from.
type Scene struct {
	Mapper segment.Mapper
	Canvas segment.Size
	Image  image.Image
	Points []segment.LabeledPoint
	Mask   *segment.Mask
	// MaskStale marks Mask as left over from earlier points; it is drawn at
	// half the tint alpha.
	MaskStale bool
}

// Marker is one prompt point in canvas space.
type Marker struct {
	Center segment.CanvasPoint
	Radius float64
	Color  color.RGBA
	Label  segment.Polarity
}

// Plan is a back-to-front draw list: background, Base, Tint, Markers.
type Plan struct {
	Bounds     image.Rectangle
	Background color.RGBA
	Viewport   segment.Viewport
	Placement  image.Rectangle // canvas rectangle of Base and Tint
	Base       *image.RGBA
	Tint       *image.NRGBA
	Markers    []Marker
}

// Renderer composes frames. Every call rebuilds the whole frame from the scene.
type Renderer struct {
	style Style
}

func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// SetStyle replaces the style used by later frames.
func (r *Renderer) SetStyle(s Style) { r.style = s }

// Style returns the active style.
func (r *Renderer) Style() Style { return r.style }

// Plan lays out sc. A scene without an image plans a bare background.
func (r *Renderer) Plan(sc Scene) (Plan, error) {
	if sc.Canvas.Empty() {
		return Plan{}, segment.ErrLayoutNotReady
	}
	p := Plan{
		Bounds:     image.Rect(0, 0, int(math.Round(sc.Canvas.W)), int(math.Round(sc.Canvas.H))),
		Background: r.style.Background,
	}
	if sc.Image == nil || sc.Image.Bounds().Empty() {
		return p, nil
	}
	ib := sc.Image.Bounds()
	vp, err := sc.Mapper.Viewport(sc.Canvas, segment.SizeOf(ib.Dx(), ib.Dy()))
	if err != nil {
		return Plan{}, err
	}
	p.Viewport = vp
	p.Placement = vp.ScaledRect()
	p.Base = images.ScaleTo(sc.Image, p.Placement.Dx(), p.Placement.Dy())
	if sc.Mask.SameSize(ib.Dx(), ib.Dy()) {
		p.Tint = imaging.Resize(r.tintLayer(sc.Mask, sc.MaskStale), p.Placement.Dx(), p.Placement.Dy(), imaging.Box)
	}
	for _, pt := range sc.Points {
		c := r.style.Negative
		if pt.Label == segment.Positive {
			c = r.style.Positive
		}
		p.Markers = append(p.Markers, Marker{
			Center: vp.ToCanvas(pt.Position),
			Radius: r.style.MarkerRadius,
			Color:  c,
			Label:  pt.Label,
		})
	}
	return p, nil
}

// tintLayer rasterizes the mask at its own resolution.
func (r *Renderer) tintLayer(m *segment.Mask, stale bool) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	t := r.style.Tint
	if stale {
		t.A /= 2
	}
	for i, on := range m.Bits {
		if !on {
			continue
		}
		o := 4 * i
		out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = t.R, t.G, t.B, t.A
	}
	return out
}

// Draw executes p onto a fresh canvas-sized image.
func (r *Renderer) Draw(p Plan) *image.RGBA {
	dst := image.NewRGBA(p.Bounds)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(p.Background), image.Point{}, draw.Src)
	if p.Base != nil {
		draw.Draw(dst, p.Placement, p.Base, image.Point{}, draw.Over)
	}
	if p.Tint != nil {
		draw.Draw(dst, p.Placement, p.Tint, image.Point{}, draw.Over)
	}
	if len(p.Markers) > 0 {
		dc := gg.NewContextForRGBA(dst)
		for _, m := range p.Markers {
			dc.SetColor(m.Color)
			dc.DrawCircle(m.Center.X, m.Center.Y, m.Radius)
			dc.Fill()
		}
	}
	return dst
}

// Render plans and draws sc.
func (r *Renderer) Render(sc Scene) (*image.RGBA, error) {
	p, err := r.Plan(sc)
	if err != nil {
		return nil, err
	}
	return r.Draw(p), nil
}
