package oracle

import (
	"context"
	"image"
	"math"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/soocke/clickmask-go/domain/segment"
)

// ColorWalkOptions tunes the in-process backend.
type ColorWalkOptions struct {
	// Tolerance is the CIE-Lab distance accepted around a seed color for the
	// middle candidate. Other candidates use multiples of it.
	Tolerance float64
	// MaxSide caps the embedded resolution; larger images are downsized.
	MaxSide int
}

// toleranceSteps are the walk tolerances, as multiples of Tolerance. Candidate i
// is the mask at step i+1 and is scored by the IoU of its neighbours.
var toleranceSteps = []float64{0.5, 1, 1.5, 2, 2.5}

// ColorWalk is an in-process mask oracle. Its embedding is a Lab rendition of the
// image and inference grows color-coherent regions from the positive points,
// refusing pixels that look more like a negative point than like the seed.
type ColorWalk struct {
	opts atomic.Pointer[ColorWalkOptions]
}

// NewColorWalk returns a backend with opts.
func NewColorWalk(opts ColorWalkOptions) *ColorWalk {
	b := &ColorWalk{}
	b.SetOptions(opts)
	return b
}

// SetOptions replaces the options used by subsequent calls.
func (b *ColorWalk) SetOptions(opts ColorWalkOptions) {
	if opts.Tolerance <= 0 {
		opts.Tolerance = 0.12
	}
	if opts.MaxSide <= 0 {
		opts.MaxSide = 1024
	}
	b.opts.Store(&opts)
}

func (b *ColorWalk) Name() string { return "colorwalk" }

type labImage struct {
	src  image.Rectangle // source bounds, origin at zero
	w, h int
	lab  []float64 // L, a, b per pixel
}

func (e *labImage) Bounds() image.Rectangle { return e.src }

func (e *labImage) at(i int) (float64, float64, float64) {
	return e.lab[3*i], e.lab[3*i+1], e.lab[3*i+2]
}

func (e *labImage) dist(i, j int) float64 {
	l1, a1, b1 := e.at(i)
	l2, a2, b2 := e.at(j)
	return math.Sqrt((l1-l2)*(l1-l2) + (a1-a2)*(a1-a2) + (b1-b2)*(b1-b2))
}

// Embed converts img to Lab, downsizing first when it exceeds MaxSide.
func (b *ColorWalk) Embed(ctx context.Context, img image.Image) (Embedding, error) {
	opts := b.opts.Load()
	sb := img.Bounds()
	var work *image.NRGBA
	if sb.Dx() > opts.MaxSide || sb.Dy() > opts.MaxSide {
		work = imaging.Fit(img, opts.MaxSide, opts.MaxSide, imaging.Box)
	} else {
		work = imaging.Clone(img)
	}
	w, h := work.Bounds().Dx(), work.Bounds().Dy()
	e := &labImage{src: image.Rect(0, 0, sb.Dx(), sb.Dy()), w: w, h: h, lab: make([]float64, 3*w*h)}
	for y := 0; y < h; y++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "colorwalk embed")
		}
		for x := 0; x < w; x++ {
			c, _ := colorful.MakeColor(work.NRGBAAt(x, y))
			l, a, bb := c.Lab()
			i := 3 * (y*w + x)
			e.lab[i], e.lab[i+1], e.lab[i+2] = l, a, bb
		}
	}
	return e, nil
}

// Infer returns one candidate per interior tolerance step.
func (b *ColorWalk) Infer(ctx context.Context, emb Embedding, points []segment.LabeledPoint) ([]segment.CandidateMask, error) {
	e, ok := emb.(*labImage)
	if !ok {
		return nil, errors.Errorf("colorwalk: foreign embedding %T", emb)
	}
	opts := b.opts.Load()
	var pos, neg []int
	for _, p := range points {
		idx, ok := e.index(p.Position)
		if !ok {
			continue
		}
		if p.Label == segment.Positive {
			pos = append(pos, idx)
		} else {
			neg = append(neg, idx)
		}
	}
	// Nearest negative color distance per pixel, shared by every step.
	var negDist []float64
	if len(neg) > 0 {
		negDist = make([]float64, e.w*e.h)
		for i := range negDist {
			d := math.Inf(1)
			for _, n := range neg {
				d = math.Min(d, e.dist(i, n))
			}
			negDist[i] = d
		}
	}
	blocked := make(map[int]bool, len(neg))
	for _, n := range neg {
		blocked[n] = true
	}
	masks := make([]*segment.Mask, len(toleranceSteps))
	for s, k := range toleranceSteps {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "colorwalk infer")
		}
		masks[s] = e.walk(pos, negDist, blocked, opts.Tolerance*k)
	}
	out := make([]segment.CandidateMask, 0, len(toleranceSteps)-2)
	for s := 1; s < len(toleranceSteps)-1; s++ {
		score := masks[s-1].IoU(masks[s+1])
		out = append(out, segment.CandidateMask{Mask: e.upsample(masks[s]), Score: score})
	}
	return out, nil
}

func (e *labImage) index(p segment.ImagePoint) (int, bool) {
	if !(p.X >= 0 && p.Y >= 0 && p.X < float64(e.src.Dx()) && p.Y < float64(e.src.Dy())) {
		return 0, false
	}
	x := int(p.X * float64(e.w) / float64(e.src.Dx()))
	y := int(p.Y * float64(e.h) / float64(e.src.Dy()))
	x = min(x, e.w-1)
	y = min(y, e.h-1)
	return y*e.w + x, true
}

// walk floods 4-connected pixels within tol of the seed they were reached from.
func (e *labImage) walk(seeds []int, negDist []float64, blocked map[int]bool, tol float64) *segment.Mask {
	m := segment.NewMask(e.w, e.h)
	for _, seed := range seeds {
		if blocked[seed] {
			continue
		}
		visited := make([]bool, e.w*e.h)
		queue := []int{seed}
		visited[seed] = true
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			m.Bits[i] = true
			x, y := i%e.w, i/e.w
			for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				if n[0] < 0 || n[1] < 0 || n[0] >= e.w || n[1] >= e.h {
					continue
				}
				j := n[1]*e.w + n[0]
				if visited[j] || blocked[j] {
					continue
				}
				visited[j] = true
				d := e.dist(seed, j)
				if d > tol {
					continue
				}
				if negDist != nil && negDist[j] <= d {
					continue
				}
				queue = append(queue, j)
			}
		}
	}
	return m
}

// upsample maps a mask at embedded resolution back onto source pixels.
func (e *labImage) upsample(m *segment.Mask) *segment.Mask {
	sw, sh := e.src.Dx(), e.src.Dy()
	if sw == e.w && sh == e.h {
		return m
	}
	out := segment.NewMask(sw, sh)
	for y := 0; y < sh; y++ {
		my := min(y*e.h/sh, e.h-1)
		for x := 0; x < sw; x++ {
			out.Bits[y*sw+x] = m.Bits[my*e.w+min(x*e.w/sw, e.w-1)]
		}
	}
	return out
}
