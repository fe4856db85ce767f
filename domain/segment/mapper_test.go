package segment

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func TestMapper_FitHalfScaleScenario(t *testing.T) {
	m := Mapper{}
	canvas, img := SizeOf(50, 50), SizeOf(100, 100)
	scale, err := m.Fit(canvas, img)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if scale != 0.5 {
		t.Fatalf("expected scale 0.5, got %v", scale)
	}
	if off := Offset(canvas, img, scale); off != (CanvasPoint{}) {
		t.Fatalf("expected zero offset, got %+v", off)
	}
	p, err := m.ToImage(CanvasPoint{X: 25, Y: 25}, canvas, img, scale)
	if err != nil {
		t.Fatalf("to image: %v", err)
	}
	if p != (ImagePoint{X: 50, Y: 50}) {
		t.Fatalf("expected (50,50), got %+v", p)
	}
}

func TestMapper_FitZeroCanvas(t *testing.T) {
	m := Mapper{AllowUpscale: true}
	for _, c := range []Size{{0, 0}, {0, 10}, {10, 0}, {-1, 5}} {
		scale, err := m.Fit(c, SizeOf(10, 10))
		if !errors.Is(err, ErrLayoutNotReady) {
			t.Fatalf("canvas %+v: expected ErrLayoutNotReady, got scale=%v err=%v", c, scale, err)
		}
	}
}

func TestMapper_FitUpscale(t *testing.T) {
	canvas, img := SizeOf(400, 300), SizeOf(100, 50)
	s, _ := Mapper{}.Fit(canvas, img)
	if s != 1 {
		t.Fatalf("expected clamped scale 1, got %v", s)
	}
	s, _ = Mapper{AllowUpscale: true}.Fit(canvas, img)
	if s != 4 {
		t.Fatalf("expected scale 4 with upscale, got %v", s)
	}
}

func TestMapper_FitNeverExceedsBothRatios(t *testing.T) {
	cases := []struct{ cw, ch, iw, ih float64 }{
		{800, 600, 1920, 1080},
		{800, 600, 300, 900},
		{640, 480, 640, 480},
		{1, 1, 5000, 3},
		{333, 777, 17, 9},
	}
	for _, tc := range cases {
		for _, up := range []bool{false, true} {
			s, err := Mapper{AllowUpscale: up}.Fit(Size{tc.cw, tc.ch}, Size{tc.iw, tc.ih})
			if err != nil {
				t.Fatalf("fit %+v: %v", tc, err)
			}
			limit := math.Min(tc.cw/tc.iw, tc.ch/tc.ih)
			if s > limit {
				t.Fatalf("%+v upscale=%v: scale %v exceeds %v", tc, up, s, limit)
			}
			if !up && s > 1 {
				t.Fatalf("%+v: scale %v above 1 without upscale", tc, s)
			}
		}
	}
}

func TestMapper_RoundTrip(t *testing.T) {
	canvases := []Size{{800, 600}, {50, 50}, {1, 1000}, {1234.5, 77}}
	images := []Size{{100, 100}, {1920, 1080}, {3, 7}, {640, 1}}
	points := []ImagePoint{{0, 0}, {0.5, 0.25}, {2.999, 0}, {-10, 42}, {1e4, -3}}
	for _, up := range []bool{false, true} {
		m := Mapper{AllowUpscale: up}
		for _, c := range canvases {
			for _, img := range images {
				s, err := m.Fit(c, img)
				if err != nil {
					t.Fatalf("fit: %v", err)
				}
				vp, _ := m.Viewport(c, img)
				for _, p := range points {
					back, err := m.ToImage(m.ToCanvas(p, c, img, s), c, img, s)
					if err != nil {
						t.Fatalf("to image: %v", err)
					}
					if math.Abs(back.X-p.X) > eps*math.Max(1, math.Abs(p.X)) || math.Abs(back.Y-p.Y) > eps*math.Max(1, math.Abs(p.Y)) {
						t.Fatalf("round trip %+v -> %+v (canvas %+v image %+v)", p, back, c, img)
					}
					vback, _ := vp.ToImage(vp.ToCanvas(p))
					if math.Abs(vback.X-back.X) > eps*math.Max(1, math.Abs(p.X)) || math.Abs(vback.Y-back.Y) > eps*math.Max(1, math.Abs(p.Y)) {
						t.Fatalf("viewport disagrees with mapper: %+v vs %+v", vback, back)
					}
				}
			}
		}
	}
}

func TestMapper_ToImageRejectsZeroScale(t *testing.T) {
	if _, err := (Mapper{}).ToImage(CanvasPoint{1, 1}, SizeOf(10, 10), SizeOf(10, 10), 0); !errors.Is(err, ErrLayoutNotReady) {
		t.Fatalf("expected ErrLayoutNotReady, got %v", err)
	}
	if _, err := (Viewport{}).ToImage(CanvasPoint{}); !errors.Is(err, ErrLayoutNotReady) {
		t.Fatalf("expected ErrLayoutNotReady from zero viewport, got %v", err)
	}
}

func TestViewport_CentersLetterbox(t *testing.T) {
	vp, err := Mapper{}.Viewport(SizeOf(800, 600), SizeOf(400, 100))
	if err != nil {
		t.Fatalf("viewport: %v", err)
	}
	if vp.Scale != 1 || vp.Offset != (CanvasPoint{X: 200, Y: 250}) {
		t.Fatalf("unexpected viewport %+v", vp)
	}
	r := vp.ScaledRect()
	if r.Min.X != 200 || r.Min.Y != 250 || r.Dx() != 400 || r.Dy() != 100 {
		t.Fatalf("unexpected scaled rect %v", r)
	}
}
