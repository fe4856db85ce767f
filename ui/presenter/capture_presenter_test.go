package presenter

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type mockGrabber struct {
	err   error
	rects []image.Rectangle
	full  int
}

func (g *mockGrabber) Grab() (*image.RGBA, error) {
	g.full++
	if g.err != nil {
		return nil, g.err
	}
	return image.NewRGBA(image.Rect(0, 0, 30, 20)), nil
}

func (g *mockGrabber) GrabRect(r image.Rectangle) (*image.RGBA, error) {
	g.rects = append(g.rects, r)
	if g.err != nil {
		return nil, g.err
	}
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

// mockWindow records the call order of window and grab events.
type mockWindow struct{ events *[]string }

func (w *mockWindow) HideWindow() { *w.events = append(*w.events, "hide") }
func (w *mockWindow) ShowWindow() { *w.events = append(*w.events, "show") }

type mockLoader struct {
	names []string
	sizes []image.Point
}

func (l *mockLoader) LoadFromImage(name string, img image.Image) error {
	l.names = append(l.names, name)
	l.sizes = append(l.sizes, img.Bounds().Size())
	return nil
}

type mockErrors struct{ msgs []string }

func (v *mockErrors) ShowError(_, msg string) { v.msgs = append(v.msgs, msg) }

func TestCapturePresenter_CaptureScreen(t *testing.T) {
	var events []string
	g := &mockGrabber{}
	loader := &mockLoader{}
	var delays []time.Duration
	after := func(d time.Duration, fn func()) {
		delays = append(delays, d)
		events = append(events, "grab")
		fn()
	}
	p := NewCapturePresenter(g, &mockWindow{events: &events}, loader, &mockErrors{}, after, 150*time.Millisecond, nil)
	p.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }

	p.CaptureScreen()
	if diff := cmp.Diff([]string{"hide", "grab", "show"}, events); diff != "" {
		t.Fatalf("window events (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"screen_20240309_140507"}, loader.names); diff != "" {
		t.Fatalf("loaded names (-want +got):\n%s", diff)
	}
	if g.full != 1 || delays[0] != 150*time.Millisecond {
		t.Fatalf("unexpected grab count=%d delay=%v", g.full, delays[0])
	}
}

func TestCapturePresenter_CaptureRegion(t *testing.T) {
	var events []string
	g := &mockGrabber{}
	loader := &mockLoader{}
	p := NewCapturePresenter(g, &mockWindow{events: &events}, loader, nil, nil, 0, nil)

	p.CaptureRegion(image.Rectangle{})
	if len(events) != 0 || len(g.rects) != 0 {
		t.Fatalf("empty region must not capture")
	}
	p.CaptureRegion(image.Rect(10, 10, 50, 40))
	if diff := cmp.Diff([]image.Point{{X: 40, Y: 30}}, loader.sizes); diff != "" {
		t.Fatalf("loaded sizes (-want +got):\n%s", diff)
	}
}

func TestCapturePresenter_FailureShowsWindowAndError(t *testing.T) {
	var events []string
	g := &mockGrabber{err: errors.New("no display")}
	loader := &mockLoader{}
	view := &mockErrors{}
	p := NewCapturePresenter(g, &mockWindow{events: &events}, loader, view, nil, 0, nil)
	p.CaptureScreen()
	if diff := cmp.Diff([]string{"hide", "show"}, events); diff != "" {
		t.Fatalf("window must come back after a failure (-want +got):\n%s", diff)
	}
	if len(loader.names) != 0 {
		t.Fatalf("nothing may be loaded after a failed capture")
	}
	if diff := cmp.Diff([]string{"Failed to capture screen"}, view.msgs); diff != "" {
		t.Fatalf("errors (-want +got):\n%s", diff)
	}
}
