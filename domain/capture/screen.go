package capture

import (
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/vova616/screenshot"
)

// Screen grabs the desktop through the screenshot package and keeps timing stats.
// It is safe for concurrent use.
type Screen struct {
	logger       *slog.Logger
	bounds       func() (image.Rectangle, error)
	capture      func(image.Rectangle) (*image.RGBA, error)
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	lastAt       atomic.Int64
	lastSize     atomic.Pointer[image.Point]
}

// NewScreen returns a Grabber backed by the primary screen.
func NewScreen(logger *slog.Logger) *Screen {
	return &Screen{logger: logger, bounds: screenshot.ScreenRect, capture: screenshot.CaptureRect}
}

var _ Grabber = (*Screen)(nil)

// Bounds returns the primary screen rectangle, or an empty one when it
// cannot be queried.
func (s *Screen) Bounds() image.Rectangle {
	r, err := s.bounds()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("screen bounds", "error", err)
		}
		return image.Rectangle{}
	}
	return r
}

// Grab captures the whole primary screen.
func (s *Screen) Grab() (*image.RGBA, error) {
	screen, err := s.bounds()
	if err != nil {
		s.failures.Add(1)
		return nil, errors.Wrap(err, "capture: screen bounds")
	}
	return s.grab(screen)
}

// GrabRect captures r clipped to the screen.
func (s *Screen) GrabRect(r image.Rectangle) (*image.RGBA, error) {
	if r.Empty() {
		return nil, errors.New("capture: empty selection")
	}
	screen, err := s.bounds()
	if err != nil {
		s.failures.Add(1)
		return nil, errors.Wrap(err, "capture: screen bounds")
	}
	clipped := r.Intersect(screen)
	if clipped.Empty() {
		return nil, errors.Errorf("capture: selection out of bounds sel=%v screen=%v", r, screen)
	}
	return s.grab(clipped)
}

func (s *Screen) grab(r image.Rectangle) (*image.RGBA, error) {
	if r.Empty() {
		s.failures.Add(1)
		return nil, errors.Errorf("capture: invalid screen rect %v", r)
	}
	start := time.Now()
	img, err := s.capture(r)
	if err != nil {
		s.failures.Add(1)
		if s.logger != nil {
			s.logger.Error("capture screen", "rect", r.String(), "error", err)
		}
		return nil, errors.Wrap(err, "capture screen")
	}
	if img == nil {
		s.failures.Add(1)
		return nil, errors.New("capture: no image returned")
	}
	elapsed := time.Since(start)
	s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
	s.captures.Add(1)
	s.lastAt.Store(time.Now().UnixNano())
	size := img.Bounds().Size()
	s.lastSize.Store(&size)
	s.logStats()
	return img, nil
}

// Stats returns capture counters.
func (s *Screen) Stats() Stats {
	captures := s.captures.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(s.captureNanos.Load() / captures)
	}
	st := Stats{Captures: captures, Failures: s.failures.Load(), AvgCapture: avg}
	if at := s.lastAt.Load(); at != 0 {
		st.LastCapture = time.Unix(0, at)
	}
	if sz := s.lastSize.Load(); sz != nil {
		st.LastSize = *sz
	}
	return st
}

func (s *Screen) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"failures", stats.Failures,
		"avg_capture", stats.AvgCapture,
		"size", stats.LastSize,
	)
}
