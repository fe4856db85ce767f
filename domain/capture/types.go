package capture

import (
	"image"
	"time"
)

// Grabber captures screen pixels. Implementations return newly allocated images.
type Grabber interface {
	Grab() (*image.RGBA, error)
	GrabRect(r image.Rectangle) (*image.RGBA, error)
}

// Stats summarises screen grabs for instrumentation.
type Stats struct {
	Captures    uint64
	Failures    uint64
	AvgCapture  time.Duration
	LastCapture time.Time
	LastSize    image.Point
}
