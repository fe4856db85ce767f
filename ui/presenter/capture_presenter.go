package presenter

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/clickmask-go/domain/capture"
)

// CaptureWindow hides the application window while the screen is grabbed.
type CaptureWindow interface {
	HideWindow()
	ShowWindow()
}

// ImageLoader starts a session for an in-memory image.
type ImageLoader interface {
	LoadFromImage(name string, img image.Image) error
}

// ErrorView reports failures to the user.
type ErrorView interface {
	ShowError(title, message string)
}

// AfterFunc runs fn once d has elapsed on the UI goroutine.
type AfterFunc func(d time.Duration, fn func())

// CapturePresenter grabs the screen, or a region of it, and loads the result as
// the image to segment. The window is hidden for the duration of the grab so it
// does not end up in the picture.
type CapturePresenter struct {
	grabber capture.Grabber
	window  CaptureWindow
	loader  ImageLoader
	view    ErrorView
	after   AfterFunc
	delay   time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewCapturePresenter(grabber capture.Grabber, window CaptureWindow, loader ImageLoader, view ErrorView, after AfterFunc, delay time.Duration, logger *slog.Logger) *CapturePresenter {
	if after == nil {
		after = func(_ time.Duration, fn func()) { fn() }
	}
	return &CapturePresenter{grabber: grabber, window: window, loader: loader, view: view, after: after, delay: delay, logger: logger, now: time.Now}
}

// CaptureScreen grabs the whole screen.
func (c *CapturePresenter) CaptureScreen() {
	c.capture(func() (*image.RGBA, error) { return c.grabber.Grab() })
}

// CaptureRegion grabs r in screen coordinates.
func (c *CapturePresenter) CaptureRegion(r image.Rectangle) {
	if r.Empty() {
		return
	}
	c.capture(func() (*image.RGBA, error) { return c.grabber.GrabRect(r) })
}

func (c *CapturePresenter) capture(grab func() (*image.RGBA, error)) {
	if c == nil || c.grabber == nil || c.loader == nil {
		return
	}
	if c.window != nil {
		c.window.HideWindow()
	}
	c.after(c.delay, func() {
		img, err := grab()
		if c.window != nil {
			c.window.ShowWindow()
		}
		if err != nil {
			if c.logger != nil {
				c.logger.Error("screen capture", "error", err)
			}
			if c.view != nil {
				c.view.ShowError("Error", "Failed to capture screen")
			}
			return
		}
		_ = c.loader.LoadFromImage(c.captureName(), img)
	})
}

func (c *CapturePresenter) captureName() string {
	return fmt.Sprintf("screen_%s", c.now().Format("20060102_150405"))
}
