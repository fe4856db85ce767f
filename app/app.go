package app

import (
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/clickmask-go/config"
	"github.com/soocke/clickmask-go/debug"
	"github.com/soocke/clickmask-go/domain/interaction"
	"github.com/soocke/clickmask-go/domain/segment"
	"github.com/soocke/clickmask-go/ui/theme"
	"github.com/soocke/clickmask-go/ui/view"
)

const (
	tick          = 50 * time.Millisecond
	captureDelay  = 250 * time.Millisecond
	debugInterval = 10 * time.Second
)

type app struct {
	title   string
	c       *AppContainer
	logger  *slog.Logger
	afterID string
	stopDbg func()

	configPanel view.ConfigPanel
	region      view.SelectionOverlay
}

// NewApp wires the container for cfg. The window is created by Start.
func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) *app {
	return &app{title: title, c: BuildContainer(cfg, logger, cfgPath), logger: logger}
}

// Start builds the window and blocks in the Tk event loop until exit.
func (a *app) Start() {
	cfg := a.c.Config
	App.WmTitle(a.title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", cfg.CanvasWidth+20, cfg.CanvasHeight+90))
	theme.Apply(cfg.DarkMode)

	a.configPanel = view.NewConfigPanel(cfg, a.c.ConfigPath, a.logger, a.c.ApplyConfig)
	a.region = view.NewSelectionOverlay(a.c.Screen.Bounds, a.c.CapturePresenter.CaptureRegion, a.logger)
	a.c.Interaction.AddListener(func(_, next interaction.State) {
		a.configPanel.SetEditable(!next.Busy())
	})
	a.c.RootView.Build(view.RootHandlers{
		OnLoad:          a.loadImage,
		OnCapture:       a.c.CapturePresenter.CaptureScreen,
		OnCaptureRegion: a.region.OpenOrFocus,
		OnClear:         func() { a.c.Interaction.ClearPrompts() },
		OnSave:          a.saveMask,
		OnSettings:      a.configPanel.OpenOrFocus,
		OnExit:          a.exitHandler,
		Canvas: view.CanvasHandlers{
			OnClick: func(pt segment.CanvasPoint, label segment.Polarity) {
				_ = a.c.Interaction.Click(pt, label)
			},
			OnResize: a.c.Interaction.Resize,
		},
	})
	a.c.Interaction.Resize(cfg.CanvasWidth, cfg.CanvasHeight)

	if cfg.Debug {
		a.stopDbg = debug.Start(debugInterval, a.logger)
	}

	a.c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()
	App.Wait()
}

func (a *app) loadImage() {
	path := view.OpenImageDialog(a.c.Config.LastDir)
	if path == "" {
		return
	}
	if err := a.c.Interaction.LoadImage(path); err != nil {
		return
	}
	a.rememberDir(path)
}

func (a *app) saveMask() {
	if !a.c.Interaction.HasMask() {
		// Reports the missing mask without asking for a path.
		_ = a.c.Interaction.SaveMask("")
		return
	}
	path := view.SaveMaskDialog(a.c.Config.LastDir, a.c.Interaction.SuggestedMaskName())
	if path == "" {
		return
	}
	if err := a.c.Interaction.SaveMask(path); err == nil {
		a.rememberDir(path)
	}
}

func (a *app) rememberDir(path string) {
	dir := view.DirOf(path)
	if dir == "" || dir == a.c.Config.LastDir {
		return
	}
	a.c.Config.LastDir = dir
	if err := a.c.Config.Save(a.c.ConfigPath); err != nil {
		a.logger.Warn("config save failed", "path", a.c.ConfigPath, "error", err)
	}
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.c.Interaction.Close()
	if a.stopDbg != nil {
		a.stopDbg()
	}
	Destroy(App)
}

func (a *app) update() { a.c.Loop.Tick() }

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}
