package app

import (
	"log/slog"
	"time"

	"github.com/soocke/clickmask-go/config"
	"github.com/soocke/clickmask-go/domain/capture"
	"github.com/soocke/clickmask-go/domain/codec"
	"github.com/soocke/clickmask-go/domain/oracle"
	"github.com/soocke/clickmask-go/domain/segment"
	"github.com/soocke/clickmask-go/ui/model"
	"github.com/soocke/clickmask-go/ui/overlay"
	"github.com/soocke/clickmask-go/ui/presenter"
	"github.com/soocke/clickmask-go/ui/theme"
	"github.com/soocke/clickmask-go/ui/view"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Session    *model.SessionModel
	Canvas     *model.CanvasModel
	Backend    oracle.Backend
	Oracle     *oracle.Client
	Renderer   *overlay.Renderer
	Screen     *capture.Screen
	RootView   *view.RootView
	UI         view.UI

	// Presenters
	Interaction      *presenter.InteractionController
	StatePresenter   *presenter.StatePresenter
	SessionPresenter *presenter.SessionPresenter
	CapturePresenter *presenter.CapturePresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs all components. No widgets are created here; the
// root view is built by the app once Tk is up.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string) *AppContainer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	c.Session = model.NewSessionModel()
	c.Canvas = model.NewCanvasModel()
	c.Backend = oracle.NewBackend(cfg, logger)
	c.Oracle = oracle.NewClient(c.Backend, logger)
	c.Renderer = overlay.NewRenderer(overlay.StyleFromConfig(cfg))
	c.Screen = capture.NewScreen(logger)

	c.RootView = view.NewRootView(cfg, logger)
	c.UI = c.RootView

	c.Interaction = presenter.NewInteractionController(c.Session, c.Canvas, c.Oracle,
		codec.Decode, codec.WriteMask, c.Renderer, c.UI,
		segment.Mapper{AllowUpscale: cfg.AllowUpscale}, cfg.OracleTimeout(), logger)
	c.StatePresenter = presenter.NewStatePresenter(c.UI)
	c.Interaction.AddListener(c.StatePresenter.OnState)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Oracle, c.UI)
	c.CapturePresenter = presenter.NewCapturePresenter(c.Screen, c.UI, c.Interaction, c.UI,
		func(d time.Duration, fn func()) { TclAfter(d, fn) }, captureDelay, logger)
	c.Loop = presenter.NewLoop(c.Interaction, c.StatePresenter, c.SessionPresenter, nil)
	return c
}

// ApplyConfig pushes edited settings into the running components. A change of
// backend kind, endpoint or embedding size re-embeds the loaded image.
func (c *AppContainer) ApplyConfig(cfg *config.Config) {
	c.Config = cfg
	c.Renderer.SetStyle(overlay.StyleFromConfig(cfg))
	c.Interaction.SetTimeout(cfg.OracleTimeout())
	c.applyOracleConfig(cfg)
	theme.Apply(cfg.DarkMode)
	c.Interaction.SetMapper(segment.Mapper{AllowUpscale: cfg.AllowUpscale})
}

// applyOracleConfig updates or replaces the oracle backend. The loaded image is
// re-embedded whenever earlier embeddings stop being valid.
func (c *AppContainer) applyOracleConfig(cfg *config.Config) {
	switch r := oracle.Reconfigure(c.Backend, cfg); r {
	case oracle.NeedsNewBackend:
		c.Logger.Info("switching oracle backend", "from", c.Oracle.Backend(), "to", cfg.OracleBackend)
		c.Backend = oracle.NewBackend(cfg, c.Logger)
		c.Oracle = oracle.NewClient(c.Backend, c.Logger)
		if c.SessionPresenter != nil {
			c.SessionPresenter.SetStats(c.Oracle)
		}
		c.Interaction.SetOracle(c.Oracle)
	case oracle.NeedsReembed:
		c.Logger.Info("oracle embeddings invalidated", "backend", c.Oracle.Backend(), "reason", r)
		c.Interaction.SetOracle(c.Oracle)
	}
}
