package view

import (
	"image"
	"log/slog"

	"github.com/soocke/clickmask-go/config"
	"github.com/soocke/clickmask-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootHandlers are the user actions wired by the application.
type RootHandlers struct {
	OnLoad          func()
	OnCapture       func()
	OnCaptureRegion func()
	OnClear         func()
	OnSave          func()
	OnSettings      func()
	OnExit          func()
	Canvas          CanvasHandlers
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg    *config.Config
	logger *slog.Logger

	// Subviews
	Canvas CanvasView
	Status StatusBar

	// Widgets
	StateLabel *TLabelWidget
	clearBtn   *TButtonWidget
	saveBtn    *TButtonWidget

	busy    bool
	canSave bool
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	ShowFrame(img image.Image)
	SetBusy(busy bool, message string)
	ShowError(title, message string)
	SetSaveEnabled(enabled bool)
	SetStateLabel(text string)
	SetPrompts(text string)
	SetMaskInfo(text string)
	HideWindow()
	ShowWindow()
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, logger: logger}
}

// Build constructs the layout: toolbar, canvas and status bar.
func (rv *RootView) Build(h RootHandlers) {
	if rv == nil {
		return
	}
	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(0), Columnspan(4), Sticky("w"), Padx("0.3m"), Pady("0.3m"))
	col := 0
	button := func(text, style string, cmd func()) *TButtonWidget {
		if cmd == nil {
			cmd = func() {}
		}
		b := TButton(Txt(text), Style(style), Command(cmd))
		Grid(b, In(btnFrame), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		col++
		return b
	}
	button("Load Image", theme.StylePrimaryButton, h.OnLoad)
	button("Capture Screen", theme.StylePrimaryButton, h.OnCapture)
	button("Capture Region", theme.StylePrimaryButton, h.OnCaptureRegion)
	rv.clearBtn = button("Clear Points", theme.StylePrimaryButton, h.OnClear)
	rv.saveBtn = button("Save Mask", theme.StylePrimaryButton, h.OnSave)
	rv.syncSaveButton()
	button("Settings", theme.StylePrimaryButton, h.OnSettings)
	button("Exit", theme.StyleDangerButton, h.OnExit)

	rv.StateLabel = TLabel(Txt("State: no image"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(4), Sticky("e"), Padx("0.4m"), Pady("0.3m"))

	w, hgt := 800, 600
	if rv.cfg != nil {
		w, hgt = rv.cfg.CanvasWidth, rv.cfg.CanvasHeight
	}
	rv.Canvas = NewCanvasView(1, w, hgt, h.Canvas)
	GridRowConfigure(App, 1, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))

	statusFrame := Frame()
	Grid(statusFrame, Row(2), Column(0), Columnspan(5), Sticky("we"), Padx("0.3m"), Pady("0.2m"))
	rv.Status = NewStatusBar(statusFrame, 0, 0)
}

// ShowFrame replaces the canvas image.
func (rv *RootView) ShowFrame(img image.Image) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.ShowFrame(img)
	}
}

// SetBusy shows the busy text and locks the prompt buttons while an oracle call runs.
func (rv *RootView) SetBusy(busy bool, message string) {
	if rv == nil {
		return
	}
	if rv.Status != nil {
		rv.Status.SetBusy(busy, message)
	}
	rv.busy = busy
	if rv.clearBtn != nil {
		rv.clearBtn.Configure(State(buttonState(!busy)))
	}
	rv.syncSaveButton()
}

// SetSaveEnabled enables Save only while a mask for the current points exists,
// so a dimmed left-over mask cannot be saved by mistake.
func (rv *RootView) SetSaveEnabled(enabled bool) {
	if rv == nil {
		return
	}
	rv.canSave = enabled
	rv.syncSaveButton()
}

func (rv *RootView) syncSaveButton() {
	if rv.saveBtn != nil {
		rv.saveBtn.Configure(State(buttonState(rv.canSave && !rv.busy)))
	}
}

func buttonState(enabled bool) string {
	if enabled {
		return "normal"
	}
	return "disabled"
}

// ShowError opens a modal error box.
func (rv *RootView) ShowError(title, message string) {
	if rv != nil && rv.logger != nil {
		rv.logger.Debug("error dialog", "title", title, "message", message)
	}
	ShowErrorDialog(title, message)
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetPrompts(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetPrompts(text)
	}
}

func (rv *RootView) SetMaskInfo(text string) {
	if rv != nil && rv.Status != nil {
		rv.Status.SetMaskInfo(text)
	}
}

// HideWindow withdraws the main window, e.g. while the screen is captured.
func (rv *RootView) HideWindow() { WmWithdraw(App) }

// ShowWindow brings the main window back.
func (rv *RootView) ShowWindow() { WmDeiconify(App) }
