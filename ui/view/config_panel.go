package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/clickmask-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the settings window for the oracle and the overlay.
// Applied changes are validated, written back into *config.Config, persisted and
// reported through the onApplied callback.
type ConfigPanel interface {
	OpenOrFocus()
	SetEditable(enabled bool)
	ApplyChanges()
}

// configField binds one settings row to a config field. set reports false when
// the text does not parse, leaving the field untouched.
type configField struct {
	id    string
	label string
	get   func(c *config.Config) string
	set   func(c *config.Config, s string) bool
}

func stringField(id, label string, ptr func(c *config.Config) *string) configField {
	return configField{id, label,
		func(c *config.Config) string { return *ptr(c) },
		func(c *config.Config, s string) bool { *ptr(c) = s; return true }}
}

func intField(id, label string, ptr func(c *config.Config) *int) configField {
	return configField{id, label,
		func(c *config.Config) string { return strconv.Itoa(*ptr(c)) },
		func(c *config.Config, s string) bool {
			i, err := strconv.Atoi(s)
			if err != nil {
				return false
			}
			*ptr(c) = i
			return true
		}}
}

func floatField(id, label, format string, ptr func(c *config.Config) *float64) configField {
	return configField{id, label,
		func(c *config.Config) string { return fmt.Sprintf(format, *ptr(c)) },
		func(c *config.Config, s string) bool {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return false
			}
			*ptr(c) = f
			return true
		}}
}

func boolField(id, label string, ptr func(c *config.Config) *bool) configField {
	return configField{id, label,
		func(c *config.Config) string { return strconv.FormatBool(*ptr(c)) },
		func(c *config.Config, s string) bool {
			b, ok := parseBoolLoose(s)
			if ok {
				*ptr(c) = b
			}
			return ok
		}}
}

var configFields = []configField{
	stringField("oracleBackend", "Oracle Backend (colorwalk/http)", func(c *config.Config) *string { return &c.OracleBackend }),
	stringField("oracleEndpoint", "Oracle Endpoint", func(c *config.Config) *string { return &c.OracleEndpoint }),
	intField("oracleTimeoutMs", "Oracle Timeout (ms)", func(c *config.Config) *int { return &c.OracleTimeoutMs }),
	intField("maxEmbedSide", "Max Embed Side (px)", func(c *config.Config) *int { return &c.MaxEmbedSide }),
	floatField("colorTolerance", "Color Tolerance", "%.3f", func(c *config.Config) *float64 { return &c.ColorTolerance }),
	intField("threads", "Threads", func(c *config.Config) *int { return &c.Threads }),
	floatField("maskThreshold", "Mask Threshold", "%.2f", func(c *config.Config) *float64 { return &c.MaskThreshold }),
	floatField("iouThreshold", "IoU Threshold", "%.2f", func(c *config.Config) *float64 { return &c.IoUThreshold }),
	floatField("stabilityThreshold", "Stability Score Threshold", "%.2f", func(c *config.Config) *float64 { return &c.StabilityScoreThreshold }),
	floatField("stabilityOffset", "Stability Score Offset", "%.2f", func(c *config.Config) *float64 { return &c.StabilityScoreOffset }),
	boolField("allowUpscale", "Allow Upscale (true/false)", func(c *config.Config) *bool { return &c.AllowUpscale }),
	stringField("maskColor", "Mask Color (#rrggbb)", func(c *config.Config) *string { return &c.MaskColor }),
	intField("maskAlpha", "Mask Alpha (0-255)", func(c *config.Config) *int { return &c.MaskAlpha }),
	stringField("positiveColor", "Positive Color", func(c *config.Config) *string { return &c.PositiveColor }),
	stringField("negativeColor", "Negative Color", func(c *config.Config) *string { return &c.NegativeColor }),
	stringField("backgroundColor", "Background Color", func(c *config.Config) *string { return &c.BackgroundColor }),
	floatField("markerRadius", "Marker Radius (px)", "%.1f", func(c *config.Config) *float64 { return &c.MarkerRadius }),
	boolField("darkMode", "Dark Mode (true/false)", func(c *config.Config) *bool { return &c.DarkMode }),
}

type configPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	onApplied func(*config.Config)
	editable  bool
	win       *ToplevelWidget
	applyBtn  *ButtonWidget
	widgets   map[string]*TextWidget // keyed by field id
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApplied func(*config.Config)) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onApplied: onApplied, editable: true, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) OpenOrFocus() {
	if v.win != nil {
		WmDeiconify(v.win.Window)
		return
	}
	win := App.Toplevel()
	win.WmTitle("Settings")
	v.win = win
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.close)
	row := 0
	for _, f := range configFields {
		lbl := win.Label(Txt(f.label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := win.Text(Height(1), Width(24))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", f.get(v.cfg))
		v.widgets[f.id] = w
		row++
	}
	v.applyBtn = win.Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.SetEditable(v.editable)
}

func (v *configPanel) close() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
		v.applyBtn = nil
		v.widgets = make(map[string]*TextWidget)
	}
}

func (v *configPanel) SetEditable(enabled bool) {
	v.editable = enabled
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func widgetText(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.Join(w.Get("1.0", END), "")
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	values := make(map[string]string, len(v.widgets))
	for id, w := range v.widgets {
		values[id] = widgetText(w)
	}
	cfg := applyFields(*v.cfg, values)
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Error("settings not persisted", "path", v.cfgPath, "error", err)
	}
	if v.onApplied != nil {
		v.onApplied(v.cfg)
	}
}

// applyFields copies parsable values into cfg and validates the result.
// Fields that are missing, blank or do not parse keep their previous value.
func applyFields(cfg config.Config, values map[string]string) config.Config {
	for _, f := range configFields {
		s := strings.TrimSpace(values[f.id])
		if s == "" {
			continue
		}
		f.set(&cfg, s)
	}
	_ = cfg.Validate()
	return cfg
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	}
	return false, false
}
