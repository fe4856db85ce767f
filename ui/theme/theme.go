package theme

// Styling for the click-to-mask window. The palette has a light and a dark
// variant; Apply activates the base theme and configures the named styles.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// PaletteSnapshot holds the resolved colors for one mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Busy      string
	Text      string
	TextMuted string
}

var (
	light = PaletteSnapshot{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Border:    "#d0d7de",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Accent:    "#10b981",
		Busy:      "#f59e0b",
		Text:      "#1e293b",
		TextMuted: "#64748b",
	}
	dark = PaletteSnapshot{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Border:    "#334155",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Accent:    "#10b981",
		Busy:      "#fbbf24",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
	}
)

// Style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStateLabel    = "state.TLabel"
	StyleBusyLabel     = "busy.TLabel"
)

var darkMode bool

// PaletteFor returns the palette of the given mode.
func PaletteFor(isDark bool) PaletteSnapshot {
	if isDark {
		return dark
	}
	return light
}

// CurrentPalette returns colors for the active mode.
func CurrentPalette() PaletteSnapshot { return PaletteFor(darkMode) }

// IsDark reports current mode.
func IsDark() bool { return darkMode }

// Apply sets the mode and (re)configures all styles.
func Apply(isDark bool) {
	darkMode = isDark
	p := PaletteFor(isDark)
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground("white"),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
	StyleConfigure(StyleBusyLabel,
		Foreground(p.Busy),
		Background(p.Surface),
		Padding("2p 1p"),
	)
}
