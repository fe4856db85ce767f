package view

import (
	"fmt"
	"image"
	"log/slog"
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SelectionOverlay is a see-through window the user moves and resizes over the
// screen region to capture. Confirming reports the window rectangle.
type SelectionOverlay interface {
	OpenOrFocus()
}

type selectionOverlay struct {
	logger     *slog.Logger
	screen     func() image.Rectangle
	onSelected func(image.Rectangle)
	last       image.Rectangle
	win        *ToplevelWidget
}

// NewSelectionOverlay creates a new overlay manager. screen reports the desktop
// bounds used to place the window; onSelected receives the confirmed region.
func NewSelectionOverlay(screen func() image.Rectangle, onSelected func(image.Rectangle), logger *slog.Logger) SelectionOverlay {
	return &selectionOverlay{logger: logger, screen: screen, onSelected: onSelected}
}

func (v *selectionOverlay) OpenOrFocus() {
	if v.win != nil {
		WmDeiconify(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2), Background("#008080"))
	win.WmTitle("Capture Region")
	v.win = win
	WmGeometry(win.Window, initialGeometry(v.screenRect(), v.last))
	WmAttributes(win.Window, "-topmost", 1)
	WmAttributes(win.Window, "-alpha", 0.35)
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(1))
	Grid(win.Frame(Background("#008080")), Row(0), Column(0), Sticky("nsew"))
	bar := win.Frame()
	Grid(bar, Row(1), Column(0), Sticky("we"))
	for col, b := range []struct {
		text string
		fn   func()
	}{{"Capture [Enter]", v.confirm}, {"Cancel [Esc]", v.cancel}} {
		Grid(win.Button(Txt(b.text), Command(b.fn)), In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}
	Bind(win, "<KeyPress-Return>", Command(v.confirm))
	Bind(win, "<KeyPress-Escape>", Command(v.cancel))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.cancel)
}

func (v *selectionOverlay) screenRect() image.Rectangle {
	if v.screen != nil {
		if r := v.screen(); !r.Empty() {
			return r
		}
	}
	return image.Rect(0, 0, 1920, 1080)
}

// initialGeometry reopens at the last region, or centers a window covering
// two thirds of the screen.
func initialGeometry(screen, last image.Rectangle) string {
	if !last.Empty() {
		return fmt.Sprintf("%dx%d+%d+%d", last.Dx(), last.Dy(), last.Min.X, last.Min.Y)
	}
	w, h := max(screen.Dx()*2/3, 1), max(screen.Dy()*5/9, 1)
	x, y := screen.Min.X+(screen.Dx()-w)/2, screen.Min.Y+(screen.Dy()-h)/2
	return fmt.Sprintf("%dx%d+%d+%d", w, h, x, y)
}

func (v *selectionOverlay) confirm() {
	if v.win == nil {
		return
	}
	geom := WmGeometry(v.win.Window)
	rect, ok := regionFromGeometry(geom)
	v.destroy()
	if !ok {
		if v.logger != nil {
			v.logger.Warn("capture region: unparsable geometry", "geometry", geom)
		}
		return
	}
	v.last = rect
	if v.onSelected != nil {
		v.onSelected(rect)
	}
}

func (v *selectionOverlay) cancel() { v.destroy() }

func (v *selectionOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

// regionFromGeometry turns a Tk "WxH+X+Y" geometry into the screen rectangle it
// covers. Negative offsets appear as "+-N".
func regionFromGeometry(g string) (image.Rectangle, bool) {
	var w, h, x, y int
	if n, err := fmt.Sscanf(strings.TrimSpace(g), "%dx%d+%d+%d", &w, &h, &x, &y); err != nil || n != 4 {
		return image.Rectangle{}, false
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
