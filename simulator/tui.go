package main

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/fill"
	"github.com/rook-computer/colorbook/internal/palette"
	"github.com/rook-computer/colorbook/internal/render/layout"
)

const (
	swatchCols = 4
	chromeRows = 3 // status line, palette row, help line
	helpLine   = "1-0 colour  e eraser  r reset  s save  q quit"
)

var backgroundColor = tcell.NewRGBColor(0xF4, 0xE4, 0xC1)

// termLayout maps the terminal grid. The page is drawn with half-block
// cells, so page coordinates are in half-cell pixels: x is the column and
// y is twice the row below the status line.
type termLayout struct {
	cols, rows int
	page       image.Rectangle
	paletteRow int
	swatches   []image.Rectangle // column spans on paletteRow
}

func newTermLayout(cols, rows, bufferWidth, bufferHeight, swatchCount int) termLayout {
	l := termLayout{cols: cols, rows: rows, paletteRow: rows - 2}
	pageRows := rows - chromeRows
	if cols <= 0 || pageRows <= 0 {
		return l
	}
	l.page = layout.FitAspect(image.Rect(0, 0, cols, 2*pageRows), bufferWidth, bufferHeight)
	for i := 0; i <= swatchCount; i++ {
		x := 1 + i*(swatchCols+1)
		if x+swatchCols > cols {
			break
		}
		l.swatches = append(l.swatches, image.Rect(x, l.paletteRow, x+swatchCols, l.paletteRow+1))
	}
	return l
}

// pagePoint converts a terminal cell to a point on the page display
// surface. ok is false outside the page.
func (l termLayout) pagePoint(col, row int) (image.Point, bool) {
	p := image.Pt(col, 2*(row-1))
	if row < 1 || !p.In(l.page) {
		return image.Point{}, false
	}
	return p.Sub(l.page.Min), true
}

func (l termLayout) swatchAt(col, row int) (int, bool) {
	p := image.Pt(col, row)
	for i, r := range l.swatches {
		if p.In(r) {
			return i, true
		}
	}
	return 0, false
}

// TUI is the terminal front end of the simulator.
type TUI struct {
	screen  tcell.Screen
	control *SimControl
	canvas  *canvas.Canvas

	layout  termLayout
	snap    *fill.PixelBuffer
	version uint64
	message string
}

func NewTUI(screen tcell.Screen, control *SimControl) *TUI {
	return &TUI{screen: screen, control: control, canvas: control.Canvas}
}

// Run owns the screen until ctx is done or the user quits.
func (t *TUI) Run(ctx context.Context) error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	defer t.screen.Fini()
	t.screen.EnableMouse()
	t.screen.HideCursor()

	events := make(chan tcell.Event, 8)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(t.screen, events, done)

	t.draw()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := t.handle(ctx, ev); quit {
				return nil
			}
			t.draw()
		case <-ticker.C:
			// Web API taps change the canvas behind our back.
			if t.canvas.Version() != t.version {
				t.draw()
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or done is closed.
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (t *TUI) handle(ctx context.Context, ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		return t.handleKey(ctx, ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			col, row := ev.Position()
			t.click(col, row)
		}
	}
	return false
}

func (t *TUI) handleKey(ctx context.Context, ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}
	switch r := ev.Rune(); {
	case r >= '1' && r <= '9':
		t.selectIndex(int(r - '1'))
	case r == '0':
		t.selectIndex(9)
	case r == 'e':
		t.canvas.SelectEraser()
		t.message = "eraser"
	case r == 'r':
		if err := t.canvas.Reset(); err != nil {
			t.message = err.Error()
		} else {
			t.message = "fresh page"
		}
	case r == 's':
		if err := t.control.Export(ctx); err != nil {
			t.message = "save failed: " + err.Error()
		} else {
			t.message = "saved " + t.control.ArtworkName
		}
	case r == 'q':
		return true
	}
	return false
}

func (t *TUI) selectIndex(i int) {
	if s, err := t.canvas.SelectIndex(i); err != nil {
		t.message = err.Error()
	} else {
		t.message = s.Name
	}
}

// click fills at a page cell or selects the swatch under the pointer.
func (t *TUI) click(col, row int) {
	if i, ok := t.layout.swatchAt(col, row); ok {
		if i < len(t.canvas.Palette().Swatches) {
			t.selectIndex(i)
		} else {
			t.canvas.SelectEraser()
			t.message = "eraser"
		}
		return
	}
	p, ok := t.layout.pagePoint(col, row)
	if !ok {
		return
	}
	out, err := t.canvas.Click(float64(p.X)+0.5, float64(p.Y)+0.5, float64(t.layout.page.Dx()), float64(t.layout.page.Dy()))
	switch {
	case err != nil:
		t.message = err.Error()
	case out.Result.Painted > 0:
		t.message = fmt.Sprintf("painted %d px", out.Result.Painted)
	case out.Result.Skipped != fill.SkipNone:
		t.message = out.Result.Skipped.String()
	}
}

func (t *TUI) draw() {
	info := t.canvas.Info()
	if t.snap == nil || info.Version != t.version {
		t.snap = t.canvas.Snapshot()
		t.version = info.Version
	}
	cols, rows := t.screen.Size()
	pal := t.canvas.Palette()
	t.layout = newTermLayout(cols, rows, info.Width, info.Height, len(pal.Swatches))

	t.screen.Clear()
	base := tcell.StyleDefault.Background(backgroundColor).Foreground(tcell.ColorBlack)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			t.screen.SetContent(col, row, ' ', nil, base)
		}
	}

	status := fmt.Sprintf(" colorbook  %s  colour %s  fills %d  %s", info.Page, info.Selected.Name, info.Fills, t.message)
	drawString(t.screen, 0, 0, status, base.Bold(true))

	t.drawPage(rows)
	t.drawPalette(pal, info.Selected, base)
	drawString(t.screen, 1, rows-1, helpLine, base)
	t.screen.Show()
}

func (t *TUI) drawPage(rows int) {
	if t.snap == nil || t.layout.page.Empty() {
		return
	}
	page := t.layout.page
	for row := 1; row < rows-2; row++ {
		top := image.Pt(0, 2*(row-1))
		for col := page.Min.X; col < page.Max.X; col++ {
			top.X = col
			bottom := top.Add(image.Pt(0, 1))
			fg, okTop := t.sample(top)
			bg, okBottom := t.sample(bottom)
			if !okTop && !okBottom {
				continue
			}
			if !okTop {
				fg = backgroundColor
			}
			if !okBottom {
				bg = backgroundColor
			}
			t.screen.SetContent(col, row, '▀', nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

// sample reads the buffer pixel under a half-cell pixel of the page.
func (t *TUI) sample(p image.Point) (tcell.Color, bool) {
	page := t.layout.page
	if !p.In(page) {
		return tcell.ColorDefault, false
	}
	x, y, ok := canvas.ScalePoint(float64(p.X-page.Min.X)+0.5, float64(p.Y-page.Min.Y)+0.5,
		float64(page.Dx()), float64(page.Dy()), t.snap.Width(), t.snap.Height())
	if !ok {
		return tcell.ColorDefault, false
	}
	return toTcell(t.snap.RGBAAt(x, y)), true
}

func (t *TUI) drawPalette(pal palette.Palette, selected palette.Swatch, base tcell.Style) {
	for i, cell := range t.layout.swatches {
		sw := pal.Eraser
		label := "E"
		if i < len(pal.Swatches) {
			sw = pal.Swatches[i]
			label = fmt.Sprint((i + 1) % 10)
		}
		style := tcell.StyleDefault.Background(toTcell(sw.Color)).Foreground(toTcell(palette.Contrast(sw.Color)))
		if sw.Name == selected.Name && sw.Hex == selected.Hex {
			style = style.Underline(true).Bold(true)
			t.screen.SetContent(cell.Min.X-1, cell.Min.Y, '[', nil, base)
			t.screen.SetContent(cell.Max.X, cell.Min.Y, ']', nil, base)
		}
		for x := cell.Min.X; x < cell.Max.X; x++ {
			t.screen.SetContent(x, cell.Min.Y, ' ', nil, style)
		}
		t.screen.SetContent(cell.Min.X+cell.Dx()/2, cell.Min.Y, rune(label[0]), nil, style)
	}
}

func toTcell(c fill.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func drawString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
