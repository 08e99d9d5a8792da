package screens

import (
	"image"

	"github.com/rook-computer/colorbook/internal/render/layout"
)

const (
	titleHeightPx   = 110
	paletteHeightPx = 150
	sidebarWidthPx  = 380
	marginPx        = 24
	swatchGapPx     = 18
)

// ColoringLayout places the coloring screen's regions on the logical canvas.
// The app uses the same layout to route taps.
type ColoringLayout struct {
	Title    image.Rectangle
	PageArea image.Rectangle
	Sidebar  image.Rectangle
	QR       image.Rectangle
	Status   image.Rectangle
	Palette  image.Rectangle
	// Swatches holds one cell per palette colour followed by the eraser.
	Swatches []image.Rectangle
}

func NewColoringLayout(width, height, swatchCount int) ColoringLayout {
	full := image.Rect(0, 0, width, height)
	title, body := layout.SplitHorizontal(full, titleHeightPx)
	main, paletteRow := layout.SplitHorizontal(body, body.Dy()-paletteHeightPx)
	pageArea, sidebar := layout.SplitVertical(main, main.Dx()-sidebarWidthPx)
	sidebar = layout.Inset(sidebar, marginPx)
	qr := layout.FitSquare(sidebar)
	_, status := layout.SplitHorizontal(sidebar, qr.Dy()+marginPx)

	paletteRow = layout.Inset(paletteRow, marginPx)
	return ColoringLayout{
		Title:    layout.Inset(title, marginPx),
		PageArea: layout.Inset(pageArea, marginPx),
		Sidebar:  sidebar,
		QR:       qr,
		Status:   status,
		Palette:  paletteRow,
		Swatches: swatchCells(paletteRow, swatchCount+1),
	}
}

// swatchCells lays out square cells centred in row.
func swatchCells(row image.Rectangle, n int) []image.Rectangle {
	if n <= 0 || row.Empty() {
		return nil
	}
	size := row.Dy()
	if fit := (row.Dx() - (n-1)*swatchGapPx) / n; fit < size {
		size = fit
	}
	if size <= 0 {
		return nil
	}
	total := n*size + (n-1)*swatchGapPx
	x := row.Min.X + (row.Dx()-total)/2
	strip := image.Rect(x, row.Min.Y, x+total, row.Min.Y+size)
	return layout.GridCells(strip, n, 1, swatchGapPx)
}

// PageRect is where a bufferWidth x bufferHeight page is drawn.
func (l ColoringLayout) PageRect(bufferWidth, bufferHeight int) image.Rectangle {
	return layout.FitAspect(l.PageArea, bufferWidth, bufferHeight)
}

// SwatchAt returns the index of the swatch cell containing p. The index
// equal to the palette length is the eraser.
func (l ColoringLayout) SwatchAt(p image.Point) (int, bool) {
	for i, cell := range l.Swatches {
		if p.In(cell) {
			return i, true
		}
	}
	return 0, false
}
