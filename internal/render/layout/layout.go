package layout

import "image"

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// SplitVertical splits rect into left and right parts.
// leftWidthPx is clamped to [0, rect.Dx()].
func SplitVertical(rect image.Rectangle, leftWidthPx int) (left image.Rectangle, right image.Rectangle) {
	rect = Normalize(rect)
	width := rect.Dx()
	if leftWidthPx < 0 {
		leftWidthPx = 0
	}
	if leftWidthPx > width {
		leftWidthPx = width
	}
	left = image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+leftWidthPx, rect.Max.Y)
	right = image.Rect(rect.Min.X+leftWidthPx, rect.Min.Y, rect.Max.X, rect.Max.Y)
	return left, right
}

// SplitHorizontal splits rect into top and bottom parts.
// topHeightPx is clamped to [0, rect.Dy()].
func SplitHorizontal(rect image.Rectangle, topHeightPx int) (top image.Rectangle, bottom image.Rectangle) {
	rect = Normalize(rect)
	height := rect.Dy()
	if topHeightPx < 0 {
		topHeightPx = 0
	}
	if topHeightPx > height {
		topHeightPx = height
	}
	top = image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+topHeightPx)
	bottom = image.Rect(rect.Min.X, rect.Min.Y+topHeightPx, rect.Max.X, rect.Max.Y)
	return top, bottom
}

// AnchorTopLeft returns a rectangle of size (widthPx,heightPx) placed in the top-left of rect.
func AnchorTopLeft(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	if widthPx < 0 {
		widthPx = 0
	}
	if heightPx < 0 {
		heightPx = 0
	}
	maxW := rect.Dx()
	maxH := rect.Dy()
	if widthPx > maxW {
		widthPx = maxW
	}
	if heightPx > maxH {
		heightPx = maxH
	}
	return image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+widthPx, rect.Min.Y+heightPx)
}

// FitSquare returns the largest square that fits into rect, anchored at the top-left.
func FitSquare(rect image.Rectangle) image.Rectangle {
	rect = Normalize(rect)
	size := rect.Dx()
	if rect.Dy() < size {
		size = rect.Dy()
	}
	if size < 0 {
		size = 0
	}
	return AnchorTopLeft(rect, size, size)
}

// FitAspect returns the largest rectangle with the aspect ratio of a widthPx x heightPx
// image that fits into rect, centred. Width is fitted first and height is the fallback
// when the fitted height overflows.
func FitAspect(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	if widthPx <= 0 || heightPx <= 0 || rect.Empty() {
		return image.Rectangle{Min: rect.Min, Max: rect.Min}
	}
	aspect := float64(widthPx) / float64(heightPx)

	fitWidth := rect.Dx()
	fitHeight := int(float64(fitWidth) / aspect)
	if fitHeight > rect.Dy() {
		fitHeight = rect.Dy()
		fitWidth = int(float64(fitHeight) * aspect)
	}
	if fitWidth < 1 {
		fitWidth = 1
	}
	if fitHeight < 1 {
		fitHeight = 1
	}

	x := rect.Min.X + (rect.Dx()-fitWidth)/2
	y := rect.Min.Y + (rect.Dy()-fitHeight)/2
	return image.Rect(x, y, x+fitWidth, y+fitHeight)
}

// GridCells splits rect into cols x rows equal cells separated by gapPx, row-major.
func GridCells(rect image.Rectangle, cols, rows, gapPx int) []image.Rectangle {
	rect = Normalize(rect)
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if gapPx < 0 {
		gapPx = 0
	}
	cellWidth := (rect.Dx() - gapPx*(cols-1)) / cols
	cellHeight := (rect.Dy() - gapPx*(rows-1)) / rows
	if cellWidth < 0 {
		cellWidth = 0
	}
	if cellHeight < 0 {
		cellHeight = 0
	}
	cells := make([]image.Rectangle, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := rect.Min.X + col*(cellWidth+gapPx)
			y := rect.Min.Y + row*(cellHeight+gapPx)
			cells = append(cells, image.Rect(x, y, x+cellWidth, y+cellHeight))
		}
	}
	return cells
}
