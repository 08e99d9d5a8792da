package pages

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

const BuiltinName = "pharaoh"

var (
	ink   = color.NRGBA{A: 0xFF}
	paper = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// Builtin draws the default page: pyramids by the Nile under a sun, in solid black
// outlines on white. All shapes are closed so every area fills independently.
func Builtin(width, height int) *image.NRGBA {
	if width < 64 {
		width = 64
	}
	if height < 48 {
		height = 48
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: paper}, image.Point{}, draw.Src)

	w, h := float64(width), float64(height)
	stroke := int(math.Max(2, math.Round(math.Min(w, h)/160)))
	px := func(fx float64) int { return int(math.Round(fx * w)) }
	py := func(fy float64) int { return int(math.Round(fy * h)) }

	// Frame.
	margin := stroke * 2
	rectOutline(img, image.Rect(margin, margin, width-margin, height-margin), stroke)

	// Horizon and river banks.
	horizon := py(0.62)
	riverTop := py(0.80)
	riverBottom := py(0.90)
	line(img, margin, horizon, width-margin, horizon, stroke)
	line(img, margin, riverTop, width-margin, riverTop, stroke)
	line(img, margin, riverBottom, width-margin, riverBottom, stroke)

	// Great pyramid with a door, smaller pyramid behind it.
	triangle(img, px(0.12), horizon, px(0.34), py(0.22), px(0.56), horizon, stroke)
	triangle(img, px(0.50), horizon, px(0.64), py(0.36), px(0.78), horizon, stroke)
	rectOutline(img, image.Rect(px(0.31), py(0.52), px(0.37), horizon), stroke)

	// Sun with rays.
	cx, cy := px(0.84), py(0.18)
	radius := int(math.Min(w, h) * 0.08)
	circleOutline(img, cx, cy, radius, stroke)
	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		x0 := cx + int(float64(radius+stroke*3)*math.Cos(angle))
		y0 := cy + int(float64(radius+stroke*3)*math.Sin(angle))
		x1 := cx + int(float64(radius*3/2+stroke*3)*math.Cos(angle))
		y1 := cy + int(float64(radius*3/2+stroke*3)*math.Sin(angle))
		line(img, x0, y0, x1, y1, stroke)
	}

	// Boat on the river.
	boatTop := riverTop + (riverBottom-riverTop)/4
	boatBottom := riverBottom - (riverBottom-riverTop)/4
	line(img, px(0.18), boatTop, px(0.38), boatTop, stroke)
	line(img, px(0.18), boatTop, px(0.22), boatBottom, stroke)
	line(img, px(0.38), boatTop, px(0.34), boatBottom, stroke)
	line(img, px(0.22), boatBottom, px(0.34), boatBottom, stroke)

	return img
}

// stamp paints a stroke x stroke square centred on (x, y).
func stamp(img *image.NRGBA, x, y, stroke int) {
	half := stroke / 2
	r := image.Rect(x-half, y-half, x-half+stroke, y-half+stroke).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: ink}, image.Point{}, draw.Src)
}

// line draws a thick Bresenham line.
func line(img *image.NRGBA, x0, y0, x1, y1, stroke int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		stamp(img, x0, y0, stroke)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func triangle(img *image.NRGBA, x0, y0, x1, y1, x2, y2, stroke int) {
	line(img, x0, y0, x1, y1, stroke)
	line(img, x1, y1, x2, y2, stroke)
	line(img, x2, y2, x0, y0, stroke)
}

func rectOutline(img *image.NRGBA, r image.Rectangle, stroke int) {
	line(img, r.Min.X, r.Min.Y, r.Max.X-1, r.Min.Y, stroke)
	line(img, r.Max.X-1, r.Min.Y, r.Max.X-1, r.Max.Y-1, stroke)
	line(img, r.Max.X-1, r.Max.Y-1, r.Min.X, r.Max.Y-1, stroke)
	line(img, r.Min.X, r.Max.Y-1, r.Min.X, r.Min.Y, stroke)
}

// circleOutline paints every pixel whose distance from the centre is within half a
// stroke of radius.
func circleOutline(img *image.NRGBA, cx, cy, radius, stroke int) {
	outer := float64(radius) + float64(stroke)/2
	inner := float64(radius) - float64(stroke)/2
	bounds := image.Rect(cx-int(outer)-1, cy-int(outer)-1, cx+int(outer)+2, cy+int(outer)+2).Intersect(img.Bounds())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if d >= inner && d <= outer {
				img.SetNRGBA(x, y, ink)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
