package fill

import (
	"errors"
	"image"
)

var (
	ErrNoBuffer    = errors.New("fill: no pixel buffer")
	ErrOutOfBounds = errors.New("fill: seed outside buffer")
)

// SkipReason explains why a fill did nothing.
type SkipReason int

const (
	SkipNone SkipReason = iota
	// SkipSameColor: the seed already has the fill colour.
	SkipSameColor
	// SkipOutline: the seed is a boundary pixel.
	SkipOutline
	// SkipNoMatch: the seed itself is not fillable (e.g. partially transparent).
	SkipNoMatch
)

func (s SkipReason) String() string {
	switch s {
	case SkipNone:
		return ""
	case SkipSameColor:
		return "same_color"
	case SkipOutline:
		return "outline"
	case SkipNoMatch:
		return "no_match"
	default:
		return "unknown"
	}
}

// Result describes a completed fill.
type Result struct {
	Painted int
	Bounds  image.Rectangle
	Skipped SkipReason
}

// FloodFill fills the region around (x, y) using DefaultPolicy.
func FloodFill(buf *PixelBuffer, x, y int, c Color) (Result, error) {
	return DefaultPolicy().Fill(buf, x, y, c)
}

type seedPoint struct{ x, y int }

// Fill repaints every pixel 4-connected to (x, y) whose colour matches the seed's
// original colour, stopping at outline pixels and buffer edges. Painted pixels get the
// RGB of c and alpha 255.
//
// It is a column scanline fill driven by an explicit stack: each popped seed walks up to
// the top of its run, then paints downward, pushing the left and right neighbours once
// per contiguous matching run on that side.
func (p Policy) Fill(buf *PixelBuffer, x, y int, c Color) (Result, error) {
	if buf == nil || buf.width == 0 || buf.height == 0 {
		return Result{}, ErrNoBuffer
	}
	if !buf.In(x, y) {
		return Result{}, ErrOutOfBounds
	}

	seed := buf.RGBAAt(x, y)
	if seed.SameRGB(c) {
		return Result{Skipped: SkipSameColor}, nil
	}
	if p.IsOutline(seed) {
		return Result{Skipped: SkipOutline}, nil
	}

	width, height := buf.width, buf.height
	// A painted pixel can still sit within tolerance of the seed, so track it explicitly.
	painted := make([]bool, width*height)
	match := func(px, py int) bool {
		if painted[py*width+px] {
			return false
		}
		i := buf.offset(px, py)
		return p.Matches(Color{R: buf.Pix[i], G: buf.Pix[i+1], B: buf.Pix[i+2], A: buf.Pix[i+3]}, seed)
	}

	res := Result{}
	minX, minY, maxX, maxY := width, height, -1, -1

	stack := []seedPoint{{x: x, y: y}}
	for len(stack) > 0 {
		pt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		px, py := pt.x, pt.y
		if !match(px, py) {
			continue
		}
		for py > 0 && match(px, py-1) {
			py--
		}

		reachLeft, reachRight := false, false
		for py < height && match(px, py) {
			i := buf.offset(px, py)
			buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = c.R, c.G, c.B, 255
			painted[py*width+px] = true
			res.Painted++
			if px < minX {
				minX = px
			}
			if px > maxX {
				maxX = px
			}
			if py < minY {
				minY = py
			}
			if py > maxY {
				maxY = py
			}

			if px > 0 {
				if match(px-1, py) {
					if !reachLeft {
						stack = append(stack, seedPoint{x: px - 1, y: py})
						reachLeft = true
					}
				} else {
					reachLeft = false
				}
			}
			if px < width-1 {
				if match(px+1, py) {
					if !reachRight {
						stack = append(stack, seedPoint{x: px + 1, y: py})
						reachRight = true
					}
				} else {
					reachRight = false
				}
			}
			py++
		}
	}

	if res.Painted == 0 {
		res.Skipped = SkipNoMatch
		return res, nil
	}
	res.Bounds = image.Rect(minX, minY, maxX+1, maxY+1)
	return res, nil
}
