package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gotranspile/gotrace"

	"github.com/rook-computer/colorbook/internal/fill"
)

// OutlineMask draws the outline pixels of buf black on white; gotrace traces the dark
// pixels.
func OutlineMask(buf *fill.PixelBuffer, policy fill.Policy) *image.Gray {
	mask := image.NewGray(buf.Bounds())
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			if !policy.IsOutline(buf.RGBAAt(x, y)) {
				mask.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	return mask
}

// TraceOutlineSVG vectorises the line art of buf and writes it as SVG.
func TraceOutlineSVG(w io.Writer, buf *fill.PixelBuffer, policy fill.Policy) error {
	if buf == nil || buf.Width() == 0 || buf.Height() == 0 {
		return fill.ErrNoBuffer
	}
	mask := OutlineMask(buf, policy)
	bm := gotrace.BitmapFromGray(mask, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return fmt.Errorf("trace outline: %w", err)
	}

	var out bytes.Buffer
	if err := gotrace.Render("svg", nil, &out, paths, buf.Width(), buf.Height()); err != nil {
		return fmt.Errorf("render outline: %w", err)
	}
	_, err = w.Write(out.Bytes())
	return err
}
