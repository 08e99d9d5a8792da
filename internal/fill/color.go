package fill

import "image/color"

// Color is a non-premultiplied 8-bit RGBA colour, the layout of one pixel in a PixelBuffer.
type Color struct {
	R, G, B, A uint8
}

// Common colours.
var (
	Black = Color{R: 0, G: 0, B: 0, A: 255}
	White = Color{R: 255, G: 255, B: 255, A: 255}
)

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

// FromColor converts any color.Color to a non-premultiplied Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Opaque returns c with alpha forced to 255.
func (c Color) Opaque() Color {
	c.A = 255
	return c
}

// SameRGB reports whether both colours have identical colour channels. Alpha is ignored.
func (c Color) SameRGB(o Color) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B
}
