package fill

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
)

// PixelBuffer is a row-major RGBA pixel grid, 4 bytes per pixel, non-premultiplied.
// It is the backing store of a coloring canvas and is mutated in place by fills.
type PixelBuffer struct {
	Pix    []uint8
	Stride int
	width  int
	height int
}

func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Pix:    make([]uint8, width*height*4),
		Stride: width * 4,
		width:  width,
		height: height,
	}
}

// FromImage copies img into a new buffer anchored at (0,0).
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	buf := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	draw.Draw(buf.Image(), buf.Bounds(), img, bounds.Min, draw.Src)
	return buf
}

func (b *PixelBuffer) Width() int  { return b.width }
func (b *PixelBuffer) Height() int { return b.height }

func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// In reports whether (x, y) lies inside the buffer.
func (b *PixelBuffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

func (b *PixelBuffer) offset(x, y int) int {
	return y*b.Stride + x*4
}

// RGBAAt returns the pixel at (x, y). Out-of-bounds reads return the zero Color.
func (b *PixelBuffer) RGBAAt(x, y int) Color {
	if !b.In(x, y) {
		return Color{}
	}
	i := b.offset(x, y)
	s := b.Pix[i : i+4 : i+4]
	return Color{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// SetRGBA writes the pixel at (x, y). Out-of-bounds writes are ignored.
func (b *PixelBuffer) SetRGBA(x, y int, c Color) {
	if !b.In(x, y) {
		return
	}
	i := b.offset(x, y)
	s := b.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
}

// Clear sets every pixel to c.
func (b *PixelBuffer) Clear(c Color) {
	for i := 0; i+3 < len(b.Pix); i += 4 {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Image returns an *image.NRGBA view sharing the buffer's memory.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{Pix: b.Pix, Stride: b.Stride, Rect: b.Bounds()}
}

// At implements image.Image.
func (b *PixelBuffer) At(x, y int) color.Color { return b.RGBAAt(x, y) }

// ColorModel implements image.Image.
func (b *PixelBuffer) ColorModel() color.Model { return color.NRGBAModel }

func (b *PixelBuffer) Clone() *PixelBuffer {
	out := &PixelBuffer{
		Pix:    make([]uint8, len(b.Pix)),
		Stride: b.Stride,
		width:  b.width,
		height: b.height,
	}
	copy(out.Pix, b.Pix)
	return out
}

// Equal reports whether both buffers have the same size and identical bytes.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.width == o.width && b.height == o.height && bytes.Equal(b.Pix, o.Pix)
}
