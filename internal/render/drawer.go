package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/colorbook/internal/assets"
	"github.com/rook-computer/colorbook/internal/render/layout"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	titleFontSize = 48
	labelFontSize = 20
)

// ImageDrawer implements Drawer on an in-memory RGBA canvas. FBRenderer
// draws through it before blitting, tests draw through it directly.
type ImageDrawer struct {
	canvas    *image.RGBA
	titleFace font.Face
	labelFace font.Face
}

// NewImageDrawer creates a drawer with a canvas of the given size. Font
// faces fall back to basicfont when the embedded face cannot be parsed.
func NewImageDrawer(width, height int) (*ImageDrawer, error) {
	d := &ImageDrawer{
		canvas:    image.NewRGBA(image.Rect(0, 0, width, height)),
		titleFace: basicfont.Face7x13,
		labelFace: basicfont.Face7x13,
	}
	var firstErr error

	fnt, err := opentype.Parse(assets.FontTTF)
	if err == nil {
		face, ferr := opentype.NewFace(fnt, &opentype.FaceOptions{Size: titleFontSize, DPI: 72, Hinting: font.HintingFull})
		if ferr == nil {
			d.titleFace = face
		} else {
			firstErr = ferr
		}
	} else {
		firstErr = err
	}

	// Labels use the freetype rasterizer; small sizes hint better there.
	if tt, terr := truetype.Parse(assets.FontTTF); terr == nil {
		d.labelFace = truetype.NewFace(tt, &truetype.Options{Size: labelFontSize, DPI: 72, Hinting: font.HintingFull})
	} else if firstErr == nil {
		firstErr = terr
	}
	return d, firstErr
}

// Image exposes the backing canvas.
func (d *ImageDrawer) Image() *image.RGBA { return d.canvas }

func (d *ImageDrawer) Size() (int, int) {
	b := d.canvas.Bounds()
	return b.Dx(), b.Dy()
}

func (d *ImageDrawer) FillBackground() {
	draw.Draw(d.canvas, d.canvas.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
}

func (d *ImageDrawer) FillRect(rect image.Rectangle, c color.Color) {
	draw.Draw(d.canvas, rect.Intersect(d.canvas.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (d *ImageDrawer) StrokeRect(rect image.Rectangle, c color.Color, thicknessPx int) {
	if thicknessPx <= 0 || rect.Empty() {
		return
	}
	t := thicknessPx
	d.FillRect(image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t), c)
	d.FillRect(image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y), c)
	d.FillRect(image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y), c)
	d.FillRect(image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y), c)
}

func (d *ImageDrawer) faceFor(style TextStyle) font.Face {
	if style.Size > 0 && style.Size <= labelFontSize {
		return d.labelFace
	}
	return d.titleFace
}

func (d *ImageDrawer) MeasureText(text string, style TextStyle) TextMetrics {
	face := d.faceFor(style)
	m := face.Metrics()
	width := font.MeasureString(face, text).Ceil()
	return TextMetrics{
		Width:      width,
		Height:     m.Ascent.Ceil() + m.Descent.Ceil(),
		Ascent:     m.Ascent.Ceil(),
		Descent:    m.Descent.Ceil(),
		LineHeight: m.Height.Ceil(),
	}
}

func (d *ImageDrawer) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	metrics := d.MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= metrics.Width / 2
	case TextAlignRight:
		x -= metrics.Width
	}
	fg := style.Color
	if fg == nil {
		fg = Foreground
	}
	drawer := &font.Drawer{
		Dst:  d.canvas,
		Src:  image.NewUniform(fg),
		Face: d.faceFor(style),
		Dot:  fixed.P(x, y+metrics.Ascent),
	}
	drawer.DrawString(text)
	return metrics
}

func (d *ImageDrawer) ImageSize(img image.Image) (int, int) {
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func (d *ImageDrawer) DrawImage(img image.Image, x, y int, opts ImageOpts) {
	if img == nil {
		return
	}
	op := draw.Src
	if opts.Over {
		op = draw.Over
	}
	b := img.Bounds()
	draw.Draw(d.canvas, image.Rect(x, y, x+b.Dx(), y+b.Dy()), img, b.Min, op)
}

// DrawImageInRect scales img into rect with nearest-neighbour sampling so
// flat colour regions stay crisp.
func (d *ImageDrawer) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() {
		return
	}
	src := img.Bounds()
	dst := rect
	switch mode {
	case ScaleModeFit:
		dst = layout.FitAspect(rect, src.Dx(), src.Dy())
	case ScaleModeFill:
		dst = coverRect(rect, src.Dx(), src.Dy())
	}
	if dst.Empty() {
		return
	}
	clip := d.canvas.SubImage(rect.Intersect(d.canvas.Bounds())).(*image.RGBA)
	xdraw.NearestNeighbor.Scale(clip, dst, img, src, xdraw.Src, nil)
}

func (d *ImageDrawer) DrawTextCentered(text string) {
	w, h := d.Size()
	m := d.MeasureText(text, TextStyle{})
	d.DrawText(text, w/2, (h-m.Height)/2, TextStyle{Color: Foreground, Align: TextAlignCenter})
}

// coverRect scales (w,h) to cover rect entirely, centred; overflow is
// clipped by the caller.
func coverRect(rect image.Rectangle, w, h int) image.Rectangle {
	if w <= 0 || h <= 0 || rect.Empty() {
		return image.Rectangle{}
	}
	rw, rh := rect.Dx(), rect.Dy()
	dw, dh := rw, h*rw/w
	if dh < rh {
		dw, dh = w*rh/h, rh
	}
	x := rect.Min.X + (rw-dw)/2
	y := rect.Min.Y + (rh-dh)/2
	return image.Rect(x, y, x+dw, y+dh)
}
