package render

import (
	"image"
	"image/color"
	"testing"
)

func newTestDrawer(t *testing.T, w, h int) *ImageDrawer {
	t.Helper()
	d, err := NewImageDrawer(w, h)
	if err != nil {
		t.Fatalf("NewImageDrawer: %v", err)
	}
	return d
}

func TestFillAndStrokeRect(t *testing.T) {
	d := newTestDrawer(t, 20, 20)
	d.FillBackground()
	red := color.RGBA{R: 255, A: 255}
	d.StrokeRect(image.Rect(2, 2, 12, 12), red, 2)

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{2, 2, red},
		{3, 7, red},
		{11, 11, red},
		{6, 6, Background},
		{15, 15, Background},
	}
	for _, tt := range tests {
		if got := d.Image().RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	// Fills are clipped to the canvas.
	d.FillRect(image.Rect(-5, -5, 100, 1), red)
	if got := d.Image().RGBAAt(19, 0); got != red {
		t.Errorf("clipped fill pixel = %v, want %v", got, red)
	}
}

func TestDrawImageInRect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	blue := color.RGBA{B: 255, A: 255}
	for x := 0; x < 2; x++ {
		src.SetRGBA(x, 0, blue)
	}

	t.Run("fit letterboxes", func(t *testing.T) {
		d := newTestDrawer(t, 40, 40)
		d.FillBackground()
		d.DrawImageInRect(src, image.Rect(0, 0, 40, 40), ScaleModeFit)
		if got := d.Image().RGBAAt(20, 20); got != blue {
			t.Errorf("centre = %v, want %v", got, blue)
		}
		if got := d.Image().RGBAAt(20, 2); got != Background {
			t.Errorf("top band = %v, want background", got)
		}
	})

	t.Run("fill covers and clips", func(t *testing.T) {
		d := newTestDrawer(t, 40, 40)
		d.FillBackground()
		d.DrawImageInRect(src, image.Rect(10, 10, 30, 30), ScaleModeFill)
		if got := d.Image().RGBAAt(10, 10); got != blue {
			t.Errorf("corner = %v, want %v", got, blue)
		}
		if got := d.Image().RGBAAt(5, 20); got != Background {
			t.Errorf("outside rect = %v, want background", got)
		}
	})
}

func TestCoverRect(t *testing.T) {
	tests := []struct {
		rect image.Rectangle
		w, h int
		want image.Rectangle
	}{
		{image.Rect(0, 0, 100, 100), 200, 100, image.Rect(-50, 0, 150, 100)},
		{image.Rect(0, 0, 100, 100), 100, 200, image.Rect(0, -50, 100, 150)},
		{image.Rect(0, 0, 100, 100), 0, 10, image.Rectangle{}},
	}
	for _, tt := range tests {
		if got := coverRect(tt.rect, tt.w, tt.h); got != tt.want {
			t.Errorf("coverRect(%v, %d, %d) = %v, want %v", tt.rect, tt.w, tt.h, got, tt.want)
		}
	}
}

func TestDrawTextAlign(t *testing.T) {
	d := newTestDrawer(t, 200, 60)
	style := TextStyle{Size: labelFontSize}
	m := d.MeasureText("Colorbook", style)
	if m.Width <= 0 || m.Height <= 0 {
		t.Fatalf("metrics = %+v, want positive size", m)
	}
	if wide := d.MeasureText("Colorbook", TextStyle{}); wide.Width <= m.Width {
		t.Errorf("title width %d not larger than label width %d", wide.Width, m.Width)
	}

	d.FillBackground()
	d.DrawText("Colorbook", 100, 10, TextStyle{Size: labelFontSize, Align: TextAlignCenter})
	inked := false
	for x := 100 - m.Width/2; x < 100+m.Width/2 && !inked; x++ {
		for y := 10; y < 10+m.Height; y++ {
			if d.Image().RGBAAt(x, y) != Background {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("centred text left no ink inside its measured box")
	}
}

func TestToCanvas(t *testing.T) {
	tests := []struct {
		x, y, w, h int
		want       image.Point
	}{
		{0, 0, 1280, 720, image.Pt(0, 0)},
		{640, 360, 1280, 720, image.Pt(CanvasWidth/2, CanvasHeight/2)},
		{5, 7, 0, 0, image.Pt(5, 7)},
	}
	for _, tt := range tests {
		if got := ToCanvas(tt.x, tt.y, tt.w, tt.h); got != tt.want {
			t.Errorf("ToCanvas(%d,%d,%d,%d) = %v, want %v", tt.x, tt.y, tt.w, tt.h, got, tt.want)
		}
	}
}

func TestQRCache(t *testing.T) {
	var cache QRCache
	a, err := cache.Image("http://10.0.0.2/", 128)
	if err != nil || a == nil {
		t.Fatalf("Image: %v, %v", a, err)
	}
	b, _ := cache.Image("http://10.0.0.2/", 128)
	if a != b {
		t.Error("same payload regenerated the image")
	}
	c, _ := cache.Image("http://10.0.0.3/", 128)
	if c == a {
		t.Error("new payload returned the cached image")
	}
	if img, err := GenerateQRCodeImage("", 10); img != nil || err != nil {
		t.Errorf("empty payload = %v, %v; want nil, nil", img, err)
	}
}
