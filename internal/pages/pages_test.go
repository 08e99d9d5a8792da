package pages

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rook-computer/colorbook/internal/fill"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBuiltin_OnlyInkAndPaper(t *testing.T) {
	img := Builtin(320, 240)
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 240 {
		t.Fatalf("size = %v", img.Bounds())
	}
	var inkCount int
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			c := img.NRGBAAt(x, y)
			switch c {
			case ink:
				inkCount++
			case paper:
			default:
				t.Fatalf("pixel (%d,%d) = %v, want ink or paper", x, y, c)
			}
		}
	}
	if inkCount == 0 {
		t.Error("builtin page has no outlines")
	}
}

func TestBuiltin_SunIsClosed(t *testing.T) {
	img := Builtin(640, 480)
	buf := fill.FromImage(img)
	w, h := 640.0, 480.0
	cx, cy := int(0.84*w+0.5), int(0.18*h+0.5)

	res, err := fill.FloodFill(buf, cx, cy, fill.RGB(255, 215, 0))
	if err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	radius := int(h * 0.08)
	if res.Painted == 0 || res.Painted > 4*radius*radius {
		t.Errorf("painted = %d, sun interior should be bounded by radius %d", res.Painted, radius)
	}
	if got := buf.RGBAAt(10, 470); got == fill.RGB(255, 215, 0) {
		t.Error("fill leaked out of the sun")
	}
}

func TestDecode(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.SetNRGBA(1, 1, color.NRGBA{R: 9, A: 255})

	img, format, err := Decode(bytes.NewReader(encodePNG(t, src)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 4 {
		t.Errorf("format %q bounds %v", format, img.Bounds())
	}

	if _, _, err := Decode(strings.NewReader("definitely not an image")); !errors.Is(err, ErrCannotProcess) {
		t.Errorf("garbage err = %v, want ErrCannotProcess", err)
	}
}

// pngHeader returns a PNG signature and IHDR chunk declaring a width x height RGBA
// image, with no pixel data behind it.
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, "IHDR"...)
	ihdr = binary.BigEndian.AppendUint32(ihdr, width)
	ihdr = binary.BigEndian.AppendUint32(ihdr, height)
	ihdr = append(ihdr, 8, 6, 0, 0, 0) // 8-bit RGBA, no interlace

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, uint32(len(ihdr)-4))
	out = append(out, ihdr...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(ihdr))
}

func TestDecode_RejectsHugeDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
	}{
		{"wide", MaxPageDimension + 1, 10},
		{"tall", 10, MaxPageDimension + 1},
		{"declared gigapixel", 50000, 50000},
		{"area over the cap", 8000, 8000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader(pngHeader(tt.width, tt.height)))
			if !errors.Is(err, ErrCannotProcess) {
				t.Fatalf("err = %v, want ErrCannotProcess", err)
			}
			if !strings.Contains(err.Error(), "exceeds") {
				t.Errorf("err = %v, want a size rejection", err)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	pngBytes := encodePNG(t, Builtin(64, 48))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/forbidden.png":
			http.Error(w, "cross-origin", http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	page, err := Fetch(context.Background(), srv.Client(), srv.URL+"/page.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Image.Bounds().Dx() != 64 {
		t.Errorf("width = %d", page.Image.Bounds().Dx())
	}

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL+"/forbidden.png"); !errors.Is(err, ErrCannotProcess) {
		t.Errorf("forbidden err = %v, want ErrCannotProcess", err)
	}
}

func TestLoad(t *testing.T) {
	page, err := Load(context.Background(), "", 200, 100)
	if err != nil {
		t.Fatalf("Load builtin: %v", err)
	}
	if page.Name != BuiltinName || page.Image.Bounds().Dx() != 200 {
		t.Errorf("page = %s %v", page.Name, page.Image.Bounds())
	}

	path := filepath.Join(t.TempDir(), "page.png")
	if err := os.WriteFile(path, encodePNG(t, Builtin(80, 60)), 0o644); err != nil {
		t.Fatal(err)
	}
	page, err = Load(context.Background(), path, 0, 0)
	if err != nil {
		t.Fatalf("Load file: %v", err)
	}
	if page.Image.Bounds().Dy() != 60 {
		t.Errorf("height = %d", page.Image.Bounds().Dy())
	}

	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.png"), 0, 0); !errors.Is(err, ErrCannotProcess) {
		t.Errorf("missing file err = %v, want ErrCannotProcess", err)
	}
}
