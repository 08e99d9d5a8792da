package canvas

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/rook-computer/colorbook/internal/fill"
	"github.com/rook-computer/colorbook/internal/pages"
	"github.com/rook-computer/colorbook/internal/palette"
)

// framedPage is a 10x10 white page with a black square outline around a 6x6 interior.
func framedPage() pages.Page {
	buf := fill.NewPixelBuffer(10, 10)
	buf.Clear(fill.White)
	for i := 1; i <= 8; i++ {
		buf.SetRGBA(i, 1, fill.Black)
		buf.SetRGBA(i, 8, fill.Black)
		buf.SetRGBA(1, i, fill.Black)
		buf.SetRGBA(8, i, fill.Black)
	}
	return pages.Page{Name: "framed", Image: buf.Image()}
}

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	c, err := New(framedPage(), palette.Default(), fill.DefaultPolicy(), 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestScalePoint(t *testing.T) {
	tests := []struct {
		name         string
		dx, dy       float64
		dw, dh       float64
		bw, bh       int
		wantX, wantY int
		wantOK       bool
	}{
		{"identity", 5, 5, 10, 10, 10, 10, 5, 5, true},
		{"css scaled down", 50, 25, 100, 50, 10, 10, 5, 5, true},
		{"css scaled up", 3, 3, 5, 5, 10, 10, 6, 6, true},
		{"floors", 9.99, 0.5, 10, 10, 10, 10, 9, 0, true},
		{"right edge outside", 100, 10, 100, 50, 10, 10, 10, 2, false},
		{"negative", -1, 5, 10, 10, 10, 10, -1, 5, false},
		{"zero display", 1, 1, 0, 10, 10, 10, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := ScalePoint(tt.dx, tt.dy, tt.dw, tt.dh, tt.bw, tt.bh)
			if ok != tt.wantOK || (ok && (x != tt.wantX || y != tt.wantY)) {
				t.Errorf("ScalePoint = (%d,%d,%v), want (%d,%d,%v)", x, y, ok, tt.wantX, tt.wantY, tt.wantOK)
			}
		})
	}
}

func TestTap_FillsWithSelectedColor(t *testing.T) {
	c := newTestCanvas(t)
	if _, err := c.Select("#B22222"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	out, err := c.Tap(5, 5)
	if err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if out.Result.Painted != 36 {
		t.Errorf("painted = %d, want 36", out.Result.Painted)
	}
	snap := c.Snapshot()
	if got := snap.RGBAAt(3, 3); got != fill.RGB(0xB2, 0x22, 0x22) {
		t.Errorf("interior = %v, want firebrick", got)
	}
	if got := snap.RGBAAt(1, 1); got != fill.Black {
		t.Errorf("outline = %v, want black", got)
	}
	if info := c.Info(); info.Fills != 1 {
		t.Errorf("fills = %d, want 1", info.Fills)
	}
}

func TestTap_IgnoredCases(t *testing.T) {
	c := newTestCanvas(t)
	before := c.Snapshot()
	version := c.Version()

	out, err := c.Tap(42, 3)
	if err != nil || !out.Ignored {
		t.Errorf("out-of-bounds tap = %+v, %v; want ignored", out, err)
	}
	out, err = c.Tap(1, 1)
	if err != nil || out.Result.Skipped != fill.SkipOutline {
		t.Errorf("outline tap = %+v, %v; want outline skip", out, err)
	}
	out, err = c.Click(500, 500, 100, 100)
	if err != nil || !out.Ignored {
		t.Errorf("click outside = %+v, %v; want ignored", out, err)
	}

	if !c.Snapshot().Equal(before) {
		t.Error("ignored taps changed the buffer")
	}
	if c.Version() != version {
		t.Error("ignored taps bumped the version")
	}
}

func TestClick_ScalesDisplayCoordinates(t *testing.T) {
	c := newTestCanvas(t)
	// Displayed at 200x200: (100,100) maps to buffer (5,5).
	out, err := c.Click(100, 100, 200, 200)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if out.X != 5 || out.Y != 5 || out.Result.Painted != 36 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestResizeDiscardsColoring(t *testing.T) {
	c := newTestCanvas(t)
	if _, err := c.Tap(5, 5); err != nil {
		t.Fatal(err)
	}
	if err := c.Resize(40, 20); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	info := c.Info()
	if info.Width != 20 || info.Height != 20 {
		t.Errorf("size = %dx%d, want 20x20 (aspect fit)", info.Width, info.Height)
	}
	if info.Fills != 0 {
		t.Errorf("fills = %d after resize, want 0", info.Fills)
	}
	if err := c.Resize(0, 5); err == nil {
		t.Error("expected error for empty size")
	}
}

func TestResize_RejectsOversize(t *testing.T) {
	c := newTestCanvas(t)
	if _, err := c.Tap(5, 5); err != nil {
		t.Fatal(err)
	}
	before := c.Snapshot()
	var seen []Info
	c.OnChange = func(info Info) { seen = append(seen, info) }

	tests := []struct {
		name          string
		width, height int
	}{
		{"over the pixel cap", 6000, 6000},
		{"one row too many", 3840, 2161},
		{"product overflows int", 1 << 40, 1 << 40},
		{"negative", -10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Resize(tt.width, tt.height); !errors.Is(err, ErrInvalidSize) {
				t.Fatalf("Resize(%d, %d) err = %v, want ErrInvalidSize", tt.width, tt.height, err)
			}
		})
	}
	if !c.Snapshot().Equal(before) {
		t.Error("rejected resize changed the buffer")
	}
	if c.Info().Fills != 1 {
		t.Errorf("fills = %d, want coloring kept", c.Info().Fills)
	}
	if len(seen) != len(tests) || seen[0].Err == "" {
		t.Errorf("OnChange calls = %+v, want one per failure carrying the error", seen)
	}

	if err := c.Resize(3840, 2160); err != nil {
		t.Fatalf("Resize at the cap: %v", err)
	}
	if info := c.Info(); info.Err != "" {
		t.Errorf("error not cleared by a good resize: %q", info.Err)
	}
}

func TestResetRestoresPage(t *testing.T) {
	c := newTestCanvas(t)
	original := c.Snapshot()
	if _, err := c.Tap(5, 5); err != nil {
		t.Fatal(err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !c.Snapshot().Equal(original) {
		t.Error("reset did not restore the page")
	}
}

func TestSetPage_FailureKeepsCanvas(t *testing.T) {
	c := newTestCanvas(t)
	before := c.Snapshot()

	err := c.SetPage(pages.Page{Name: "broken"})
	if !errors.Is(err, pages.ErrCannotProcess) {
		t.Fatalf("err = %v, want ErrCannotProcess", err)
	}
	if !c.Snapshot().Equal(before) {
		t.Error("failed page load mutated the buffer")
	}
	if info := c.Info(); info.Page != "framed" || info.Err == "" {
		t.Errorf("info = %+v", info)
	}
}

func TestSelect(t *testing.T) {
	c := newTestCanvas(t)
	if s := c.SelectEraser(); s.Name != palette.EraserName {
		t.Errorf("eraser = %+v", s)
	}
	if s, err := c.SelectIndex(9); err != nil || s.Hex != "#00CED1" {
		t.Errorf("SelectIndex(9) = %+v, %v", s, err)
	}
	if _, err := c.SelectIndex(10); !errors.Is(err, palette.ErrUnknownColor) {
		t.Errorf("SelectIndex(10) err = %v", err)
	}
	if _, err := c.Select("chartreuse"); err == nil {
		t.Error("expected unknown color error")
	}
	if c.Selected().Hex != "#00CED1" {
		t.Errorf("selection changed by failed Select: %+v", c.Selected())
	}
}

func TestOnChange(t *testing.T) {
	c := newTestCanvas(t)
	var seen []Info
	c.OnChange = func(info Info) { seen = append(seen, info) }

	if _, err := c.Tap(5, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Tap(1, 1); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0].Fills != 1 {
		t.Errorf("OnChange calls = %+v, want one call after the fill", seen)
	}
}

func TestEncodePNG(t *testing.T) {
	c := newTestCanvas(t)
	if _, err := c.Tap(5, 5); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if got := fill.FromColor(img.At(4, 4)); got != fill.RGB(0xFF, 0xD7, 0x00) {
		t.Errorf("pixel = %v, want gold", got)
	}
}
