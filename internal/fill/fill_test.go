package fill

import (
	"errors"
	"testing"
)

// framedBuffer returns a 10x10 white buffer with a 1px black square outline whose
// interior is the 6x6 block from (2,2) to (7,7).
func framedBuffer() *PixelBuffer {
	buf := NewPixelBuffer(10, 10)
	buf.Clear(White)
	for i := 1; i <= 8; i++ {
		buf.SetRGBA(i, 1, Black)
		buf.SetRGBA(i, 8, Black)
		buf.SetRGBA(1, i, Black)
		buf.SetRGBA(8, i, Black)
	}
	return buf
}

func inInterior(x, y int) bool { return x >= 2 && x <= 7 && y >= 2 && y <= 7 }

func onOutline(x, y int) bool {
	inSquare := x >= 1 && x <= 8 && y >= 1 && y <= 8
	return inSquare && !inInterior(x, y)
}

func TestFloodFill_FramedInterior(t *testing.T) {
	buf := framedBuffer()
	red := RGB(255, 0, 0)

	res, err := FloodFill(buf, 5, 5, red)
	if err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	if res.Painted != 36 {
		t.Errorf("painted = %d, want 36", res.Painted)
	}
	if got, want := res.Bounds.String(), "(2,2)-(8,8)"; got != want {
		t.Errorf("bounds = %s, want %s", got, want)
	}

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			got := buf.RGBAAt(x, y)
			switch {
			case inInterior(x, y):
				if got != red {
					t.Errorf("interior (%d,%d) = %v, want %v", x, y, got, red)
				}
			case onOutline(x, y):
				if got != Black {
					t.Errorf("outline (%d,%d) = %v, want %v", x, y, got, Black)
				}
			default:
				if got != White {
					t.Errorf("outside (%d,%d) = %v, want %v", x, y, got, White)
				}
			}
		}
	}
}

func TestFloodFill_AnyInteriorSeed(t *testing.T) {
	for y := 2; y <= 7; y++ {
		for x := 2; x <= 7; x++ {
			buf := framedBuffer()
			res, err := FloodFill(buf, x, y, RGB(0, 0, 255))
			if err != nil {
				t.Fatalf("seed (%d,%d): %v", x, y, err)
			}
			if res.Painted != 36 {
				t.Errorf("seed (%d,%d): painted = %d, want 36", x, y, res.Painted)
			}
		}
	}
}

func TestFloodFill_SameColorIsNoop(t *testing.T) {
	buf := framedBuffer()
	before := buf.Clone()

	res, err := FloodFill(buf, 4, 4, White)
	if err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	if res.Skipped != SkipSameColor || res.Painted != 0 {
		t.Errorf("result = %+v, want skipped same_color", res)
	}
	if !buf.Equal(before) {
		t.Error("buffer changed on same-color fill")
	}

	// Refilling an already filled region with the same colour is a no-op too.
	if _, err := FloodFill(buf, 4, 4, RGB(10, 200, 10)); err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	filled := buf.Clone()
	res, _ = FloodFill(buf, 3, 6, RGB(10, 200, 10))
	if res.Skipped != SkipSameColor {
		t.Errorf("second fill skipped = %v, want same_color", res.Skipped)
	}
	if !buf.Equal(filled) {
		t.Error("buffer changed on refill with same color")
	}
}

func TestFloodFill_OutlineSeedIsNoop(t *testing.T) {
	buf := framedBuffer()
	// Near black but not pure black still counts as outline.
	buf.SetRGBA(1, 4, Color{R: 49, G: 10, B: 30, A: 255})
	before := buf.Clone()

	for _, pt := range [][2]int{{1, 1}, {8, 8}, {1, 4}, {5, 8}} {
		res, err := FloodFill(buf, pt[0], pt[1], RGB(255, 0, 0))
		if err != nil {
			t.Fatalf("seed %v: %v", pt, err)
		}
		if res.Skipped != SkipOutline {
			t.Errorf("seed %v: skipped = %v, want outline", pt, res.Skipped)
		}
	}
	if !buf.Equal(before) {
		t.Error("buffer changed after clicking outline pixels")
	}
}

func TestFloodFill_DisjointRegions(t *testing.T) {
	buf := NewPixelBuffer(9, 5)
	buf.Clear(White)
	for y := 0; y < 5; y++ {
		buf.SetRGBA(4, y, Black)
	}

	res, err := FloodFill(buf, 1, 2, RGB(0, 128, 0))
	if err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	if res.Painted != 20 {
		t.Errorf("painted = %d, want 20", res.Painted)
	}
	for y := 0; y < 5; y++ {
		for x := 5; x < 9; x++ {
			if got := buf.RGBAAt(x, y); got != White {
				t.Fatalf("right region (%d,%d) = %v, want white", x, y, got)
			}
		}
	}
}

func TestFloodFill_Tolerance(t *testing.T) {
	seed := RGB(100, 100, 100)
	tests := []struct {
		name      string
		neighbour Color
		want      bool
	}{
		{"exactly 20 in every channel", RGB(120, 80, 120), true},
		{"21 in red", RGB(121, 100, 100), false},
		{"21 in green", RGB(100, 79, 100), false},
		{"21 in blue", RGB(100, 100, 121), false},
		{"semi transparent", Color{R: 100, G: 100, B: 100, A: 254}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewPixelBuffer(2, 1)
			buf.SetRGBA(0, 0, seed)
			buf.SetRGBA(1, 0, tt.neighbour)

			res, err := FloodFill(buf, 0, 0, RGB(255, 0, 0))
			if err != nil {
				t.Fatalf("FloodFill: %v", err)
			}
			got := buf.RGBAAt(1, 0) == RGB(255, 0, 0)
			if got != tt.want {
				t.Errorf("neighbour filled = %v, want %v (painted %d)", got, tt.want, res.Painted)
			}
		})
	}
}

func TestFloodFill_ChannelsIndependent(t *testing.T) {
	// Euclidean distance of (20,20,20) is ~34.6, still included.
	p := DefaultPolicy()
	if !p.Matches(RGB(220, 220, 220), RGB(200, 200, 200)) {
		t.Error("per-channel tolerance rejected a 20/20/20 difference")
	}
}

func TestFloodFill_OutOfBounds(t *testing.T) {
	buf := framedBuffer()
	before := buf.Clone()
	for _, pt := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}, {100, 100}} {
		_, err := FloodFill(buf, pt[0], pt[1], RGB(1, 2, 3))
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("seed %v: err = %v, want ErrOutOfBounds", pt, err)
		}
	}
	if !buf.Equal(before) {
		t.Error("buffer changed after out-of-bounds seeds")
	}
}

func TestFloodFill_NoBuffer(t *testing.T) {
	if _, err := FloodFill(nil, 0, 0, White); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("nil buffer err = %v, want ErrNoBuffer", err)
	}
	if _, err := FloodFill(NewPixelBuffer(0, 0), 0, 0, White); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("empty buffer err = %v, want ErrNoBuffer", err)
	}
}

func TestFloodFill_TransparentSeed(t *testing.T) {
	buf := NewPixelBuffer(3, 3)
	buf.Clear(Color{R: 255, G: 255, B: 255, A: 128})
	before := buf.Clone()

	res, err := FloodFill(buf, 1, 1, RGB(255, 0, 0))
	if err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	if res.Skipped != SkipNoMatch || res.Painted != 0 {
		t.Errorf("result = %+v, want no_match", res)
	}
	if !buf.Equal(before) {
		t.Error("transparent pixels were filled")
	}
}

func TestFloodFill_FillWithinTolerance(t *testing.T) {
	// The fill colour is within tolerance of the seed; the fill must still terminate
	// and paint each pixel once.
	buf := NewPixelBuffer(16, 16)
	buf.Clear(White)

	res, err := FloodFill(buf, 8, 8, RGB(250, 250, 250))
	if err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	if res.Painted != 256 {
		t.Errorf("painted = %d, want 256", res.Painted)
	}
}

func TestFloodFill_ConcaveRegion(t *testing.T) {
	// A U-shaped region forces seeds to be pushed on both sides and walked upward.
	//   ..........
	//   .#######..
	//   .#.....#..
	//   .#.###.#..
	//   .#.#.#.#..
	//   .#.#.#.#..
	//   .###.###..
	//   ..........
	rows := []string{
		"..........",
		".#######..",
		".#.....#..",
		".#.###.#..",
		".#.#.#.#..",
		".#.#.#.#..",
		".###.###..",
		"..........",
	}
	buf := NewPixelBuffer(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				buf.SetRGBA(x, y, Black)
			} else {
				buf.SetRGBA(x, y, White)
			}
		}
	}

	res, err := FloodFill(buf, 2, 5, RGB(0, 0, 255))
	if err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	// Interior of the U: row 2 (5 px) plus the two legs at x=2 and x=6 on rows 3..5.
	if res.Painted != 11 {
		t.Errorf("painted = %d, want 11", res.Painted)
	}
	if got := buf.RGBAAt(4, 4); got != White {
		t.Errorf("pocket between the legs (4,4) = %v, want white", got)
	}
	if got := buf.RGBAAt(0, 0); got != White {
		t.Errorf("outside (0,0) = %v, want white", got)
	}
}

func TestFloodFill_LargeRegion(t *testing.T) {
	buf := NewPixelBuffer(512, 512)
	buf.Clear(White)

	res, err := FloodFill(buf, 0, 0, RGB(1, 2, 3))
	if err != nil {
		t.Fatalf("FloodFill: %v", err)
	}
	if res.Painted != 512*512 {
		t.Errorf("painted = %d, want %d", res.Painted, 512*512)
	}
}

func BenchmarkFloodFill(b *testing.B) {
	buf := NewPixelBuffer(1024, 768)
	buf.Clear(White)
	colors := []Color{RGB(255, 0, 0), RGB(0, 255, 0)}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = FloodFill(buf, 512, 384, colors[i%2])
	}
}
