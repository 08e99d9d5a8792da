package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/rook-computer/colorbook/internal/app/screens"
	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/export"
	"github.com/rook-computer/colorbook/internal/fill"
	"github.com/rook-computer/colorbook/internal/input"
	"github.com/rook-computer/colorbook/internal/pages"
	"github.com/rook-computer/colorbook/internal/palette"
	"github.com/rook-computer/colorbook/internal/render"
	"github.com/rook-computer/colorbook/internal/state"
)

type countingPlayer struct {
	fills, denied int
}

func (p *countingPlayer) PlayFill()   { p.fills++ }
func (p *countingPlayer) PlayDenied() { p.denied++ }
func (p *countingPlayer) Close()      {}

// framedPage returns a white page with a two pixel black frame.
func framedPage(w, h int) pages.Page {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x < 2 || y < 2 || x >= w-2 || y >= h-2 {
				c = color.NRGBA{A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return pages.Page{Name: "frame", Image: img}
}

func newTestApp(t *testing.T) (*App, *countingPlayer) {
	t.Helper()
	pal := palette.Default()
	l := screens.NewColoringLayout(render.CanvasWidth, render.CanvasHeight, len(pal.Swatches))
	cv, err := canvas.New(framedPage(40, 30), pal, fill.DefaultPolicy(), l.PageArea.Dx(), l.PageArea.Dy())
	if err != nil {
		t.Fatalf("canvas.New: %v", err)
	}
	a := New(state.NewStore(), &render.NoopRenderer{}, nil, cv, export.NoopExporter{}, nil)
	a.Layout = l
	player := &countingPlayer{}
	a.Sound = player
	return a, player
}

func TestHandleTap_SwatchSelects(t *testing.T) {
	a, _ := newTestApp(t)
	pal := a.Canvas.Palette()

	cell := a.Layout.Swatches[2]
	a.HandleTap(cell.Min.Add(image.Pt(cell.Dx()/2, cell.Dy()/2)))
	if got := a.Canvas.Selected(); got.Hex != pal.Swatches[2].Hex {
		t.Errorf("selected %s, want %s", got.Hex, pal.Swatches[2].Hex)
	}

	eraser := a.Layout.Swatches[len(pal.Swatches)]
	a.HandleTap(eraser.Min.Add(image.Pt(1, 1)))
	if got := a.Canvas.Selected(); got.Name != palette.EraserName {
		t.Errorf("selected %q, want eraser", got.Name)
	}
}

func TestHandleTap_PageFills(t *testing.T) {
	a, player := newTestApp(t)
	info := a.Canvas.Info()
	rect := a.Layout.PageRect(info.Width, info.Height)

	centre := rect.Min.Add(image.Pt(rect.Dx()/2, rect.Dy()/2))
	out, handled := a.HandleTap(centre)
	if !handled || out.Result.Painted == 0 {
		t.Fatalf("centre tap: handled=%v outcome=%+v", handled, out)
	}
	if player.fills != 1 {
		t.Errorf("fill sounds = %d, want 1", player.fills)
	}

	// Same colour again: no-op, denied sound.
	out, _ = a.HandleTap(centre)
	if out.Result.Painted != 0 || player.denied != 1 {
		t.Errorf("repeat tap painted %d, denied=%d; want 0, 1", out.Result.Painted, player.denied)
	}

	// Corner of the frame is outline.
	out, _ = a.HandleTap(rect.Min)
	if out.Result.Skipped != fill.SkipOutline {
		t.Errorf("frame tap skipped = %v, want outline", out.Result.Skipped)
	}

	if _, handled := a.HandleTap(image.Pt(rect.Max.X+5, rect.Min.Y)); handled {
		t.Error("tap outside page and palette was handled")
	}

	snap := a.Store.Snapshot()
	if snap.Session.Fills != 1 {
		t.Errorf("store fills = %d, want 1", snap.Session.Fills)
	}
}

func TestHandleEvent(t *testing.T) {
	a, _ := newTestApp(t)
	pal := a.Canvas.Palette()

	a.HandleEvent(input.Event{Kind: input.Next})
	if got := a.Canvas.Selected(); got.Hex != pal.Swatches[1].Hex {
		t.Errorf("after next: %s, want %s", got.Hex, pal.Swatches[1].Hex)
	}
	a.HandleEvent(input.Event{Kind: input.Eraser})
	if got := a.Canvas.Selected(); got.Name != palette.EraserName {
		t.Errorf("after eraser: %q", got.Name)
	}
	a.HandleEvent(input.Event{Kind: input.Next})
	if got := a.Canvas.Selected(); got.Hex != pal.Swatches[0].Hex {
		t.Errorf("next from eraser: %s, want first swatch", got.Hex)
	}

	a.HandleEvent(input.Event{Kind: input.Exit})
	select {
	case err := <-a.exitCh:
		if err != nil {
			t.Errorf("exit err = %v", err)
		}
	default:
		t.Error("exit event did not request exit")
	}
}

func TestHandleExport(t *testing.T) {
	a, _ := newTestApp(t)
	dir := t.TempDir()
	a.Exporter = export.NewFileExporter(dir)
	a.ArtworkName = "art.png"

	if err := a.HandleExport(context.Background()); err != nil {
		t.Fatalf("HandleExport: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "art.png"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("export is not a PNG")
	}
	snap := a.Store.Snapshot()
	if snap.Export.Status != "done" || snap.Phase != state.COLORING {
		t.Errorf("state after export = %+v phase %s", snap.Export, snap.Phase)
	}

	a.exporting.Store(true)
	if err := a.HandleExport(context.Background()); err != export.ErrBusy {
		t.Errorf("concurrent export err = %v, want ErrBusy", err)
	}
}

func TestStartAndExit(t *testing.T) {
	a, _ := newTestApp(t)
	src := input.NewChanSource(1)
	a.Input = src

	done := make(chan error, 1)
	go func() { done <- a.Start(context.Background()) }()

	deadline := time.After(2 * time.Second)
	for a.Store.Snapshot().Phase != state.COLORING {
		select {
		case <-deadline:
			t.Fatal("app never reached COLORING")
		case <-time.After(5 * time.Millisecond):
		}
	}
	src.Send(context.Background(), input.Event{Kind: input.Exit})

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after exit event")
	}
	if a.Store.Snapshot().Page.Name != "frame" {
		t.Errorf("store page = %q, want frame", a.Store.Snapshot().Page.Name)
	}
}

func TestFileLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewFileLogger(&buf)
	l.Infof("canvas", "fill %d", 3)
	l.Errorf("web", "oops")
	re := regexp.MustCompile(`^\S+ \[INFO\] canvas: fill 3\n\S+ \[ERROR\] web: oops\n$`)
	if !re.Match(buf.Bytes()) {
		t.Errorf("log = %q", buf.String())
	}
}
