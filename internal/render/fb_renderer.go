package render

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	fb "github.com/gonutz/framebuffer"
	"github.com/rook-computer/colorbook/internal/state"
)

// FBRenderer renders to the Linux framebuffer using an offscreen logical canvas.
type FBRenderer struct {
	*ImageDrawer

	Device string
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
	Debug bool

	fbDev   *fb.Device
	running atomic.Bool

	mu      sync.Mutex
	current Screen
}

func NewFBRenderer() *FBRenderer { return &FBRenderer{Device: "/dev/fb0"} }

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.Device)
	if err != nil {
		return err
	}
	r.fbDev = dev
	bounds := dev.Bounds()
	r.logf("framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())

	drawer, ferr := NewImageDrawer(CanvasWidth, CanvasHeight)
	if ferr != nil && r.Logger != nil {
		r.Logger.Errorf("fb", "font load failed, using basicfont: %v", ferr)
	}
	r.ImageDrawer = drawer

	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	if r.fbDev != nil {
		r.fbDev.Close()
	}
	return nil
}

// SetScreen sets the current logical screen to be drawn.
func (r *FBRenderer) SetScreen(screen Screen) {
	r.mu.Lock()
	r.current = screen
	r.mu.Unlock()
}

// RedrawWithState draws the current screen and pushes it to the framebuffer.
func (r *FBRenderer) RedrawWithState(snap state.State) {
	r.mu.Lock()
	screen := r.current
	r.mu.Unlock()
	if !r.running.Load() || screen == nil || r.fbDev == nil {
		return
	}
	r.FillBackground()
	screen.Draw(r, snap)
	blitToFB(r.fbDev, r.Image())
	if r.Debug {
		r.logf("redraw done, phase=%s", snap.Phase)
	}
}

// RunLoop redraws at ~30 FPS until the context is done. Frames are skipped
// while the snapshot version is unchanged.
func (r *FBRenderer) RunLoop(ctx context.Context, store *state.Store) {
	ticker := time.NewTicker(time.Second / 30)
	defer ticker.Stop()
	var last state.State
	drawn := false
	lastLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := store.Snapshot()
			if drawn && last == snap {
				continue
			}
			r.RedrawWithState(snap)
			last, drawn = snap, true
			if r.Debug && time.Since(lastLog) > time.Second {
				r.logf("heartbeat frame, phase=%s version=%d", snap.Phase, snap.Session.Version)
				lastLog = time.Now()
			}
		}
	}
}

// FramebufferToCanvas maps a framebuffer pixel to the logical canvas.
func (r *FBRenderer) FramebufferToCanvas(x, y int) image.Point {
	if r.fbDev == nil {
		return image.Pt(x, y)
	}
	b := r.fbDev.Bounds()
	return ToCanvas(x, y, b.Dx(), b.Dy())
}

func (r *FBRenderer) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Infof("fb", format, args...)
	}
}

// ToCanvas maps a point on a display of the given size to the logical
// canvas, matching the sampling used by blitToFB.
func ToCanvas(x, y, displayWidth, displayHeight int) image.Point {
	if displayWidth <= 0 || displayHeight <= 0 {
		return image.Pt(x, y)
	}
	return image.Pt(x*CanvasWidth/displayWidth, y*CanvasHeight/displayHeight)
}

// blitToFB copies canvas to the framebuffer via nearest-neighbour scaling.
func blitToFB(dev *fb.Device, canvas *image.RGBA) {
	if dev == nil {
		return
	}
	bounds := dev.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()
	cw, ch := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	for y := 0; y < fbHeight; y++ {
		sy := (y * ch) / fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := (x * cw) / fbWidth
			pixel := canvas.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
