// Package canvas is the coloring session: a line-art page rendered into a pixel buffer,
// the selected palette colour, and the taps that flood-fill it.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/colorbook/internal/fill"
	"github.com/rook-computer/colorbook/internal/pages"
	"github.com/rook-computer/colorbook/internal/palette"
	"github.com/rook-computer/colorbook/internal/render/layout"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// Info is a read-only summary of the session.
type Info struct {
	Page     string
	Width    int
	Height   int
	Selected palette.Swatch
	Fills    int
	Version  uint64
	Err      string
}

// Outcome describes one tap.
type Outcome struct {
	X, Y    int
	Swatch  palette.Swatch
	Result  fill.Result
	Ignored bool // tap landed outside the buffer
}

// Canvas owns the pixel buffer. All access goes through its mutex so a fill always has
// an exclusive view of the buffer for its whole duration.
type Canvas struct {
	Logger Logger

	// OnChange, when set, is called after every mutation with the new Info.
	// It runs without the canvas lock held.
	OnChange func(Info)

	mu        sync.Mutex
	policy    fill.Policy
	palette   palette.Palette
	page      pages.Page
	container image.Rectangle
	buf       *fill.PixelBuffer
	selected  palette.Swatch
	fills     int
	version   uint64
	lastErr   string
}

// New renders page fitted into a containerWidth x containerHeight area. A zero container
// keeps the page's own size.
func New(page pages.Page, pal palette.Palette, policy fill.Policy, containerWidth, containerHeight int) (*Canvas, error) {
	c := &Canvas{Logger: noopLogger{}, policy: policy, palette: pal}
	if len(pal.Swatches) > 0 {
		c.selected = pal.Swatches[0]
	} else {
		c.selected = pal.Eraser
	}
	if err := c.setPageLocked(page, containerWidth, containerHeight); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Canvas) logger() Logger {
	if c.Logger == nil {
		return noopLogger{}
	}
	return c.Logger
}

// render draws img at exactly width x height into a fresh buffer.
func render(img image.Image, width, height int) (*fill.PixelBuffer, error) {
	if img == nil {
		return nil, pages.ErrCannotProcess
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty page", pages.ErrCannotProcess)
	}
	if b.Dx() == width && b.Dy() == height {
		return fill.FromImage(img), nil
	}
	buf := fill.NewPixelBuffer(width, height)
	xdraw.ApproxBiLinear.Scale(buf.Image(), buf.Bounds(), img, b, xdraw.Src, nil)
	return buf, nil
}

func fitSize(img image.Image, containerWidth, containerHeight int) (int, int) {
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	if containerWidth <= 0 || containerHeight <= 0 {
		return b.Dx(), b.Dy()
	}
	r := layout.FitAspect(image.Rect(0, 0, containerWidth, containerHeight), b.Dx(), b.Dy())
	return r.Dx(), r.Dy()
}

func (c *Canvas) setPageLocked(page pages.Page, containerWidth, containerHeight int) error {
	width, height := fitSize(page.Image, containerWidth, containerHeight)
	buf, err := render(page.Image, width, height)
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	c.page = page
	c.container = image.Rect(0, 0, containerWidth, containerHeight)
	c.buf = buf
	c.fills = 0
	c.lastErr = ""
	c.version++
	return nil
}

func (c *Canvas) infoLocked() Info {
	info := Info{
		Page:     c.page.Name,
		Selected: c.selected,
		Fills:    c.fills,
		Version:  c.version,
		Err:      c.lastErr,
	}
	if c.buf != nil {
		info.Width = c.buf.Width()
		info.Height = c.buf.Height()
	}
	return info
}

func (c *Canvas) changed(info Info) {
	if c.OnChange != nil {
		c.OnChange(info)
	}
}

// SetPage replaces the page and redraws it at the current container size. On error the
// canvas keeps its previous page and pixels.
func (c *Canvas) SetPage(page pages.Page) error {
	c.mu.Lock()
	err := c.setPageLocked(page, c.container.Dx(), c.container.Dy())
	info := c.infoLocked()
	c.mu.Unlock()
	if err != nil {
		c.logger().Errorf("canvas", "set page %q: %v", page.Name, err)
		c.changed(info)
		return err
	}
	c.logger().Infof("canvas", "page %q at %dx%d", page.Name, info.Width, info.Height)
	c.changed(info)
	return nil
}

// MaxCanvasPixels bounds the container area Resize accepts, a 4K display.
const MaxCanvasPixels = 3840 * 2160

// ErrInvalidSize is returned by Resize for empty or oversized containers.
var ErrInvalidSize = errors.New("invalid canvas size")

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width > MaxCanvasPixels/height {
		return fmt.Errorf("%w: %dx%d is over %d pixels", ErrInvalidSize, width, height, MaxCanvasPixels)
	}
	return nil
}

// Resize fits the page into a new container and redraws the base image. Coloring done so
// far is discarded. On error the canvas keeps its pixels and reports the error in Info.
func (c *Canvas) Resize(containerWidth, containerHeight int) error {
	err := checkSize(containerWidth, containerHeight)
	c.mu.Lock()
	if err == nil {
		err = c.setPageLocked(c.page, containerWidth, containerHeight)
	} else {
		c.lastErr = err.Error()
	}
	info := c.infoLocked()
	c.mu.Unlock()
	if err != nil {
		c.logger().Errorf("canvas", "resize %dx%d: %v", containerWidth, containerHeight, err)
		c.changed(info)
		return err
	}
	c.logger().Infof("canvas", "resized to %dx%d", info.Width, info.Height)
	c.changed(info)
	return nil
}

// Reset redraws the base page, clearing all fills.
func (c *Canvas) Reset() error {
	c.mu.Lock()
	err := c.setPageLocked(c.page, c.container.Dx(), c.container.Dy())
	info := c.infoLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.changed(info)
	return nil
}

// Scale maps a point on a display surface of displayWidth x displayHeight to buffer
// pixels. ok is false when the point falls outside the buffer.
func (c *Canvas) Scale(displayX, displayY, displayWidth, displayHeight float64) (x, y int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf == nil {
		return 0, 0, false
	}
	return ScalePoint(displayX, displayY, displayWidth, displayHeight, c.buf.Width(), c.buf.Height())
}

// ScalePoint converts display coordinates to buffer coordinates using
// scale = buffer size / display size on each axis.
func ScalePoint(displayX, displayY, displayWidth, displayHeight float64, bufferWidth, bufferHeight int) (x, y int, ok bool) {
	if displayWidth <= 0 || displayHeight <= 0 || bufferWidth <= 0 || bufferHeight <= 0 {
		return 0, 0, false
	}
	scaleX := float64(bufferWidth) / displayWidth
	scaleY := float64(bufferHeight) / displayHeight
	x = int(math.Floor(displayX * scaleX))
	y = int(math.Floor(displayY * scaleY))
	if x < 0 || y < 0 || x >= bufferWidth || y >= bufferHeight {
		return x, y, false
	}
	return x, y, true
}

// Click fills at a display-space point.
func (c *Canvas) Click(displayX, displayY, displayWidth, displayHeight float64) (Outcome, error) {
	x, y, ok := c.Scale(displayX, displayY, displayWidth, displayHeight)
	if !ok {
		return Outcome{X: x, Y: y, Ignored: true}, nil
	}
	return c.Tap(x, y)
}

// Tap fills the region under buffer pixel (x, y) with the selected colour. Taps outside
// the buffer and on outlines change nothing and are not errors.
func (c *Canvas) Tap(x, y int) (Outcome, error) {
	c.mu.Lock()
	if c.buf == nil {
		c.mu.Unlock()
		return Outcome{}, pages.ErrCannotProcess
	}
	swatch := c.selected
	res, err := c.policy.Fill(c.buf, x, y, swatch.Color)
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, fill.ErrOutOfBounds) {
			return Outcome{X: x, Y: y, Swatch: swatch, Ignored: true}, nil
		}
		return Outcome{}, err
	}
	if res.Painted > 0 {
		c.fills++
		c.version++
	}
	info := c.infoLocked()
	c.mu.Unlock()

	if res.Painted > 0 {
		c.logger().Infof("canvas", "fill %s at (%d,%d): %d px", swatch.Hex, x, y, res.Painted)
		c.changed(info)
	}
	return Outcome{X: x, Y: y, Swatch: swatch, Result: res}, nil
}

// Select picks a swatch by name, hex value or "eraser".
func (c *Canvas) Select(key string) (palette.Swatch, error) {
	c.mu.Lock()
	s, err := c.palette.Lookup(key)
	if err != nil {
		c.mu.Unlock()
		return palette.Swatch{}, err
	}
	c.selected = s
	c.version++
	info := c.infoLocked()
	c.mu.Unlock()
	c.changed(info)
	return s, nil
}

// SelectIndex picks the i-th swatch.
func (c *Canvas) SelectIndex(i int) (palette.Swatch, error) {
	c.mu.Lock()
	s, ok := c.palette.Index(i)
	if !ok {
		c.mu.Unlock()
		return palette.Swatch{}, fmt.Errorf("%w: index %d", palette.ErrUnknownColor, i)
	}
	c.selected = s
	c.version++
	info := c.infoLocked()
	c.mu.Unlock()
	c.changed(info)
	return s, nil
}

func (c *Canvas) SelectEraser() palette.Swatch {
	s, _ := c.Select(palette.EraserName)
	return s
}

func (c *Canvas) Selected() palette.Swatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Canvas) Palette() palette.Palette {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.palette
}

func (c *Canvas) Policy() fill.Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

func (c *Canvas) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.infoLocked()
}

// Version increases on every visible change; renderers use it to skip redundant redraws.
func (c *Canvas) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Snapshot returns a copy of the pixel buffer, or nil when there is none.
func (c *Canvas) Snapshot() *fill.PixelBuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf == nil {
		return nil
	}
	return c.buf.Clone()
}

// EncodePNG writes the current artwork as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf == nil {
		return pages.ErrCannotProcess
	}
	return png.Encode(w, c.buf.Image())
}
