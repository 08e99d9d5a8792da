package web

import (
	"context"
	"errors"
	"io"

	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/config"
	"github.com/rook-computer/colorbook/internal/fill"
	"github.com/rook-computer/colorbook/internal/pages"
	"github.com/rook-computer/colorbook/internal/palette"
)

// Session abstracts the coloring session driven by the API.
//
// The concrete implementation is *canvas.Canvas.
type Session interface {
	Info() canvas.Info
	Palette() palette.Palette
	Policy() fill.Policy
	Select(key string) (palette.Swatch, error)
	Tap(x, y int) (canvas.Outcome, error)
	Click(displayX, displayY, displayWidth, displayHeight float64) (canvas.Outcome, error)
	Resize(containerWidth, containerHeight int) error
	Reset() error
	SetPage(page pages.Page) error
	Snapshot() *fill.PixelBuffer
	EncodePNG(w io.Writer) error
}

// sysLogger matches the component-tagged logger used across the app.
type sysLogger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopSysLogger struct{}

func (noopSysLogger) Infof(string, string, ...interface{})  {}
func (noopSysLogger) Errorf(string, string, ...interface{}) {}

// PageLoader turns uploaded bytes or a URL into a page.
//
// Device implementations fetch over the network; simulator implementations may inject faults.
type PageLoader interface {
	Decode(ctx context.Context, name string, body io.Reader) (pages.Page, error)
	Fetch(ctx context.Context, url string) (pages.Page, error)
}

type APIV1Deps struct {
	Session     Session
	Pages       PageLoader
	ArtworkName string
	Logger      sysLogger
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Pages == nil {
		out.Pages = NoopPageLoader{Err: errors.New("page loading not configured")}
	}
	if out.ArtworkName == "" {
		out.ArtworkName = config.DefaultArtworkName
	}
	if out.Logger == nil {
		out.Logger = noopSysLogger{}
	}
	return out
}

type NoopPageLoader struct{ Err error }

func (l NoopPageLoader) Decode(context.Context, string, io.Reader) (pages.Page, error) {
	return pages.Page{}, l.err()
}

func (l NoopPageLoader) Fetch(context.Context, string) (pages.Page, error) {
	return pages.Page{}, l.err()
}

func (l NoopPageLoader) err() error {
	if l.Err != nil {
		return l.Err
	}
	return errors.New("page loading not configured")
}
