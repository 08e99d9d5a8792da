package screens

import (
	"context"
	"fmt"
	"image"

	"github.com/rook-computer/colorbook/internal/fill"
	"github.com/rook-computer/colorbook/internal/palette"
	"github.com/rook-computer/colorbook/internal/render"
	"github.com/rook-computer/colorbook/internal/state"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Artwork is the part of the coloring session the screen reads.
type Artwork interface {
	Snapshot() *fill.PixelBuffer
	Palette() palette.Palette
	Selected() palette.Swatch
	Version() uint64
}

// ColoringScreen shows the page, the palette row and a QR code for the web UI.
type ColoringScreen struct {
	Artwork Artwork
	Layout  ColoringLayout
	Logger  Logger

	qr      render.QRCache
	page    *fill.PixelBuffer
	version uint64
	hasPage bool
}

func NewColoringScreen(art Artwork, l ColoringLayout, logger Logger) *ColoringScreen {
	return &ColoringScreen{Artwork: art, Layout: l, Logger: logger}
}

func (s *ColoringScreen) Start(ctx context.Context) error { return nil }
func (s *ColoringScreen) Stop() error                     { return nil }

func (s *ColoringScreen) Draw(r render.Drawer, st state.State) {
	s.drawTitle(r, st)
	s.drawPage(r)
	s.drawPalette(r)
	s.drawSidebar(r, st)
}

func (s *ColoringScreen) drawTitle(r render.Drawer, st state.State) {
	t := s.Layout.Title
	r.DrawText("Colorbook", t.Min.X, t.Min.Y, render.TextStyle{Color: render.Foreground})
	if st.Page.Name != "" {
		r.DrawText(st.Page.Name, t.Max.X, t.Min.Y+16, render.TextStyle{Color: render.Foreground, Size: 20, Align: render.TextAlignRight})
	}
}

// drawPage copies the session buffer only when its version moved.
func (s *ColoringScreen) drawPage(r render.Drawer) {
	if v := s.Artwork.Version(); !s.hasPage || v != s.version {
		s.page = s.Artwork.Snapshot()
		s.version = v
		s.hasPage = true
	}
	if s.page == nil {
		r.DrawText("no page", s.Layout.PageArea.Min.X, s.Layout.PageArea.Min.Y, render.TextStyle{Size: 20})
		return
	}
	rect := s.Layout.PageRect(s.page.Width(), s.page.Height())
	r.DrawImageInRect(s.page.Image(), rect, render.ScaleModeStretch)
	r.StrokeRect(rect.Inset(-4), render.Foreground, 4)
}

func (s *ColoringScreen) drawPalette(r render.Drawer) {
	pal := s.Artwork.Palette()
	selected := s.Artwork.Selected()
	for i, cell := range s.Layout.Swatches {
		var sw palette.Swatch
		if i < len(pal.Swatches) {
			sw = pal.Swatches[i]
		} else {
			sw = pal.Eraser
		}
		r.FillRect(cell, sw.Color)
		if sw.Name == palette.EraserName {
			label := palette.Contrast(sw.Color)
			r.DrawText("eraser", cell.Min.X+cell.Dx()/2, cell.Min.Y+cell.Dy()/2-12, render.TextStyle{Color: label, Size: 20, Align: render.TextAlignCenter})
		}
		if sw.Name == selected.Name && sw.Hex == selected.Hex {
			r.StrokeRect(cell.Inset(-10), render.Accent, 8)
		}
		r.StrokeRect(cell, render.Foreground, 3)
	}
}

func (s *ColoringScreen) drawSidebar(r render.Drawer, st state.State) {
	if st.Network.URL != "" {
		img, err := s.qr.Image(st.Network.URL, s.Layout.QR.Dx())
		if err != nil {
			if s.Logger != nil {
				s.Logger.Errorf("screen", "qr: %v", err)
			}
		} else {
			r.DrawImageInRect(img, s.Layout.QR, render.ScaleModeFit)
		}
	}

	style := render.TextStyle{Color: render.Foreground, Size: 20}
	p := s.Layout.Status.Min
	for _, line := range statusLines(st) {
		m := r.DrawText(line, p.X, p.Y, style)
		p = p.Add(image.Pt(0, m.LineHeight+6))
	}
}

func statusLines(st state.State) []string {
	var lines []string
	if st.Network.URL != "" {
		lines = append(lines, st.Network.URL)
	}
	if st.Session.SelectedName != "" {
		lines = append(lines, "colour: "+st.Session.SelectedName)
	}
	lines = append(lines, fmt.Sprintf("fills: %d", st.Session.Fills))
	switch st.Export.Status {
	case "running":
		lines = append(lines, "saving…")
	case "done":
		lines = append(lines, "saved")
	case "error":
		lines = append(lines, "save failed: "+st.Export.Err)
	}
	if st.Session.Err != "" {
		lines = append(lines, st.Session.Err)
	}
	return lines
}
