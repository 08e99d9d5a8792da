package app

import (
	"image"

	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/input"
	"github.com/rook-computer/colorbook/internal/render"
)

// HandleEvent applies one input event to the session.
func (app *App) HandleEvent(ev input.Event) {
	switch ev.Kind {
	case input.Exit:
		app.Logger.Infof("input", "exit requested")
		app.Exit(nil)
	case input.Eraser:
		if app.Canvas != nil {
			app.Canvas.SelectEraser()
		}
	case input.Next:
		app.selectNext()
	case input.Tap:
		app.HandleTap(render.ToCanvas(ev.X, ev.Y, ev.Width, ev.Height))
	}
}

// HandleTap routes a tap at logical canvas point p: swatch cells change the
// colour, the page area fills, anything else is ignored.
func (app *App) HandleTap(p image.Point) (canvas.Outcome, bool) {
	if app.Canvas == nil {
		return canvas.Outcome{}, false
	}
	pal := app.Canvas.Palette()
	if i, ok := app.Layout.SwatchAt(p); ok {
		if i < len(pal.Swatches) {
			if _, err := app.Canvas.SelectIndex(i); err != nil {
				app.Logger.Errorf("input", "select swatch %d: %v", i, err)
			}
		} else {
			app.Canvas.SelectEraser()
		}
		return canvas.Outcome{}, false
	}

	info := app.Canvas.Info()
	rect := app.Layout.PageRect(info.Width, info.Height)
	if !p.In(rect) {
		return canvas.Outcome{}, false
	}
	local := p.Sub(rect.Min)
	out, err := app.Canvas.Click(float64(local.X), float64(local.Y), float64(rect.Dx()), float64(rect.Dy()))
	if err != nil {
		app.Logger.Errorf("canvas", "fill at %v: %v", p, err)
		app.Sound.PlayDenied()
		return out, false
	}
	switch {
	case out.Result.Painted > 0:
		app.Sound.PlayFill()
	case !out.Ignored:
		app.Sound.PlayDenied()
	}
	return out, true
}

func (app *App) selectNext() {
	if app.Canvas == nil {
		return
	}
	pal := app.Canvas.Palette()
	if len(pal.Swatches) == 0 {
		return
	}
	current := app.Canvas.Selected()
	next := 0
	for i, s := range pal.Swatches {
		if s.Hex == current.Hex && s.Name == current.Name {
			next = (i + 1) % len(pal.Swatches)
			break
		}
	}
	_, _ = app.Canvas.SelectIndex(next)
}
