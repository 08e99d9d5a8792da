package app

import (
	"bytes"
	"context"
	"errors"

	"github.com/rook-computer/colorbook/internal/export"
	"github.com/rook-computer/colorbook/internal/state"
)

// HandleExport is used by the web API to save the current artwork with the
// configured exporter. Only one export runs at a time.
func (app *App) HandleExport(ctx context.Context) error {
	if app.Exporter == nil {
		return errors.New("exporter not configured")
	}
	if app.Canvas == nil {
		return errors.New("no coloring session")
	}
	if !app.exporting.CompareAndSwap(false, true) {
		return export.ErrBusy
	}
	defer app.exporting.Store(false)

	// The exporter receives one frame encoded under the canvas lock.
	var buf bytes.Buffer
	if err := app.Canvas.EncodePNG(&buf); err != nil {
		return err
	}

	name := app.ArtworkName
	if app.Store != nil {
		app.Store.SetPhase(state.EXPORTING)
		app.Store.UpdateExport(state.ExportInfo{Target: name, Status: "running"})
	}

	err := app.Exporter.Export(ctx, name, &buf)
	if app.Logger != nil {
		if err != nil {
			app.Logger.Errorf("export", "%s: %v", name, err)
		} else {
			app.Logger.Infof("export", "%s saved (%s)", name, app.Exporter.Status().Target)
		}
	}
	if app.Store != nil {
		if err != nil {
			app.Store.UpdateExport(state.ExportInfo{Target: name, Status: "error", Err: err.Error()})
		} else {
			app.Store.UpdateExport(state.ExportInfo{Target: app.Exporter.Status().Target, Status: "done"})
		}
		app.Store.SetPhase(state.COLORING)
	}
	return err
}
