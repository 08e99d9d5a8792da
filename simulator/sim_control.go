package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/export"
	"github.com/rook-computer/colorbook/internal/pages"
	"github.com/rook-computer/colorbook/internal/web"
)

type SimFaults struct {
	PageFail   bool `json:"pageFail"`
	ExportFail bool `json:"exportFail"`
}

// SimControl owns the simulated session and lets tests inject failures.
type SimControl struct {
	Canvas      *canvas.Canvas
	Exporter    export.Exporter
	ArtworkName string
	startPage   pages.Page

	faults struct {
		mu sync.RWMutex
		v  SimFaults
	}
	exporting atomic.Bool
}

func NewSimControl(cv *canvas.Canvas, startPage pages.Page, exporter export.Exporter, artworkName string) *SimControl {
	if exporter == nil {
		exporter = export.NoopExporter{}
	}
	return &SimControl{Canvas: cv, Exporter: exporter, ArtworkName: artworkName, startPage: startPage}
}

func (c *SimControl) Deps() web.APIV1Deps {
	return web.APIV1Deps{
		Session:     c.Canvas,
		Pages:       SimPageLoader{Control: c, Inner: web.HTTPPageLoader{}},
		ArtworkName: c.ArtworkName,
	}
}

// Reset clears faults and restores the startup page with no coloring.
func (c *SimControl) Reset() error {
	c.SetFaults(SimFaults{})
	return c.Canvas.SetPage(c.startPage)
}

func (c *SimControl) Faults() SimFaults {
	c.faults.mu.RLock()
	defer c.faults.mu.RUnlock()
	return c.faults.v
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.faults.mu.Lock()
	c.faults.v = v
	c.faults.mu.Unlock()
}

// Export saves the current artwork, honouring the exportFail fault.
func (c *SimControl) Export(ctx context.Context) error {
	if c.Faults().ExportFail {
		return fmt.Errorf("simulated export failure")
	}
	if !c.exporting.CompareAndSwap(false, true) {
		return export.ErrBusy
	}
	defer c.exporting.Store(false)

	var buf bytes.Buffer
	if err := c.Canvas.EncodePNG(&buf); err != nil {
		return err
	}
	return c.Exporter.Export(ctx, c.ArtworkName, &buf)
}

// SimPageLoader reports every page as unprocessable while pageFail is set.
type SimPageLoader struct {
	Control *SimControl
	Inner   web.PageLoader
}

func (l SimPageLoader) Decode(ctx context.Context, name string, body io.Reader) (pages.Page, error) {
	if l.Control.Faults().PageFail {
		return pages.Page{}, fmt.Errorf("%w: simulated failure", pages.ErrCannotProcess)
	}
	return l.Inner.Decode(ctx, name, body)
}

func (l SimPageLoader) Fetch(ctx context.Context, url string) (pages.Page, error) {
	if l.Control.Faults().PageFail {
		return pages.Page{}, fmt.Errorf("%w: simulated failure", pages.ErrCannotProcess)
	}
	return l.Inner.Fetch(ctx, url)
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := control.Reset(); err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, control.Faults())
			return
		case http.MethodPost:
			var patch struct {
				PageFail   *bool `json:"pageFail"`
				ExportFail *bool `json:"exportFail"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.PageFail != nil {
				current.PageFail = *patch.PageFail
			}
			if patch.ExportFail != nil {
				current.ExportFail = *patch.ExportFail
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, current)
			return
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
