package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"net/http"
	"strings"

	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/export"
	"github.com/rook-computer/colorbook/internal/fill"
	"github.com/rook-computer/colorbook/internal/pages"
	"github.com/rook-computer/colorbook/internal/palette"
)

const maxJSONBody = 1 << 20

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type swatchResponse struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type stateResponse struct {
	Page      string         `json:"page"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Selected  swatchResponse `json:"selected"`
	Fills     int            `json:"fills"`
	Version   uint64         `json:"version"`
	LastError string         `json:"lastError,omitempty"`
}

type paletteResponse struct {
	Swatches []swatchResponse `json:"swatches"`
	Eraser   swatchResponse   `json:"eraser"`
}

type tapRequest struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	DisplayWidth  float64 `json:"displayWidth"`
	DisplayHeight float64 `json:"displayHeight"`
}

type tapResponse struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Painted int    `json:"painted"`
	Skipped string `json:"skipped,omitempty"`
	Ignored bool   `json:"ignored"`
	Color   string `json:"color"`
}

func apiV1RouterWithDeps(handlers APIV1Handlers, deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) { handleState(w, r, deps) })
	mux.HandleFunc("/palette", func(w http.ResponseWriter, r *http.Request) { handlePalette(w, r, deps) })
	mux.HandleFunc("/select", func(w http.ResponseWriter, r *http.Request) { handleSelect(w, r, deps) })
	mux.HandleFunc("/tap", func(w http.ResponseWriter, r *http.Request) { handleTap(w, r, deps) })
	mux.HandleFunc("/resize", func(w http.ResponseWriter, r *http.Request) { handleResize(w, r, deps) })
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) { handleReset(w, r, deps) })
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) { handlePage(w, r, deps) })
	mux.HandleFunc("/artwork.png", func(w http.ResponseWriter, r *http.Request) { handleArtwork(w, r, deps) })
	mux.HandleFunc("/outline.svg", func(w http.ResponseWriter, r *http.Request) { handleOutline(w, r, deps) })
	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) {
		handleExport(w, r, handlers.ExportFunc)
	})
	return mux
}

func handleState(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodGet) || !requireSession(w, deps) {
		return
	}
	writeJSON(w, http.StatusOK, toStateResponse(deps.Session.Info()))
}

func handlePalette(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodGet) || !requireSession(w, deps) {
		return
	}
	pal := deps.Session.Palette()
	resp := paletteResponse{Swatches: make([]swatchResponse, 0, len(pal.Swatches)), Eraser: toSwatchResponse(pal.Eraser)}
	for _, s := range pal.Swatches {
		resp.Swatches = append(resp.Swatches, toSwatchResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleSelect(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodPost) || !requireSession(w, deps) {
		return
	}
	var req struct {
		Color string `json:"color"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	swatch, err := deps.Session.Select(req.Color)
	if err != nil {
		if errors.Is(err, palette.ErrUnknownColor) {
			writeAPIError(w, http.StatusNotFound, "unknown_color", err.Error())
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "select_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSwatchResponse(swatch))
}

func handleTap(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodPost) || !requireSession(w, deps) {
		return
	}
	var req tapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		outcome canvas.Outcome
		err     error
	)
	if req.DisplayWidth > 0 && req.DisplayHeight > 0 {
		outcome, err = deps.Session.Click(req.X, req.Y, req.DisplayWidth, req.DisplayHeight)
	} else {
		outcome, err = deps.Session.Tap(bufferCoord(req.X), bufferCoord(req.Y))
	}
	if err != nil {
		if errors.Is(err, pages.ErrCannotProcess) {
			writeAPIError(w, http.StatusConflict, "no_page", "no page loaded")
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "fill_failed", err.Error())
		return
	}

	resp := tapResponse{
		X:       outcome.X,
		Y:       outcome.Y,
		Painted: outcome.Result.Painted,
		Ignored: outcome.Ignored,
		Color:   outcome.Swatch.Hex,
	}
	if outcome.Result.Skipped != fill.SkipNone {
		resp.Skipped = outcome.Result.Skipped.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// bufferCoord floors like canvas.ScalePoint, so -0.5 lands outside the buffer
// instead of on pixel 0. Values that cannot be a pixel index map to -1.
func bufferCoord(v float64) int {
	f := math.Floor(v)
	if math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return -1
	}
	return int(f)
}

func handleResize(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodPost) || !requireSession(w, deps) {
		return
	}
	var req struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := deps.Session.Resize(req.Width, req.Height); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_size", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toStateResponse(deps.Session.Info()))
}

func handleReset(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodPost) || !requireSession(w, deps) {
		return
	}
	if err := deps.Session.Reset(); err != nil {
		writeAPIError(w, http.StatusConflict, "no_page", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toStateResponse(deps.Session.Info()))
}

// handlePage accepts either a JSON {"url": ...} body or raw image bytes.
func handlePage(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodPost) || !requireSession(w, deps) {
		return
	}

	var (
		page pages.Page
		err  error
	)
	if isJSON(r) {
		var req struct {
			URL string `json:"url"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			writeAPIError(w, http.StatusBadRequest, "invalid_url", "url is required")
			return
		}
		page, err = deps.Pages.Fetch(r.Context(), req.URL)
	} else {
		if lerr := requireContentLength(r); lerr != nil {
			writeAPIError(w, http.StatusLengthRequired, "length_required", lerr.Error())
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload"
		}
		page, err = deps.Pages.Decode(r.Context(), name, io.LimitReader(r.Body, r.ContentLength))
	}
	if err == nil {
		err = deps.Session.SetPage(page)
	}
	if err != nil {
		deps.Logger.Errorf("web", "page load failed: %v", err)
		if errors.Is(err, pages.ErrCannotProcess) {
			writeAPIError(w, http.StatusUnprocessableEntity, "cannot_process_image", err.Error())
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "page_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toStateResponse(deps.Session.Info()))
}

func handleArtwork(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodGet) || !requireSession(w, deps) {
		return
	}
	var buf bytes.Buffer
	if err := deps.Session.EncodePNG(&buf); err != nil {
		writeAPIError(w, http.StatusConflict, "no_page", err.Error())
		return
	}
	setDownloadHeaders(w, deps.ArtworkName, "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func handleOutline(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireMethod(w, r, http.MethodGet) || !requireSession(w, deps) {
		return
	}
	snap := deps.Session.Snapshot()
	if snap == nil {
		writeAPIError(w, http.StatusConflict, "no_page", "no page loaded")
		return
	}
	var buf bytes.Buffer
	if err := export.TraceOutlineSVG(&buf, snap, deps.Session.Policy()); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "trace_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func handleExport(w http.ResponseWriter, r *http.Request, exportFunc func(ctx context.Context) error) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if exportFunc == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "export not configured")
		return
	}
	if err := exportFunc(r.Context()); err != nil {
		switch {
		case errors.Is(err, export.ErrBusy):
			writeAPIError(w, http.StatusConflict, "export_busy", err.Error())
		case errors.Is(err, pages.ErrCannotProcess):
			writeAPIError(w, http.StatusConflict, "no_page", err.Error())
		default:
			writeAPIError(w, http.StatusInternalServerError, "export_failed", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func toSwatchResponse(s palette.Swatch) swatchResponse {
	return swatchResponse{Name: s.Name, Hex: s.Hex}
}

func toStateResponse(info canvas.Info) stateResponse {
	return stateResponse{
		Page:      info.Page,
		Width:     info.Width,
		Height:    info.Height,
		Selected:  toSwatchResponse(info.Selected),
		Fills:     info.Fills,
		Version:   info.Version,
		LastError: info.Err,
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return false
	}
	return true
}

func requireSession(w http.ResponseWriter, deps APIV1Deps) bool {
	if deps.Session == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "not_ready", "coloring session not ready")
		return false
	}
	return true
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return false
	}
	return true
}

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	cd := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	w.Header().Set("Content-Disposition", cd)
}

func requireContentLength(r *http.Request) error {
	// Reject chunked/unknown length so uploads are bounded.
	if r.ContentLength <= 0 {
		return errLengthRequired
	}
	if r.ContentLength > pages.MaxPageBytes {
		return errTooLarge
	}
	return nil
}

var (
	errLengthRequired = &apiSimpleError{Message: "Content-Length header is required"}
	errTooLarge       = &apiSimpleError{Message: "image is too large"}
)

type apiSimpleError struct{ Message string }

func (e *apiSimpleError) Error() string { return e.Message }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
