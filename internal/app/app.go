package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/colorbook/internal/app/screens"
	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/config"
	"github.com/rook-computer/colorbook/internal/export"
	"github.com/rook-computer/colorbook/internal/input"
	"github.com/rook-computer/colorbook/internal/render"
	"github.com/rook-computer/colorbook/internal/sound"
	"github.com/rook-computer/colorbook/internal/state"
	"github.com/rook-computer/colorbook/internal/system"
	"github.com/rook-computer/colorbook/internal/web"
)

type App struct {
	Store    *state.Store
	Render   render.Renderer
	Web      web.Server
	Canvas   *canvas.Canvas
	Exporter export.Exporter
	Input    input.Source
	Sound    sound.Player
	NetInfo  system.NetInfo
	Logger   Logger

	// Layout must match the container the canvas was sized for.
	Layout      screens.ColoringLayout
	ArtworkName string
	ListenAddr  string
	// Console switches the active VT to graphics mode while running.
	Console bool
	Debug   bool

	currentScreen render.Screen
	exporting     atomic.Bool

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, renderer render.Renderer, webServer web.Server, cv *canvas.Canvas, exporter export.Exporter, source input.Source) *App {
	app := &App{
		Store:    store,
		Render:   renderer,
		Web:      webServer,
		Canvas:   cv,
		Exporter: exporter,
		Input:    source,
		Sound:    sound.NoopPlayer{},
		NetInfo:  system.NoopNetInfo{},
		Logger:   NoopLogger{},
		exitCh:   make(chan error, 1),
	}
	if cv != nil {
		cv.OnChange = app.syncCanvas
	}
	return app
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	app.defaults()

	app.Store.SetPhase(state.READY)
	if app.Render == nil {
		app.Render = render.NewFBRenderer()
	}
	if fb, ok := app.Render.(*render.FBRenderer); ok {
		fb.Logger = app.Logger
		fb.Debug = app.Debug
	}
	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer app.Render.Stop()

	if app.Console {
		// Switch console to KD_GRAPHICS to suppress hardware cursor
		_ = system.SetGraphicsModeWithLog(app.Logger)
		_ = system.HideCursorWithLog(app.Logger)
		defer func() { _ = system.ShowCursorWithLog(app.Logger); _ = system.RestoreTextModeWithLog(app.Logger) }()
	}

	if err := app.setScreen(ctx, screens.LoadingScreen{}); err != nil {
		return err
	}
	app.Render.RedrawWithState(app.Store.Snapshot())

	if app.Canvas == nil {
		app.Store.SetPhase(state.ERROR)
		app.Store.UpdateSession(state.SessionInfo{Err: "no page could be loaded"})
	} else {
		app.Canvas.OnChange = app.syncCanvas
		app.syncCanvas(app.Canvas.Info())
		if err := app.setScreen(ctx, screens.NewColoringScreen(app.Canvas, app.Layout, app.Logger)); err != nil {
			return err
		}
		app.Store.SetPhase(state.COLORING)
	}

	if app.Web != nil {
		if err := app.Web.Start(ctx); err != nil {
			app.Logger.Errorf("web", "server start error: %v", err)
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Render.RunLoop(loopCtx, app.Store)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.resolveNetwork(loopCtx)
	}()

	if app.Input != nil {
		if err := app.Input.Start(loopCtx); err != nil {
			app.Logger.Errorf("input", "start error: %v", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				app.consumeInput(loopCtx)
			}()
		}
	}

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	cancel()
	wg.Wait()
	return err
}

func (app *App) defaults() {
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Sound == nil {
		app.Sound = sound.NoopPlayer{}
	}
	if app.NetInfo == nil {
		app.NetInfo = system.NoopNetInfo{}
	}
	if app.ArtworkName == "" {
		app.ArtworkName = config.DefaultArtworkName
	}
	if app.Layout.PageArea.Empty() {
		n := 0
		if app.Canvas != nil {
			n = len(app.Canvas.Palette().Swatches)
		}
		app.Layout = screens.NewColoringLayout(render.CanvasWidth, render.CanvasHeight, n)
	}
}

func (app *App) setScreen(ctx context.Context, screen render.Screen) error {
	if app.currentScreen != nil {
		_ = app.currentScreen.Stop()
	}
	app.currentScreen = screen
	app.Render.SetScreen(screen)
	return screen.Start(ctx)
}

// syncCanvas mirrors the session into the store the renderer reads.
func (app *App) syncCanvas(info canvas.Info) {
	app.Store.UpdatePage(state.PageInfo{Name: info.Page, Width: info.Width, Height: info.Height})
	app.Store.UpdateSession(state.SessionInfo{
		SelectedName: info.Selected.Name,
		SelectedHex:  info.Selected.Hex,
		Fills:        info.Fills,
		Version:      info.Version,
		Err:          info.Err,
	})
}

// resolveNetwork retries until an address is known so the QR code appears
// once the network comes up.
func (app *App) resolveNetwork(ctx context.Context) {
	delay := time.Second
	for {
		ip, err := app.NetInfo.IP(ctx)
		if err == nil && ip != "" {
			url := system.WebURL(ip, app.ListenAddr)
			app.Store.UpdateNetwork(state.NetworkInfo{IP: ip, URL: url})
			app.Logger.Infof("net", "web UI at %s", url)
			return
		}
		if err != nil && app.Debug {
			app.Logger.Errorf("net", "resolve ip: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
}

func (app *App) consumeInput(ctx context.Context) {
	events := app.Input.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			app.HandleEvent(ev)
		}
	}
}

func (app *App) Stop() error {
	if app.Input != nil {
		_ = app.Input.Stop()
	}
	if app.Web != nil {
		_ = app.Web.Stop()
	}
	if app.Sound != nil {
		app.Sound.Close()
	}
	return nil
}

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

type FileLogger struct {
	mu *sync.Mutex
	w  io.Writer
}

func NewFileLogger(w io.Writer) FileLogger { return FileLogger{mu: &sync.Mutex{}, w: w} }
func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	l.write("INFO", component, format, args...)
}
func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	l.write("ERROR", component, format, args...)
}

func (l FileLogger) write(level, component, format string, args ...interface{}) {
	if l.mu != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
	}
	writeLog(l.w, level, component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}
