package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/colorbook/internal/app"
	"github.com/rook-computer/colorbook/internal/app/screens"
	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/config"
	"github.com/rook-computer/colorbook/internal/export"
	"github.com/rook-computer/colorbook/internal/input"
	"github.com/rook-computer/colorbook/internal/pages"
	"github.com/rook-computer/colorbook/internal/render"
	"github.com/rook-computer/colorbook/internal/sound"
	"github.com/rook-computer/colorbook/internal/state"
	"github.com/rook-computer/colorbook/internal/system"
	"github.com/rook-computer/colorbook/internal/web"
)

func main() {
	fmt.Println("Colorbook starting")

	serverDefaults, err := web.DefaultServerConfigFromEnv(":80")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	// Flags
	debug := flag.Bool("debug", false, "enable debug logging to ./colorbook-debug.log")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via COLORBOOK_STDIO_LOG")
	configPath := flag.String("config", "/etc/colorbook/colorbook.toml", "settings file (TOML); missing file means defaults")
	writeConfig := flag.Bool("write-config", false, "write the effective settings to -config and exit")
	pageSource := flag.String("page", "", "line-art page: file path or http(s) URL; overrides the settings file")
	noSound := flag.Bool("no-sound", false, "disable tap sounds")
	listenAddr := flag.String("listen", serverDefaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", serverDefaults.DevMode, "enable dev mode (CORS); also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve the web UI from this directory instead of the embedded one")
	flag.Parse()

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("COLORBOOK_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	// Local file logger when debug enabled
	var logger app.Logger = app.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./colorbook-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	if *pageSource != "" {
		cfg.Page = *pageSource
	}
	if *noSound {
		cfg.Sound = false
	}
	if *writeConfig {
		if err := config.Write(*configPath, cfg); err != nil {
			fmt.Println("write config error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", *configPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pal, err := cfg.BuildPalette()
	if err != nil {
		fmt.Println("palette error:", err)
		os.Exit(2)
	}
	layout := screens.NewColoringLayout(render.CanvasWidth, render.CanvasHeight, len(pal.Swatches))

	// A page that cannot be processed falls back to the built-in one.
	page, err := pages.Load(ctx, cfg.Page, cfg.PageWidth, cfg.PageHeight)
	if err != nil {
		logger.Errorf("main", "page %q: %v", cfg.Page, err)
		page, _ = pages.Load(ctx, "", cfg.PageWidth, cfg.PageHeight)
	}
	cv, err := canvas.New(page, pal, cfg.Policy(), layout.PageArea.Dx(), layout.PageArea.Dy())
	if err != nil {
		fmt.Println("canvas error:", err)
		os.Exit(1)
	}
	cv.Logger = logger

	var exporter export.Exporter = export.NewFileExporter(cfg.ExportDir)
	if cfg.PrintScript != "" {
		exporter = export.NewScriptExporter(cfg.PrintScript)
	}

	var player sound.Player = sound.NoopPlayer{}
	if cfg.Sound {
		if p, err := sound.NewBeepPlayer(); err == nil {
			player = p
		} else {
			logger.Errorf("sound", "speaker init failed, sound disabled: %v", err)
		}
	}

	source := input.NewEvdevSource()
	source.Logger = logger

	store := state.NewStore()
	renderer := render.NewFBRenderer()
	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode})
	server.StaticDir = *staticDir
	server.Logger = logger

	a := app.New(store, renderer, server, cv, exporter, source)
	a.Logger = logger
	a.Sound = player
	a.NetInfo = system.RunnerNetInfo{Runner: system.ShellRunner{}}
	a.Layout = layout
	a.ArtworkName = cfg.ArtworkName
	a.ListenAddr = *listenAddr
	a.Console = true
	a.Debug = *debug
	server.API = web.APIV1Config{
		Handlers: web.APIV1Handlers{ExportFunc: a.HandleExport},
		Deps:     web.NewDeviceAPIV1Deps(cv, cfg.ArtworkName, logger),
	}

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
	}
	if err := a.Stop(); err != nil {
		fmt.Println("app stop error:", err)
	}
}
