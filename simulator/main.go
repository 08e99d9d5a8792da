package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/rook-computer/colorbook/internal/app"
	"github.com/rook-computer/colorbook/internal/canvas"
	"github.com/rook-computer/colorbook/internal/config"
	"github.com/rook-computer/colorbook/internal/export"
	"github.com/rook-computer/colorbook/internal/pages"
	"github.com/rook-computer/colorbook/internal/web"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve static UI from this directory (optional); when empty, embedded web UI assets are served")
	configPath := flag.String("config", "", "settings file (TOML); empty means defaults")
	pageSource := flag.String("page", "", "line-art page: file path or http(s) URL")
	exportDir := flag.String("export-dir", "/tmp/colorbook-sim/artwork", "directory saved artwork is written to")
	headless := flag.Bool("headless", false, "serve the API only, without the terminal front end")
	logPath := flag.String("log", "", "append log lines to this file")
	flag.Parse()

	var logger app.Logger = app.NoopLogger{}
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Println("log open error:", err)
			os.Exit(2)
		}
		defer func() { _ = f.Close() }()
		logger = app.NewFileLogger(f)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	if *pageSource != "" {
		cfg.Page = *pageSource
	}
	pal, err := cfg.BuildPalette()
	if err != nil {
		fmt.Println("palette error:", err)
		os.Exit(2)
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	page, err := pages.Load(processCtx, cfg.Page, cfg.PageWidth, cfg.PageHeight)
	if err != nil {
		fmt.Println("page error:", err)
		os.Exit(2)
	}
	cv, err := canvas.New(page, pal, cfg.Policy(), cfg.PageWidth, cfg.PageHeight)
	if err != nil {
		fmt.Println("canvas error:", err)
		os.Exit(1)
	}
	cv.Logger = logger

	control := NewSimControl(cv, page, export.NewFileExporter(*exportDir), cfg.ArtworkName)
	deps := control.Deps()
	deps.Logger = logger

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode})
	server.StaticDir = *staticDir
	server.Logger = logger
	mux := web.NewDefaultMux(server.StaticDir, web.APIV1Config{
		Handlers: web.APIV1Handlers{ExportFunc: control.Export},
		Deps:     deps,
	})
	registerSimEndpoints(mux, control)
	server.Handler = mux

	if err := server.Start(processCtx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}
	defer func() { _ = server.Stop() }()

	if *headless {
		fmt.Println("Colorbook simulator listening on", server.Addr)
		fmt.Println("Page:", page.Name)
		fmt.Println("API: http://" + displayAddr(server.Addr) + "/api/v1/")
		<-processCtx.Done()
		return
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Println("terminal error:", err)
		os.Exit(1)
	}
	tui := NewTUI(screen, control)
	tui.message = "web UI at http://" + displayAddr(server.Addr) + "/"
	if err := tui.Run(processCtx); err != nil {
		fmt.Println("terminal error:", err)
	}
}

// displayAddr turns a listen address into something a browser accepts.
func displayAddr(addr string) string {
	if addr == "" {
		return "127.0.0.1:8080"
	}
	if addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
