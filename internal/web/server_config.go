package web

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "COLORBOOK_LISTEN"
	EnvDevMode    = "COLORBOOK_DEV"
)

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - real device: :80
// - simulator:   :8080
type ServerConfig struct {
	ListenAddr string
	// DevMode enables permissive CORS so a UI dev server on another origin can call the API.
	DevMode bool
}

// Handler wraps h with the middleware this config asks for.
func (c ServerConfig) Handler(h http.Handler) http.Handler {
	if c.DevMode {
		return WithDevCORS(h)
	}
	return h
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	listenAddr := os.Getenv(EnvListenAddr)
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	devMode := false
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		devMode = parsed
	}

	return ServerConfig{ListenAddr: listenAddr, DevMode: devMode}, nil
}
