package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rook-computer/colorbook/internal/assets"
)

type HTTPServer struct {
	Addr   string
	Config ServerConfig

	// StaticDir, when set to an existing directory, is served at "/".
	// The API remains available under /api/v1/.
	StaticDir string

	// API is used to build the default mux when Handler is nil.
	API APIV1Config

	// Handler overrides the default mux. The simulator sets it to add /sim/* routes.
	Handler http.Handler

	Logger sysLogger

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

func NewHTTPServer(cfg ServerConfig) *HTTPServer {
	return &HTTPServer{Addr: cfg.ListenAddr, Config: cfg}
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	addr := s.Addr
	if addr == "" {
		addr = ":80"
	}

	handler := s.Handler
	if handler == nil {
		handler = NewDefaultMux(s.StaticDir, s.API)
	}

	logger := s.Logger
	if logger == nil {
		logger = noopSysLogger{}
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Config.Handler(withRequestLog(handler, logger)),
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	// Report the bound address when an ephemeral port was requested.
	s.Addr = ln.Addr().String()
	logger.Infof("web", "listening on %s (dev=%v)", s.Addr, s.Config.DevMode)

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		logger.Errorf("web", "serve: %v", err)
	}()

	return nil
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	ln := s.ln
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// StaticUIHandler serves the embedded web UI, or staticDir when it names an
// existing directory.
func StaticUIHandler(staticDir string) http.Handler {
	var fileServer http.Handler
	if staticDir == "" {
		fileServer = http.FileServer(http.FS(assets.WebUI))
	} else {
		if st, err := os.Stat(staticDir); err != nil || !st.IsDir() {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			})
		}
		fileServer = http.FileServer(http.Dir(staticDir))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean path to avoid oddities.
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		fileServer.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLog logs every API call that changes the artwork, and every failed request.
func withRequestLog(next http.Handler, logger sysLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		switch {
		case rec.status >= 400:
			logger.Errorf("web", "%s %s -> %d", r.Method, r.URL.Path, rec.status)
		case r.Method == http.MethodPost:
			logger.Infof("web", "%s %s -> %d in %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
		}
	})
}
