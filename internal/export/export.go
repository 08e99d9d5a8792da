// Package export sends finished artwork somewhere: a directory, or a print script.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrBusy        = errors.New("export already running")
	ErrInvalidName = errors.New("invalid artwork name")
)

// Status reports the last export.
type Status struct {
	Target string
	Status string // idle | running | done | error
	Err    string
}

type Exporter interface {
	Export(ctx context.Context, name string, r io.Reader) error
	Status() Status
}

type NoopExporter struct{}

func (NoopExporter) Export(context.Context, string, io.Reader) error { return nil }
func (NoopExporter) Status() Status                                 { return Status{Status: "idle"} }

// CleanName validates an artwork file name: no directories, no hidden files.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// FileExporter writes artwork into Dir. Files are written to a temporary name and
// renamed so readers never see a partial PNG.
type FileExporter struct {
	Dir string

	mu     sync.Mutex
	status Status
}

func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{Dir: dir, status: Status{Target: dir, Status: "idle"}}
}

func (f *FileExporter) Export(ctx context.Context, name string, r io.Reader) error {
	name, err := CleanName(name)
	if err != nil {
		return err
	}
	f.mu.Lock()
	if f.status.Status == "running" {
		f.mu.Unlock()
		return ErrBusy
	}
	target := filepath.Join(f.Dir, name)
	f.status = Status{Target: target, Status: "running"}
	f.mu.Unlock()

	err = writeFileAtomic(ctx, target, r)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = Status{Target: target, Status: "error", Err: err.Error()}
		return err
	}
	f.status = Status{Target: target, Status: "done"}
	return nil
}

func (f *FileExporter) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func writeFileAtomic(ctx context.Context, target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".export-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, ctxReader{ctx: ctx, r: r}); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, target)
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
