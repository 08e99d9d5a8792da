package export

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// ScriptExporter streams artwork into `sudo <Script> <name>`. The script reads a PNG from
// stdin, e.g. to send it to a printer.
type ScriptExporter struct {
	Script string

	mu     sync.Mutex
	cmd    *exec.Cmd
	status Status
}

func NewScriptExporter(script string) *ScriptExporter {
	return &ScriptExporter{Script: script, status: Status{Target: script, Status: "idle"}}
}

func (s *ScriptExporter) command(ctx context.Context, name string) *exec.Cmd {
	return exec.CommandContext(ctx, "sudo", s.Script, name)
}

func (s *ScriptExporter) Export(ctx context.Context, name string, reader io.Reader) error {
	name, err := CleanName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return ErrBusy
	}
	s.status = Status{Target: s.Script, Status: "starting"}
	cmd := s.command(ctx, name)
	cmd.Stdin = reader
	cmd.Stdout = io.Discard
	stderr := &ringBuffer{max: 4096}
	cmd.Stderr = stderr
	s.cmd = cmd
	s.mu.Unlock()

	if err := cmd.Start(); err != nil {
		s.mu.Lock()
		s.cmd = nil
		s.status = Status{Target: s.Script, Status: "error", Err: err.Error()}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.status = Status{Target: s.Script, Status: "running"}
	s.mu.Unlock()

	err = cmd.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmd = nil
	if err != nil {
		msg := err.Error()
		if tail := stderr.String(); tail != "" {
			msg = msg + ": " + tail
		}
		s.status = Status{Target: s.Script, Status: "error", Err: msg}
		return fmt.Errorf("export script failed: %s", msg)
	}
	s.status = Status{Target: s.Script, Status: "done"}
	return nil
}

// Cancel kills a running export script.
func (s *ScriptExporter) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	return s.cmd.Process.Kill()
}

func (s *ScriptExporter) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ringBuffer keeps the last max bytes written to it.
type ringBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (r *ringBuffer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max <= 0 {
		return len(p), nil
	}

	if len(p) >= r.max {
		r.buf = append(r.buf[:0], p[len(p)-r.max:]...)
		return len(p), nil
	}

	if len(r.buf)+len(p) > r.max {
		drop := len(r.buf) + len(p) - r.max
		r.buf = append(r.buf[drop:], p...)
		return len(p), nil
	}

	r.buf = append(r.buf, p...)
	return len(p), nil
}

func (r *ringBuffer) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.buf)
}
