package input

import (
	"context"
	"sync"
)

type Kind string

const (
	Tap    Kind = "tap"
	Exit   Kind = "exit"
	Next   Kind = "next"
	Eraser Kind = "eraser"
)

// Event is a pointer or key action. For taps X and Y are in the source's
// coordinate space and Width/Height give its size; zero size means the
// coordinates are already logical canvas pixels.
type Event struct {
	Kind   Kind
	X, Y   int
	Width  int
	Height int
}

type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

type NoopSource struct{ ch chan Event }

func NewNoopSource() *NoopSource { return &NoopSource{ch: make(chan Event)} }

func (n *NoopSource) Start(ctx context.Context) error { return nil }
func (n *NoopSource) Stop() error                     { close(n.ch); return nil }
func (n *NoopSource) Events() <-chan Event            { return n.ch }

// ChanSource delivers events pushed with Send. Used by the simulator and tests.
type ChanSource struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

func NewChanSource(buffer int) *ChanSource { return &ChanSource{ch: make(chan Event, buffer)} }

func (c *ChanSource) Start(ctx context.Context) error { return nil }

func (c *ChanSource) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
	return nil
}

func (c *ChanSource) Events() <-chan Event { return c.ch }

// Send queues ev, blocking until there is room or ctx is done. It reports
// false once the source is stopped.
func (c *ChanSource) Send(ctx context.Context, ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
