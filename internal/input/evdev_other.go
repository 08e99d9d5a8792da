//go:build !linux

package input

import "context"

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EvdevSource has no devices outside Linux; it never emits events.
type EvdevSource struct {
	Glob   string
	Logger logger

	ch chan Event
}

func NewEvdevSource() *EvdevSource { return &EvdevSource{ch: make(chan Event)} }

func (s *EvdevSource) Start(ctx context.Context) error { return nil }
func (s *EvdevSource) Stop() error                     { close(s.ch); return nil }
func (s *EvdevSource) Events() <-chan Event            { return s.ch }
