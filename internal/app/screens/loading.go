package screens

import (
	"context"

	"github.com/rook-computer/colorbook/internal/render"
	"github.com/rook-computer/colorbook/internal/state"
)

// LoadingScreen is shown while the first page is decoded, and when no page
// could be loaded at all.
type LoadingScreen struct {
	Message string
}

func (LoadingScreen) Start(ctx context.Context) error { return nil }
func (LoadingScreen) Stop() error                     { return nil }

func (s LoadingScreen) Draw(r render.Drawer, st state.State) {
	msg := s.Message
	if msg == "" {
		msg = "loading…"
	}
	if st.Phase == state.ERROR && st.Session.Err != "" {
		msg = st.Session.Err
	}
	r.DrawTextCentered(msg)
}
