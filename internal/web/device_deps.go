package web

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rook-computer/colorbook/internal/pages"
)

// NewDeviceAPIV1Deps wires the API to a live session and real network page fetching.
func NewDeviceAPIV1Deps(session Session, artworkName string, logger sysLogger) APIV1Deps {
	if logger == nil {
		logger = noopSysLogger{}
	}
	return APIV1Deps{
		Session:     session,
		Pages:       HTTPPageLoader{Client: &http.Client{Timeout: 15 * time.Second}},
		ArtworkName: artworkName,
		Logger:      logger,
	}
}

// HTTPPageLoader decodes uploads in memory-bounded fashion and fetches URLs with Client.
type HTTPPageLoader struct {
	Client *http.Client
}

func (l HTTPPageLoader) Decode(ctx context.Context, name string, body io.Reader) (pages.Page, error) {
	_ = ctx
	img, _, err := pages.Decode(body)
	if err != nil {
		return pages.Page{}, err
	}
	return pages.Page{Name: name, Image: img}, nil
}

func (l HTTPPageLoader) Fetch(ctx context.Context, url string) (pages.Page, error) {
	return pages.Fetch(ctx, l.Client, url)
}
