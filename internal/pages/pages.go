// Package pages loads the line-art pages children color in.
package pages

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxPageBytes bounds how much image data is read for a single page.
	MaxPageBytes = 32 << 20
	// MaxPageDimension bounds the declared width and height of a page.
	MaxPageDimension = 8192
	// MaxPagePixels bounds the decoded area, so a small file cannot declare a huge image.
	MaxPagePixels = 16 << 20
)

// ErrCannotProcess is reported when a page cannot be turned into pixels, e.g. the
// source is unreachable or not an image.
var ErrCannotProcess = errors.New("cannot process image")

// Page is a decoded line-art page.
type Page struct {
	Name  string
	Image image.Image
}

// Decode reads a png, jpeg, gif, bmp or webp image. The header is checked against
// MaxPageDimension and MaxPagePixels before any pixels are decoded.
func Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrCannotProcess, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrCannotProcess, err)
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrCannotProcess, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", fmt.Errorf("%w: empty image", ErrCannotProcess)
	}
	return img, format, nil
}

func checkDimensions(width, height int) error {
	switch {
	case width <= 0 || height <= 0:
		return fmt.Errorf("%w: empty image", ErrCannotProcess)
	case width > MaxPageDimension || height > MaxPageDimension:
		return fmt.Errorf("%w: %dx%d exceeds %d px per side", ErrCannotProcess, width, height, MaxPageDimension)
	case width*height > MaxPagePixels:
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrCannotProcess, width, height, MaxPagePixels)
	}
	return nil
}

// Open decodes an image file.
func Open(path string) (Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrCannotProcess, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := Decode(f)
	if err != nil {
		return Page{}, err
	}
	return Page{Name: path, Image: img}, nil
}

// Fetch downloads and decodes an image over HTTP. A nil client uses a client with a
// 15 second timeout.
func Fetch(ctx context.Context, client *http.Client, url string) (Page, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrCannotProcess, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrCannotProcess, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, fmt.Errorf("%w: %s returned %s", ErrCannotProcess, url, resp.Status)
	}
	img, _, err := Decode(resp.Body)
	if err != nil {
		return Page{}, err
	}
	return Page{Name: url, Image: img}, nil
}

// Load picks the page source: empty means the built-in page, http(s) URLs are
// fetched, anything else is treated as a file path.
func Load(ctx context.Context, source string, width, height int) (Page, error) {
	switch {
	case source == "":
		return Page{Name: BuiltinName, Image: Builtin(width, height)}, nil
	case hasScheme(source, "http://"), hasScheme(source, "https://"):
		return Fetch(ctx, nil, source)
	default:
		return Open(source)
	}
}

func hasScheme(s, scheme string) bool {
	return len(s) >= len(scheme) && s[:len(scheme)] == scheme
}
