// Package palette holds the selectable fill colours of the coloring book.
package palette

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rook-computer/colorbook/internal/fill"
)

// EraserName selects the eraser swatch in Lookup.
const EraserName = "eraser"

var ErrUnknownColor = errors.New("palette: unknown color")

type Swatch struct {
	Name  string
	Hex   string
	Color fill.Color
}

type Palette struct {
	Swatches []Swatch
	Eraser   Swatch
}

// File is the on-disk TOML form of a palette.
type File struct {
	Eraser string       `toml:"eraser"`
	Swatch []SwatchFile `toml:"swatch"`
}

type SwatchFile struct {
	Name string `toml:"name"`
	Hex  string `toml:"hex"`
}

var defaultSwatches = []SwatchFile{
	{Name: "gold", Hex: "#FFD700"},
	{Name: "steel blue", Hex: "#4682B4"},
	{Name: "firebrick", Hex: "#B22222"},
	{Name: "dark green", Hex: "#006400"},
	{Name: "saddle brown", Hex: "#8B4513"},
	{Name: "white", Hex: "#FFFFFF"},
	{Name: "black", Hex: "#000000"},
	{Name: "hot pink", Hex: "#FF69B4"},
	{Name: "medium purple", Hex: "#9370DB"},
	{Name: "dark turquoise", Hex: "#00CED1"},
}

const defaultEraserHex = "#FFFFFF"

// DefaultFile returns the built-in palette in file form.
func DefaultFile() File {
	swatches := make([]SwatchFile, len(defaultSwatches))
	copy(swatches, defaultSwatches)
	return File{Eraser: defaultEraserHex, Swatch: swatches}
}

// Default returns the built-in ten colour palette with a white eraser.
func Default() Palette {
	p, err := Build(DefaultFile())
	if err != nil {
		panic(err)
	}
	return p
}

// Build validates f and converts it into a Palette. An empty swatch list falls back to
// the default swatches and an empty eraser to white.
func Build(f File) (Palette, error) {
	if len(f.Swatch) == 0 {
		f.Swatch = defaultSwatches
	}
	if strings.TrimSpace(f.Eraser) == "" {
		f.Eraser = defaultEraserHex
	}

	out := Palette{Swatches: make([]Swatch, 0, len(f.Swatch))}
	for i, sf := range f.Swatch {
		c, err := ParseHex(sf.Hex)
		if err != nil {
			return Palette{}, fmt.Errorf("swatch %d (%q): %w", i, sf.Name, err)
		}
		name := strings.TrimSpace(sf.Name)
		if name == "" {
			name = Hex(c)
		}
		out.Swatches = append(out.Swatches, Swatch{Name: name, Hex: Hex(c), Color: c})
	}

	eraser, err := ParseHex(f.Eraser)
	if err != nil {
		return Palette{}, fmt.Errorf("eraser: %w", err)
	}
	out.Eraser = Swatch{Name: EraserName, Hex: Hex(eraser), Color: eraser}
	return out, nil
}

// Decode reads a TOML palette.
func Decode(r io.Reader) (Palette, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return Palette{}, fmt.Errorf("decode palette: %w", err)
	}
	return Build(f)
}

// Load reads a TOML palette file.
func Load(path string) (Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return Palette{}, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// ParseHex parses "#RRGGBB" (the leading '#' is optional) into an opaque colour.
func ParseHex(s string) (fill.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fill.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return fill.RGB(r, g, b), nil
}

// Hex formats c as "#RRGGBB".
func Hex(c fill.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Lookup finds a swatch by name, by hex value, or the eraser by EraserName.
func (p Palette) Lookup(key string) (Swatch, error) {
	key = strings.TrimSpace(key)
	if strings.EqualFold(key, EraserName) {
		return p.Eraser, nil
	}
	for _, s := range p.Swatches {
		if strings.EqualFold(s.Name, key) {
			return s, nil
		}
	}
	if c, err := ParseHex(key); err == nil {
		hex := Hex(c)
		for _, s := range p.Swatches {
			if s.Hex == hex {
				return s, nil
			}
		}
		if p.Eraser.Hex == hex {
			return p.Eraser, nil
		}
	}
	return Swatch{}, fmt.Errorf("%w: %q", ErrUnknownColor, key)
}

// Index returns the i-th swatch.
func (p Palette) Index(i int) (Swatch, bool) {
	if i < 0 || i >= len(p.Swatches) {
		return Swatch{}, false
	}
	return p.Swatches[i], true
}

// Contrast returns black or white, whichever reads better on top of c.
func Contrast(c fill.Color) fill.Color {
	cf, _ := colorful.MakeColor(c)
	_, _, l := cf.Hcl()
	if l > 0.6 {
		return fill.Black
	}
	return fill.White
}
