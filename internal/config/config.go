// Package config loads the coloring book settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/rook-computer/colorbook/internal/fill"
	"github.com/rook-computer/colorbook/internal/palette"
)

const DefaultArtworkName = "my-pharaoh-artwork.png"

type Config struct {
	// Page is a path or http(s) URL of the line-art page. Empty uses the built-in page.
	Page       string `toml:"page"`
	PageWidth  int    `toml:"page_width"`
	PageHeight int    `toml:"page_height"`

	Tolerance        int `toml:"tolerance"`
	OutlineThreshold int `toml:"outline_threshold"`

	ArtworkName string `toml:"artwork_name"`
	ExportDir   string `toml:"export_dir"`
	PrintScript string `toml:"print_script"`

	Sound bool `toml:"sound"`

	Palette palette.File `toml:"palette"`
}

func Default() Config {
	return Config{
		PageWidth:        1024,
		PageHeight:       768,
		Tolerance:        fill.DefaultTolerance,
		OutlineThreshold: fill.DefaultOutlineThreshold,
		ArtworkName:      DefaultArtworkName,
		ExportDir:        "./artwork",
		Sound:            false,
		Palette:          palette.DefaultFile(),
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Write stores cfg as TOML, creating the parent directory.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buffer.Bytes(), 0o644)
}

func (c Config) Validate() error {
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		return fmt.Errorf("page size must be positive (got %dx%d)", c.PageWidth, c.PageHeight)
	}
	if c.Tolerance < 0 || c.Tolerance > 255 {
		return fmt.Errorf("tolerance must be within 0..255 (got %d)", c.Tolerance)
	}
	if c.OutlineThreshold < 0 || c.OutlineThreshold > 256 {
		return fmt.Errorf("outline_threshold must be within 0..256 (got %d)", c.OutlineThreshold)
	}
	if _, err := palette.Build(c.Palette); err != nil {
		return err
	}
	return nil
}

func (c Config) Policy() fill.Policy {
	return fill.Policy{Tolerance: c.Tolerance, OutlineThreshold: c.OutlineThreshold}
}

func (c Config) BuildPalette() (palette.Palette, error) {
	return palette.Build(c.Palette)
}
