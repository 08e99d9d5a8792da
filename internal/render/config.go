package render

import "image/color"

// Global render configuration for colors and logical canvas.
var (
	Foreground = color.RGBA{R: 0x3B, G: 0x2A, B: 0x14, A: 0xFF} // #3b2a14 papyrus ink
	Background = color.RGBA{R: 0xF4, G: 0xE4, B: 0xC1, A: 0xFF} // #f4e4c1 sand
	Accent     = color.RGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF} // #ffd700 gold, selection ring

	// Logical canvas size; scaled to framebuffer.
	CanvasWidth  = 1920
	CanvasHeight = 1080
)
