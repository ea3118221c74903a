// Package colorutil provides shared colors for the canvas and its overlay.
package colorutil

import (
	"image/color"
)

// Canvas and overlay colors.
var (
	// HandleStroke outlines the transform handles and the selection box.
	HandleStroke = color.RGBA{R: 0, G: 161, B: 255, A: 255}

	// HandleFill fills the transform handles.
	HandleFill = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// Backdrop is shown behind the canvas where no layer covers it.
	Backdrop = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)
