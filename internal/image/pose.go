package image

import (
	"math"

	"image-compositor/pkg/geometry"
)

const (
	// CanvasSize is the logical edge length of the square canvas.
	CanvasSize = 450

	// MinScale is the smallest scale factor a layer axis may take.
	MinScale = 0.1

	insetMargin = 25
)

// Pose places a layer on the canvas. The layer box [0,Width]x[0,Height] is
// scaled, then rotated clockwise by Rotation degrees about its top-left
// corner, then translated to (X, Y).
type Pose struct {
	X, Y          float64
	Width, Height float64
	ScaleX        float64
	ScaleY        float64
	Rotation      float64 // Degrees, clockwise positive
}

// FullCanvasPose covers the whole canvas.
func FullCanvasPose() Pose {
	return Pose{Width: CanvasSize, Height: CanvasSize, ScaleX: 1, ScaleY: 1}
}

// InsetPose sits inside the canvas with a fixed margin on every side.
func InsetPose() Pose {
	return Pose{
		X:      insetMargin,
		Y:      insetMargin,
		Width:  CanvasSize - 2*insetMargin,
		Height: CanvasSize - 2*insetMargin,
		ScaleX: 1,
		ScaleY: 1,
	}
}

// ResetPose is applied when a layer is double-clicked, whichever slot it is in.
func ResetPose() Pose {
	return FullCanvasPose()
}

// Clamped returns the pose with each scale axis raised to at least MinScale.
func (p Pose) Clamped() Pose {
	p.ScaleX = clampScale(p.ScaleX)
	p.ScaleY = clampScale(p.ScaleY)
	return p
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) || s < MinScale {
		return MinScale
	}
	return s
}

// Matrix maps layer-local box coordinates to canvas coordinates.
func (p Pose) Matrix() geometry.AffineTransform {
	return geometry.Translation(p.X, p.Y).
		Compose(geometry.Rotation(p.Rotation * math.Pi / 180)).
		Compose(geometry.Scale(p.ScaleX, p.ScaleY))
}

// Quad returns the layer box corners in canvas coordinates.
func (p Pose) Quad() geometry.Quad {
	m := p.Matrix()
	return geometry.Quad{
		m.Apply(geometry.Point2D{X: 0, Y: 0}),
		m.Apply(geometry.Point2D{X: p.Width, Y: 0}),
		m.Apply(geometry.Point2D{X: p.Width, Y: p.Height}),
		m.Apply(geometry.Point2D{X: 0, Y: p.Height}),
	}
}

// Contains reports whether a canvas point falls on the layer.
func (p Pose) Contains(pt geometry.Point2D) bool {
	return p.Quad().Contains(pt)
}

// Center returns the box centre in canvas coordinates.
func (p Pose) Center() geometry.Point2D {
	return p.Matrix().Apply(geometry.Point2D{X: p.Width / 2, Y: p.Height / 2})
}

// ToLocal maps a canvas point into the rotated but unscaled layer frame,
// i.e. the frame whose axes follow the layer edges with the origin at (X, Y).
func (p Pose) ToLocal(pt geometry.Point2D) geometry.Point2D {
	frame := geometry.Translation(p.X, p.Y).Compose(geometry.Rotation(p.Rotation * math.Pi / 180))
	inv, ok := frame.Inverse()
	if !ok {
		return pt.Sub(geometry.Point2D{X: p.X, Y: p.Y})
	}
	return inv.Apply(pt)
}

// FromLocal is the inverse of ToLocal.
func (p Pose) FromLocal(pt geometry.Point2D) geometry.Point2D {
	frame := geometry.Translation(p.X, p.Y).Compose(geometry.Rotation(p.Rotation * math.Pi / 180))
	return frame.Apply(pt)
}

// Extent returns the scaled box size along the layer axes.
func (p Pose) Extent() geometry.Size {
	return geometry.Size{Width: p.Width * p.ScaleX, Height: p.Height * p.ScaleY}
}
