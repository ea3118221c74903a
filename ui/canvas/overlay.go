package canvas

import (
	"image/color"
	"math"

	"image-compositor/internal/app"
	cimage "image-compositor/internal/image"
	"image-compositor/pkg/colorutil"
	"image-compositor/pkg/geometry"
)

// Overlay is the transform overlay of one layer, in canvas coordinates.
type Overlay struct {
	Outline OverlayPolygon      // Layer box
	Stem    [2]geometry.Point2D // Top-centre to rotate handle
	Handles []OverlayPolygon    // One square per grip, in app.Handles order
	Stroke  color.RGBA
	Fill    color.RGBA
}

// OverlayPolygon represents a polygon to draw on the overlay.
type OverlayPolygon struct {
	Points []geometry.Point2D // Polygon vertices in canvas coordinates
	Filled bool               // If true, fill the polygon; otherwise just outline
}

// NewTransformOverlay builds the overlay for a layer at pose. Handle squares
// turn with the layer.
func NewTransformOverlay(pose cimage.Pose) *Overlay {
	q := pose.Quad()
	o := &Overlay{
		Outline: OverlayPolygon{Points: q.Points()},
		Stem: [2]geometry.Point2D{
			app.HandlePosition(pose, app.HandleTop),
			app.HandlePosition(pose, app.HandleRotate),
		},
		Stroke: colorutil.HandleStroke,
		Fill:   colorutil.HandleFill,
	}

	rad := pose.Rotation * math.Pi / 180
	half := float64(app.HandleSize) / 2
	u := geometry.Point2D{X: math.Cos(rad), Y: math.Sin(rad)}.Scale(half)
	v := geometry.Point2D{X: -math.Sin(rad), Y: math.Cos(rad)}.Scale(half)

	for _, h := range app.Handles() {
		c := app.HandlePosition(pose, h)
		o.Handles = append(o.Handles, OverlayPolygon{
			Points: []geometry.Point2D{
				c.Sub(u).Sub(v),
				c.Add(u).Sub(v),
				c.Add(u).Add(v),
				c.Sub(u).Add(v),
			},
			Filled: true,
		})
	}
	return o
}
