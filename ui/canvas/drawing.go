package canvas

import (
	"image"
	"image/color"
	"math"

	"image-compositor/pkg/geometry"

	"golang.org/x/image/vector"
)

// overlayStroke is the line width of the overlay in raster pixels.
const overlayStroke = 1

// drawOverlay draws the transform overlay on the output image.
func (ic *ImageCanvas) drawOverlay(output *image.RGBA, overlay *Overlay) {
	p := newPainter(output)
	p.stroke(ic.scaled(overlay.Outline.Points), true, overlay.Stroke)
	p.stroke(ic.scaled(overlay.Stem[:]), false, overlay.Stroke)
	for _, h := range overlay.Handles {
		pts := ic.scaled(h.Points)
		if h.Filled {
			p.fill(pts, overlay.Fill)
		}
		p.stroke(pts, true, overlay.Stroke)
	}
}

// scaled maps canvas coordinates to raster pixels.
func (ic *ImageCanvas) scaled(pts []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = p.Scale(ic.zoom)
	}
	return out
}

// painter rasterizes overlay shapes onto one output image. Every shape is
// clipped to the image before it reaches the rasterizer, so off-screen
// geometry costs nothing however far away it is.
type painter struct {
	dst    *image.RGBA
	bounds geometry.Rect
	r      *vector.Rasterizer
}

func newPainter(dst *image.RGBA) *painter {
	b := dst.Bounds()
	return &painter{
		dst: dst,
		bounds: geometry.Rect{
			Max: geometry.Point2D{X: float64(b.Dx()), Y: float64(b.Dy())},
		},
		r: vector.NewRasterizer(b.Dx(), b.Dy()),
	}
}

// fill paints the inside of a convex polygon.
func (p *painter) fill(pts []geometry.Point2D, col color.RGBA) {
	p.begin()
	if p.add(pts) {
		p.draw(col)
	}
}

// stroke paints the edges of a polyline, closing it back to the first point
// if closed is set. Strokes sit on pixel centres so axis-aligned edges stay
// one pixel wide.
func (p *painter) stroke(pts []geometry.Point2D, closed bool, col color.RGBA) {
	n := len(pts)
	if n < 2 {
		return
	}
	segments := n - 1
	if closed {
		segments = n
	}

	p.begin()
	centre := geometry.Point2D{X: 0.5, Y: 0.5}
	painted := false
	for i := 0; i < segments; i++ {
		a, b := pts[i].Add(centre), pts[(i+1)%n].Add(centre)
		d := b.Sub(a)
		length := math.Hypot(d.X, d.Y)
		if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
			continue
		}
		w := geometry.Point2D{X: -d.Y, Y: d.X}.Scale(overlayStroke / (2 * length))
		if p.add([]geometry.Point2D{a.Sub(w), b.Sub(w), b.Add(w), a.Add(w)}) {
			painted = true
		}
	}
	if painted {
		p.draw(col)
	}
}

func (p *painter) begin() {
	b := p.dst.Bounds()
	p.r.Reset(b.Dx(), b.Dy())
}

// add clips a convex polygon to the image and appends it to the current
// path. It reports whether anything was left to paint.
func (p *painter) add(pts []geometry.Point2D) bool {
	pts = p.bounds.ClipPolygon(pts)
	if len(pts) < 3 {
		return false
	}
	p.r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, pt := range pts[1:] {
		p.r.LineTo(float32(pt.X), float32(pt.Y))
	}
	p.r.ClosePath()
	return true
}

func (p *painter) draw(col color.RGBA) {
	p.r.Draw(p.dst, p.dst.Bounds(), image.NewUniform(col), image.Point{})
}
