package app

import (
	"math"

	"image-compositor/internal/image"
	"image-compositor/pkg/geometry"

	"github.com/google/uuid"
)

const (
	// HandleSize is the edge length of a square transform handle.
	HandleSize = 10
	// RotateHandleOffset is the distance of the rotate handle above the top edge.
	RotateHandleOffset = 30

	handleSlop = 2
)

// Handle identifies a grip of the transform overlay.
type Handle int

// Grips in clockwise order from the top-left corner; HandleNone means no grip.
const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
	HandleRotate
)

// Handles lists every grip in drawing order.
func Handles() []Handle {
	return []Handle{
		HandleTopLeft, HandleTop, HandleTopRight, HandleRight,
		HandleBottomRight, HandleBottom, HandleBottomLeft, HandleLeft,
		HandleRotate,
	}
}

func (h Handle) String() string {
	switch h {
	case HandleTopLeft:
		return "top-left"
	case HandleTop:
		return "top-center"
	case HandleTopRight:
		return "top-right"
	case HandleRight:
		return "middle-right"
	case HandleBottomRight:
		return "bottom-right"
	case HandleBottom:
		return "bottom-center"
	case HandleBottomLeft:
		return "bottom-left"
	case HandleLeft:
		return "middle-left"
	case HandleRotate:
		return "rotater"
	default:
		return "none"
	}
}

// sides returns which box edges the handle moves: -1 left/top, +1 right/bottom.
func (h Handle) sides() (x, y int) {
	switch h {
	case HandleTopLeft:
		return -1, -1
	case HandleTop:
		return 0, -1
	case HandleTopRight:
		return 1, -1
	case HandleRight:
		return 1, 0
	case HandleBottomRight:
		return 1, 1
	case HandleBottom:
		return 0, 1
	case HandleBottomLeft:
		return -1, 1
	case HandleLeft:
		return -1, 0
	}
	return 0, 0
}

// IsCorner reports whether the handle moves two edges at once.
func (h Handle) IsCorner() bool {
	x, y := h.sides()
	return x != 0 && y != 0
}

// localPosition is the handle centre in the pose's rotated, unscaled frame.
func (h Handle) localPosition(ext geometry.Size) geometry.Point2D {
	if h == HandleRotate {
		return geometry.Point2D{X: ext.Width / 2, Y: -RotateHandleOffset}
	}
	x, y := h.sides()
	return geometry.Point2D{
		X: ext.Width * float64(x+1) / 2,
		Y: ext.Height * float64(y+1) / 2,
	}
}

// HandlePosition returns the handle centre in canvas coordinates.
func HandlePosition(p image.Pose, h Handle) geometry.Point2D {
	return p.FromLocal(h.localPosition(p.Extent()))
}

// HandleAt returns the grip under a canvas point, HandleNone if there is none.
// Handles are tested in reverse drawing order so the topmost wins.
func HandleAt(p image.Pose, pt geometry.Point2D) Handle {
	local := p.ToLocal(pt)
	ext := p.Extent()
	r := HandleSize/2 + handleSlop
	hs := Handles()
	for i := len(hs) - 1; i >= 0; i-- {
		c := hs[i].localPosition(ext)
		if math.Abs(local.X-c.X) <= float64(r) && math.Abs(local.Y-c.Y) <= float64(r) {
			return hs[i]
		}
	}
	return HandleNone
}

// ResizePose drags a resize handle of start to pt. The opposite edge or
// corner stays fixed. With keepRatio, corner handles scale both axes by the
// same factor. Every axis scale is clamped to image.MinScale, so the box
// never collapses or flips.
func ResizePose(start image.Pose, h Handle, pt geometry.Point2D, keepRatio bool) image.Pose {
	xs, ys := h.sides()
	if (xs == 0 && ys == 0) || start.Width == 0 || start.Height == 0 {
		return start
	}

	q := start.ToLocal(pt)
	ext := start.Extent()
	sx, sy := start.ScaleX, start.ScaleY

	if keepRatio && h.IsCorner() {
		fixed := geometry.Point2D{X: ext.Width * float64(1-xs) / 2, Y: ext.Height * float64(1-ys) / 2}
		moving := h.localPosition(ext)
		d0 := moving.Sub(fixed)
		if n := d0.Dot(d0); n > 0 {
			k := q.Sub(fixed).Dot(d0) / n
			sx, sy = sx*k, sy*k
		}
	} else {
		switch xs {
		case 1:
			sx = q.X / start.Width
		case -1:
			sx = (ext.Width - q.X) / start.Width
		}
		switch ys {
		case 1:
			sy = q.Y / start.Height
		case -1:
			sy = (ext.Height - q.Y) / start.Height
		}
	}

	next := start
	next.ScaleX, next.ScaleY = sx, sy
	next = next.Clamped()

	// Re-anchor so the fixed edges keep their canvas position.
	var origin geometry.Point2D
	if xs == -1 {
		origin.X = ext.Width - next.ScaleX*start.Width
	}
	if ys == -1 {
		origin.Y = ext.Height - next.ScaleY*start.Height
	}
	o := start.FromLocal(origin)
	next.X, next.Y = o.X, o.Y
	return next
}

// RotatePose turns start about its box centre so the rotate handle points
// at pt. The resulting angle is normalized into (-180, 180].
func RotatePose(start image.Pose, pt geometry.Point2D) image.Pose {
	c := start.Center()
	if pt == c {
		return start
	}
	deg := math.Atan2(pt.Y-c.Y, pt.X-c.X)*180/math.Pi + 90

	next := start
	next.Rotation = geometry.NormalizeDegrees(deg)

	ext := start.Extent()
	half := geometry.Rotation(next.Rotation * math.Pi / 180).
		Apply(geometry.Point2D{X: ext.Width / 2, Y: ext.Height / 2})
	next.X, next.Y = c.X-half.X, c.Y-half.Y
	return next
}

// transformSession remembers the pose a handle drag started from.
type transformSession struct {
	slot    Slot
	layerID uuid.UUID
	handle  Handle
	start   image.Pose
}

// apply computes the pose for the current pointer position.
func (ts transformSession) apply(pt geometry.Point2D, keepRatio bool) image.Pose {
	if ts.handle == HandleRotate {
		return RotatePose(ts.start, pt)
	}
	return ResizePose(ts.start, ts.handle, pt, keepRatio)
}
