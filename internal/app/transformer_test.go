package app

import (
	"testing"

	"image-compositor/internal/image"
	"image-compositor/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func pt(x, y float64) geometry.Point2D { return geometry.Point2D{X: x, Y: y} }

func assertPose(t *testing.T, want, got image.Pose) {
	t.Helper()
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("pose (-want +got):\n%s", diff)
	}
}

func TestHandlePositions(t *testing.T) {
	p := image.InsetPose()
	want := map[Handle]geometry.Point2D{
		HandleTopLeft:     pt(25, 25),
		HandleTop:         pt(225, 25),
		HandleTopRight:    pt(425, 25),
		HandleRight:       pt(425, 225),
		HandleBottomRight: pt(425, 425),
		HandleBottom:      pt(225, 425),
		HandleBottomLeft:  pt(25, 425),
		HandleLeft:        pt(25, 225),
		HandleRotate:      pt(225, 25-RotateHandleOffset),
	}
	for h, w := range want {
		if diff := cmp.Diff(w, HandlePosition(p, h), approx); diff != "" {
			t.Errorf("%s (-want +got):\n%s", h, diff)
		}
	}
}

func TestHandleAt(t *testing.T) {
	p := image.InsetPose()
	assert.Equal(t, HandleTopLeft, HandleAt(p, pt(26, 24)))
	assert.Equal(t, HandleBottomRight, HandleAt(p, pt(430, 430)))
	assert.Equal(t, HandleRotate, HandleAt(p, pt(225, -5)))
	assert.Equal(t, HandleNone, HandleAt(p, pt(225, 225)))
	assert.Equal(t, HandleNone, HandleAt(p, pt(25, 60)))

	turned := p
	turned.Rotation = 90
	assert.Equal(t, HandleTopRight, HandleAt(turned, HandlePosition(turned, HandleTopRight)))
}

func TestResizeEdges(t *testing.T) {
	start := image.InsetPose()

	right := ResizePose(start, HandleRight, pt(325, 300), false)
	want := start
	want.ScaleX = 0.75
	assertPose(t, want, right)

	left := ResizePose(start, HandleLeft, pt(125, 200), false)
	want = start
	want.X = 125
	want.ScaleX = 0.75
	assertPose(t, want, left)

	bottom := ResizePose(start, HandleBottom, pt(0, 625), false)
	want = start
	want.ScaleY = 1.5
	assertPose(t, want, bottom)
}

func TestResizeClampsAtFloor(t *testing.T) {
	start := image.InsetPose()

	// Left edge dragged past the right edge: the right edge stays put.
	crossed := ResizePose(start, HandleLeft, pt(500, 200), false)
	assert.Equal(t, image.MinScale, crossed.ScaleX)
	assert.InDelta(t, 385, crossed.X, 1e-9)
	assert.InDelta(t, 425, crossed.Quad()[1].X, 1e-9)

	// Right edge dragged exactly onto the left edge.
	zero := ResizePose(start, HandleRight, pt(25, 200), false)
	assert.Equal(t, image.MinScale, zero.ScaleX)
	assert.InDelta(t, 25, zero.X, 1e-9)
}

func TestResizeCorners(t *testing.T) {
	start := image.InsetPose()

	kept := ResizePose(start, HandleBottomRight, pt(225, 225), true)
	want := start
	want.ScaleX, want.ScaleY = 0.5, 0.5
	assertPose(t, want, kept)

	free := ResizePose(start, HandleBottomRight, pt(125, 325), false)
	want = start
	want.ScaleX, want.ScaleY = 0.25, 0.75
	assertPose(t, want, free)

	inverted := ResizePose(start, HandleTopLeft, pt(450, 450), true)
	want = start
	want.ScaleX, want.ScaleY = image.MinScale, image.MinScale
	want.X, want.Y = 385, 385
	assertPose(t, want, inverted)
}

func TestResizeFollowsRotation(t *testing.T) {
	start := image.Pose{X: 225, Y: 225, Width: 100, Height: 100, ScaleX: 1, ScaleY: 1, Rotation: 90}
	got := ResizePose(start, HandleRight, pt(10, 375), false)
	want := start
	want.ScaleX = 1.5
	assertPose(t, want, got)
}

func TestRotatePose(t *testing.T) {
	start := image.InsetPose()

	right := RotatePose(start, pt(400, 225))
	assert.InDelta(t, 90, right.Rotation, 1e-9)
	assert.InDelta(t, 425, right.X, 1e-9)
	assert.InDelta(t, 25, right.Y, 1e-9)
	if diff := cmp.Diff(start.Center(), right.Center(), approx); diff != "" {
		t.Errorf("center moved (-want +got):\n%s", diff)
	}

	up := RotatePose(start, pt(225, 0))
	assertPose(t, start, up)

	left := RotatePose(start, pt(0, 225))
	assert.InDelta(t, -90, left.Rotation, 1e-9)

	assertPose(t, start, RotatePose(start, start.Center()))
}
