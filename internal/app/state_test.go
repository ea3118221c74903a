package app

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	"image/png"
	"testing"

	"image-compositor/internal/image"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func pngData(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// loaded returns a compositor with both slots filled: a red first image and
// a blue second image.
func loaded(t *testing.T) *Compositor {
	t.Helper()
	c := NewCompositor(DefaultOptions())
	load(t, c, SlotFirst, "red.png", red)
	load(t, c, SlotSecond, "blue.png", blue)
	return c
}

func load(t *testing.T, c *Compositor, slot Slot, name string, col color.Color) {
	t.Helper()
	res := c.LoadSync(context.Background(), slot, name, bytes.NewReader(pngData(t, 40, 20, col)))
	require.NoError(t, res.Err)
}

func TestLoadAppliesSlotDefaults(t *testing.T) {
	c := NewCompositor(DefaultOptions())
	assert.Equal(t, Empty, c.LoadState())

	load(t, c, SlotFirst, "a.png", red)
	assert.Equal(t, PartiallyLoaded, c.LoadState())
	pose, ok := c.Pose(SlotFirst)
	require.True(t, ok)
	assertPose(t, image.FullCanvasPose(), pose)
	_, ok = c.Pose(SlotSecond)
	assert.False(t, ok)

	load(t, c, SlotSecond, "b.png", blue)
	assert.Equal(t, FullyLoaded, c.LoadState())
	pose, _ = c.Pose(SlotSecond)
	assertPose(t, image.InsetPose(), pose)
}

func TestSecondSlotAloneStaysInset(t *testing.T) {
	c := NewCompositor(DefaultOptions())
	load(t, c, SlotSecond, "b.png", blue)
	assert.Equal(t, PartiallyLoaded, c.LoadState())
	pose, _ := c.Pose(SlotSecond)
	assertPose(t, image.InsetPose(), pose)
	assert.Len(t, c.Layers(), 1)
}

func TestReplaceLeavesOtherSlotAlone(t *testing.T) {
	c := loaded(t)
	require.True(t, c.Move(SlotSecond, 10, -5))
	before := c.Layer(SlotSecond)
	oldFirst := c.Layer(SlotFirst)
	require.True(t, c.Move(SlotFirst, 30, 30))

	load(t, c, SlotFirst, "again.png", blue)

	first := c.Layer(SlotFirst)
	assert.NotEqual(t, oldFirst.ID, first.ID)
	assert.Equal(t, "again.png", first.Source.Name)
	assertPose(t, image.FullCanvasPose(), first.Pose)

	after := c.Layer(SlotSecond)
	assert.Equal(t, before.ID, after.ID)
	assertPose(t, before.Pose, after.Pose)
	assert.Equal(t, before.Source.Digest, after.Source.Digest)
}

func TestLayerReturnsCopy(t *testing.T) {
	c := loaded(t)
	l := c.Layer(SlotFirst)
	l.Pose.X = 999
	pose, _ := c.Pose(SlotFirst)
	assert.Equal(t, 0.0, pose.X)
	assert.Nil(t, c.Layer(Slot(7)))
}

func TestSelectionTransitions(t *testing.T) {
	c := loaded(t)
	var events []Selection
	c.On(EventSelectionChanged, func(data interface{}) {
		events = append(events, data.(Selection))
	})

	assert.True(t, c.Selection().IsNone())
	assert.False(t, c.Selection().Visible())

	// The inset second image is on top in the middle of the canvas.
	slot, ok := c.SelectAt(pt(225, 225))
	require.True(t, ok)
	assert.Equal(t, SlotSecond, slot)
	assert.True(t, c.Selection().Visible())
	assert.Equal(t, c.Layer(SlotSecond).ID, c.Selection().LayerID())

	// Only the first image covers the margin.
	slot, ok = c.SelectAt(pt(5, 5))
	require.True(t, ok)
	assert.Equal(t, SlotFirst, slot)

	// Selecting the same layer again changes nothing.
	c.Select(SlotFirst)

	c.PointerExit()
	sel := c.Selection()
	assert.False(t, sel.Visible())
	got, attached := sel.Selected()
	assert.True(t, attached)
	assert.Equal(t, SlotFirst, got)

	// Clicking again shows the overlay on the same layer.
	c.Select(SlotFirst)
	assert.True(t, c.Selection().Visible())

	require.Len(t, events, 4)
	assert.True(t, events[0].Visible())
	assert.False(t, events[2].Visible())
	assert.True(t, events[3].Visible())
}

func TestSelectEmpty(t *testing.T) {
	c := NewCompositor(DefaultOptions())
	assert.False(t, c.Select(SlotFirst))
	_, ok := c.SelectAt(pt(100, 100))
	assert.False(t, ok)

	load(t, c, SlotSecond, "b.png", blue)
	c.Select(SlotSecond)
	// Empty canvas outside the inset image keeps the current selection.
	_, ok = c.SelectAt(pt(5, 5))
	assert.False(t, ok)
	assert.True(t, c.Selection().Visible())
}

func TestReplacingSelectedLayerDetachesOverlay(t *testing.T) {
	c := loaded(t)
	require.True(t, c.Select(SlotSecond))

	load(t, c, SlotFirst, "other.png", red)
	assert.True(t, c.Selection().Visible(), "replacing another slot keeps the overlay")

	load(t, c, SlotSecond, "other.png", red)
	assert.True(t, c.Selection().IsNone())
	assert.Equal(t, HandleNone, c.HandleAt(pt(25, 25)))
}

func TestMoveIsUnbounded(t *testing.T) {
	c := loaded(t)
	require.True(t, c.Move(SlotSecond, -10000, 5000))
	pose, _ := c.Pose(SlotSecond)
	assert.Equal(t, -9975.0, pose.X)
	assert.Equal(t, 5025.0, pose.Y)

	assert.False(t, NewCompositor(DefaultOptions()).Move(SlotFirst, 1, 1))
}

func TestResetRestoresFullCanvas(t *testing.T) {
	c := loaded(t)
	for _, slot := range Slots() {
		c.Move(slot, 77, -13)
		c.SetPose(slot, image.Pose{X: 3, Y: 4, Width: 450, Height: 450, ScaleX: 2.5, ScaleY: 0.3, Rotation: 135})
	}

	require.True(t, c.Reset(SlotFirst))
	require.True(t, c.Reset(SlotSecond))
	for _, s := range Slots() {
		pose, _ := c.Pose(s)
		assertPose(t, image.ResetPose(), pose)
	}

	// Both layers now cover the canvas; a double click hits the top one.
	slot, ok := c.ResetAt(pt(100, 100))
	require.True(t, ok)
	assert.Equal(t, SlotSecond, slot)

	_, ok = c.ResetAt(pt(-500, -500))
	assert.False(t, ok)
}

func TestSetPoseClamps(t *testing.T) {
	c := loaded(t)
	c.SetPose(SlotFirst, image.Pose{Width: 450, Height: 450, ScaleX: 0, ScaleY: -3})
	pose, _ := c.Pose(SlotFirst)
	assert.Equal(t, image.MinScale, pose.ScaleX)
	assert.Equal(t, image.MinScale, pose.ScaleY)
}

func TestHandleDragNeverGoesBelowMinScale(t *testing.T) {
	opts := DefaultOptions()
	opts.KeepRatio = false
	c := NewCompositor(opts)
	load(t, c, SlotSecond, "b.png", blue)

	assert.Equal(t, HandleNone, c.HandleAt(pt(425, 225)), "hidden overlay has no handles")
	require.True(t, c.Select(SlotSecond))
	h := c.HandleAt(pt(425, 225))
	require.Equal(t, HandleRight, h)
	require.True(t, c.BeginTransform(h))
	assert.True(t, c.Transforming())

	var last image.Pose
	for x := 425.0; x >= -300; x -= 25 {
		pose, ok := c.UpdateTransform(pt(x, 225))
		require.True(t, ok)
		assert.GreaterOrEqual(t, pose.ScaleX, image.MinScale)
		assert.Equal(t, 25.0, pose.X, "left edge stays fixed")
		last = pose
	}
	assert.Equal(t, image.MinScale, last.ScaleX)

	c.EndTransform()
	assert.False(t, c.Transforming())
	_, ok := c.UpdateTransform(pt(0, 0))
	assert.False(t, ok)
}

func TestRotateThroughCompositor(t *testing.T) {
	c := loaded(t)
	require.True(t, c.Select(SlotSecond))
	h := c.HandleAt(HandlePosition(image.InsetPose(), HandleRotate))
	require.Equal(t, HandleRotate, h)
	require.True(t, c.BeginTransform(h))

	pose, ok := c.UpdateTransform(pt(400, 225))
	require.True(t, ok)
	assert.InDelta(t, 90, pose.Rotation, 1e-9)
	c.EndTransform()

	stored, _ := c.Pose(SlotSecond)
	assertPose(t, pose, stored)
}

func TestReplacementEndsGripDrag(t *testing.T) {
	c := loaded(t)
	require.True(t, c.Select(SlotSecond))
	require.True(t, c.BeginTransform(HandleRight))
	_, ok := c.UpdateTransform(pt(300, 225))
	require.True(t, ok)

	img, err := image.Decode("green.png", pngData(t, 30, 30, color.NRGBA{G: 255, A: 255}))
	require.NoError(t, err)
	require.NoError(t, c.SetImage(SlotSecond, img))

	_, ok = c.UpdateTransform(pt(100, 225))
	assert.False(t, ok)
	assert.False(t, c.Transforming())

	pose, _ := c.Pose(SlotSecond)
	assertPose(t, image.InsetPose(), pose)
	first, _ := c.Pose(SlotFirst)
	assertPose(t, image.FullCanvasPose(), first)
}

func TestGripDragOnlyTouchesItsLayer(t *testing.T) {
	c := loaded(t)
	require.True(t, c.Select(SlotSecond))
	require.True(t, c.BeginTransform(HandleRight))

	// Another session for a different layer instance must not apply here.
	c.mu.Lock()
	c.session.layerID = c.layers[SlotFirst].ID
	c.mu.Unlock()

	_, ok := c.UpdateTransform(pt(300, 225))
	assert.False(t, ok)
	pose, _ := c.Pose(SlotSecond)
	assertPose(t, image.InsetPose(), pose)
}

func TestBeginTransformNeedsSelection(t *testing.T) {
	c := loaded(t)
	assert.False(t, c.BeginTransform(HandleRight))
	c.Select(SlotFirst)
	assert.False(t, c.BeginTransform(HandleNone))
	assert.True(t, c.BeginTransform(HandleRight))
}

func TestLayerChangedEvents(t *testing.T) {
	c := loaded(t)
	var slots []Slot
	c.On(EventLayerChanged, func(data interface{}) {
		slots = append(slots, data.(Slot))
	})
	c.Move(SlotFirst, 1, 1)
	c.Reset(SlotSecond)
	c.Move(Slot(5), 1, 1)
	assert.Equal(t, []Slot{SlotFirst, SlotSecond}, slots)
}
