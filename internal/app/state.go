// Package app provides the compositor state: image slots, selection, transforms and events.
package app

import (
	"sync"

	"image-compositor/internal/image"
	"image-compositor/pkg/geometry"

	"github.com/cockroachdb/errors"
	"github.com/kpango/glg"
)

// EventType identifies different compositor events.
type EventType int

const (
	EventImageLoaded      EventType = iota // data: Slot
	EventImageRejected                     // data: LoadResult
	EventSelectionChanged                  // data: Selection
	EventLayerChanged                      // data: Slot
	EventExported                          // data: string (path, or "" for a writer)
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Options configures a Compositor.
type Options struct {
	KeepRatio     bool                // Corner handles keep the aspect ratio
	Interpolation image.Interpolation // Resampling used for rendering and export
	Cache         *image.DecodeCache  // Optional; nil decodes every load
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{KeepRatio: true, Interpolation: image.InterpolationBiLinear}
}

// Compositor owns the two image slots, the overlay selection and the
// transform in progress. All methods are safe for concurrent use.
type Compositor struct {
	mu sync.RWMutex

	layers    [2]*image.Layer
	selection Selection
	session   *transformSession
	opts      Options

	loads sync.WaitGroup

	listeners map[EventType][]EventListener
}

// NewCompositor creates an empty compositor.
func NewCompositor(opts Options) *Compositor {
	return &Compositor{
		opts:      opts,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (c *Compositor) On(event EventType, listener EventListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[event] = append(c.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (c *Compositor) Emit(event EventType, data interface{}) {
	c.mu.RLock()
	listeners := c.listeners[event]
	c.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetImage replaces the slot's layer with a new one showing img at the
// slot's default pose. An overlay attached to the old layer is detached.
func (c *Compositor) SetImage(slot Slot, img *image.Decoded) error {
	if !slot.Valid() {
		return errors.Newf("invalid slot %d", slot)
	}
	if img == nil {
		return image.ErrNoFile
	}

	layer := image.NewLayer(img, slot.DefaultPose())

	c.mu.Lock()
	prev := c.layers[slot]
	c.layers[slot] = layer
	sel := c.selection
	if prev != nil {
		c.selection = c.selection.forget(prev.ID)
		if c.session != nil && c.session.slot == slot {
			c.session = nil
		}
	}
	selChanged := sel != c.selection
	newSel := c.selection
	c.mu.Unlock()

	glg.Infof("Load: %s slot now shows %s (%dx%d, %s)", slot, img.Name, img.Width(), img.Height(), img.MIME)

	c.Emit(EventImageLoaded, slot)
	if selChanged {
		c.Emit(EventSelectionChanged, newSel)
	}
	return nil
}

// Layer returns a copy of the slot's layer, or nil if the slot is empty.
func (c *Compositor) Layer(slot Slot) *image.Layer {
	if !slot.Valid() {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers[slot].Clone()
}

// Pose returns the slot's current pose.
func (c *Compositor) Pose(slot Slot) (image.Pose, bool) {
	l := c.Layer(slot)
	if l == nil {
		return image.Pose{}, false
	}
	return l.Pose, true
}

// Layers returns copies of the present layers, bottom first.
func (c *Compositor) Layers() []*image.Layer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*image.Layer
	for _, l := range c.layers {
		if l != nil {
			out = append(out, l.Clone())
		}
	}
	return out
}

// LoadState reports how many slots are filled.
func (c *Compositor) LoadState() LoadState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, l := range c.layers {
		if l != nil {
			n++
		}
	}
	switch n {
	case 0:
		return Empty
	case 1:
		return PartiallyLoaded
	default:
		return FullyLoaded
	}
}

// Selection returns the current overlay state.
func (c *Compositor) Selection() Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selection
}

// LayerAt returns the topmost slot whose layer covers pt.
func (c *Compositor) LayerAt(pt geometry.Point2D) (Slot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layerAtLocked(pt)
}

func (c *Compositor) layerAtLocked(pt geometry.Point2D) (Slot, bool) {
	slots := Slots()
	for i := len(slots) - 1; i >= 0; i-- {
		if l := c.layers[slots[i]]; l != nil && l.Pose.Contains(pt) {
			return slots[i], true
		}
	}
	return 0, false
}

// Select attaches the overlay to the slot's layer and shows it. It returns
// false if the slot is empty.
func (c *Compositor) Select(slot Slot) bool {
	if !slot.Valid() {
		return false
	}
	c.mu.Lock()
	l := c.layers[slot]
	if l == nil {
		c.mu.Unlock()
		return false
	}
	prev := c.selection
	c.selection = c.selection.attach(slot, l.ID)
	sel := c.selection
	c.mu.Unlock()

	if prev != sel {
		glg.Debugf("Select: overlay attached to %s layer", slot)
		c.Emit(EventSelectionChanged, sel)
	}
	return true
}

// SelectAt selects the topmost layer under pt. A click on empty canvas
// leaves the selection unchanged.
func (c *Compositor) SelectAt(pt geometry.Point2D) (Slot, bool) {
	slot, ok := c.LayerAt(pt)
	if !ok {
		return 0, false
	}
	return slot, c.Select(slot)
}

// PointerExit hides the overlay without detaching it.
func (c *Compositor) PointerExit() {
	c.mu.Lock()
	prev := c.selection
	c.selection = c.selection.hide()
	sel := c.selection
	c.mu.Unlock()

	if prev != sel {
		c.Emit(EventSelectionChanged, sel)
	}
}

// Move translates the slot's layer. Positions are not bounded.
func (c *Compositor) Move(slot Slot, dx, dy float64) bool {
	return c.update(slot, func(p image.Pose) image.Pose {
		p.X += dx
		p.Y += dy
		return p
	})
}

// SetPose replaces the slot's pose; scales below image.MinScale are clamped.
func (c *Compositor) SetPose(slot Slot, pose image.Pose) bool {
	return c.update(slot, func(image.Pose) image.Pose { return pose })
}

// Reset restores the layer to image.ResetPose. Both slots share that pose.
func (c *Compositor) Reset(slot Slot) bool {
	ok := c.update(slot, func(image.Pose) image.Pose { return image.ResetPose() })
	if ok {
		glg.Debugf("Reset: %s layer", slot)
	}
	return ok
}

// ResetAt resets the topmost layer under pt.
func (c *Compositor) ResetAt(pt geometry.Point2D) (Slot, bool) {
	slot, ok := c.LayerAt(pt)
	if !ok {
		return 0, false
	}
	return slot, c.Reset(slot)
}

func (c *Compositor) update(slot Slot, fn func(image.Pose) image.Pose) bool {
	if !slot.Valid() {
		return false
	}
	c.mu.Lock()
	l := c.layers[slot]
	if l == nil {
		c.mu.Unlock()
		return false
	}
	next := l.Clone()
	next.Pose = fn(l.Pose).Clamped()
	c.layers[slot] = next
	c.mu.Unlock()

	c.Emit(EventLayerChanged, slot)
	return true
}

// HandleAt returns the overlay grip under pt. Only a visible overlay has grips.
func (c *Compositor) HandleAt(pt geometry.Point2D) Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	slot, ok := c.selection.Selected()
	if !ok || !c.selection.Visible() || c.layers[slot] == nil {
		return HandleNone
	}
	return HandleAt(c.layers[slot].Pose, pt)
}

// BeginTransform starts dragging a grip of the attached layer.
func (c *Compositor) BeginTransform(h Handle) bool {
	if h == HandleNone {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.selection.Selected()
	if !ok || c.layers[slot] == nil {
		return false
	}
	l := c.layers[slot]
	c.session = &transformSession{slot: slot, layerID: l.ID, handle: h, start: l.Pose}
	return true
}

// Transforming reports whether a grip drag is in progress.
func (c *Compositor) Transforming() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// UpdateTransform applies the grip drag for the pointer at pt. The scale
// clamp is applied on every update. A drag whose layer was replaced in the
// meantime ends without touching the new layer.
func (c *Compositor) UpdateTransform(pt geometry.Point2D) (image.Pose, bool) {
	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return image.Pose{}, false
	}
	l := c.layers[s.slot]
	if l == nil || l.ID != s.layerID {
		c.session = nil
		c.mu.Unlock()
		return image.Pose{}, false
	}
	next := l.Clone()
	next.Pose = s.apply(pt, c.opts.KeepRatio).Clamped()
	c.layers[s.slot] = next
	c.mu.Unlock()

	c.Emit(EventLayerChanged, s.slot)
	return next.Pose, true
}

// EndTransform finishes the grip drag.
func (c *Compositor) EndTransform() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}
