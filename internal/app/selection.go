package app

import (
	"github.com/google/uuid"
)

// Selection tracks which layer the transform overlay is attached to and
// whether the overlay is currently shown. Attachment and visibility change
// independently: leaving the canvas hides the overlay but keeps it attached.
type Selection struct {
	attached bool
	slot     Slot
	layerID  uuid.UUID
	visible  bool
}

// NoSelection is the detached, hidden overlay.
func NoSelection() Selection {
	return Selection{}
}

// Selected reports the slot the overlay is attached to, if any.
func (s Selection) Selected() (Slot, bool) {
	return s.slot, s.attached
}

// LayerID returns the attached layer's ID, or uuid.Nil when detached.
func (s Selection) LayerID() uuid.UUID {
	if !s.attached {
		return uuid.Nil
	}
	return s.layerID
}

// IsNone reports whether the overlay is detached.
func (s Selection) IsNone() bool {
	return !s.attached
}

// Visible reports whether the overlay is drawn.
func (s Selection) Visible() bool {
	return s.attached && s.visible
}

// attach moves the overlay onto a layer and shows it.
func (s Selection) attach(slot Slot, id uuid.UUID) Selection {
	return Selection{attached: true, slot: slot, layerID: id, visible: true}
}

// hide keeps the attachment but stops drawing the overlay.
func (s Selection) hide() Selection {
	s.visible = false
	return s
}

// forget detaches the overlay if it points at the given layer.
func (s Selection) forget(id uuid.UUID) Selection {
	if s.attached && s.layerID == id {
		return NoSelection()
	}
	return s
}
