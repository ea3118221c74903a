package app

import (
	"image-compositor/internal/image"
)

// Slot identifies one of the two image inputs.
type Slot int

// The two slots, in z-order.
const (
	SlotFirst  Slot = iota // Bottom layer
	SlotSecond             // Top layer
)

// Slots lists every slot in z-order, bottom first.
func Slots() []Slot {
	return []Slot{SlotFirst, SlotSecond}
}

func (s Slot) String() string {
	switch s {
	case SlotFirst:
		return "first"
	case SlotSecond:
		return "second"
	default:
		return "unknown"
	}
}

// Valid reports whether s names an existing slot.
func (s Slot) Valid() bool {
	return s == SlotFirst || s == SlotSecond
}

// DefaultPose is the pose a freshly loaded image takes in this slot.
func (s Slot) DefaultPose() image.Pose {
	if s == SlotSecond {
		return image.InsetPose()
	}
	return image.FullCanvasPose()
}

// LoadState summarizes how many slots hold an image.
type LoadState int

// Load states, by number of filled slots.
const (
	Empty LoadState = iota
	PartiallyLoaded
	FullyLoaded
)

func (l LoadState) String() string {
	switch l {
	case PartiallyLoaded:
		return "PartiallyLoaded"
	case FullyLoaded:
		return "FullyLoaded"
	default:
		return "Empty"
	}
}
