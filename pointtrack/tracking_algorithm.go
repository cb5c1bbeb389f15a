package pointtrack

import (
	"image"
)

// TrackingAlgorithm is the surface a host application drives: one call per advancing frame,
// one per displayed frame and one per logical input event.
// Implementations are LucasKanadeTracker and BaseTracker.
type TrackingAlgorithm interface {
	// Track processes frame with given number
	Track(frame int, img image.Image) (TrackResult, error)
	// RenderOverlay draws markers of frame onto target
	RenderOverlay(frame int, target DrawTarget)
	// OnPointerReleased routes a click with modifiers to the editing operations
	OnPointerReleased(pos Point, modifiers Modifier)
	// OnKeyPressed handles a key, returns false if key is not grabbed by the algorithm
	OnKeyPressed(key Key) bool
	// OnInputSourceChanged drops all trajectory state
	OnInputSourceChanged()
	// GrabbedKeys lists keys the host should route to OnKeyPressed
	GrabbedKeys() []Key
}

// TrackResult summarizes one Track call
type TrackResult struct {
	Frame int
	// Tracked is true when correspondence ran for this frame
	Tracked bool
	// Lost lists ids that became invalid during this frame
	Lost []int
}

// Modifier is keyboard modifier state at pointer release
type Modifier uint8

// ModNone - no modifier pressed
const ModNone Modifier = 0

const (
	// ModShift - shift pressed
	ModShift Modifier = 1 << iota
	// ModControl - control pressed
	ModControl
	// ModAlt - alt pressed
	ModAlt
)

// Key is logical key name as delivered by host
type Key string

const (
	// KeyDelete invalidates active point at current frame
	KeyDelete Key = "Delete"
)
