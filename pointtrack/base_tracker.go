package pointtrack

import (
	"image"
)

// BaseTracker is TrackingAlgorithm which tracks nothing. Hosts use it while no algorithm is chosen.
type BaseTracker struct{}

// NewBaseTracker creates new instance of BaseTracker
func NewBaseTracker() *BaseTracker {
	return &BaseTracker{}
}

func (bt *BaseTracker) Track(frame int, img image.Image) (TrackResult, error) {
	return TrackResult{Frame: frame, Lost: []int{}}, nil
}

func (bt *BaseTracker) RenderOverlay(frame int, target DrawTarget) {}

func (bt *BaseTracker) OnPointerReleased(pos Point, modifiers Modifier) {}

func (bt *BaseTracker) OnKeyPressed(key Key) bool {
	return false
}

func (bt *BaseTracker) OnInputSourceChanged() {}

func (bt *BaseTracker) GrabbedKeys() []Key {
	return []Key{}
}

var (
	_ TrackingAlgorithm = (*BaseTracker)(nil)
	_ TrackingAlgorithm = (*LucasKanadeTracker)(nil)
)
