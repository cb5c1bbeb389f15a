package pointtrack

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// motionModel is constant velocity 2D Kalman filter for single tracked point.
// Its prediction seeds correspondence search with an initial flow estimate.
type motionModel struct {
	tracker   *kalman_filter.Kalman2D
	predicted Point
}

func newMotionModel(position Point, dt float64) *motionModel {
	/* Kalman filter props */
	ux := 0.0
	uy := 0.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(position.X, position.Y))
	return &motionModel{
		tracker:   kf,
		predicted: position,
	}
}

// PredictNextPosition execute Kalman filter's first step and returns predicted position
func (mm *motionModel) PredictNextPosition() Point {
	mm.tracker.Predict()
	stateX, stateY := mm.tracker.GetState()
	mm.predicted = Point{X: stateX, Y: stateY}
	return mm.predicted
}

// Update feeds measured position into Kalman filter (second step)
func (mm *motionModel) Update(measured Point) error {
	err := mm.tracker.Update(measured.X, measured.Y)
	if err != nil {
		return errors.Wrap(err, "Can't update motion model")
	}
	return nil
}

// Predicted returns last predicted position
func (mm *motionModel) Predicted() Point {
	return mm.predicted
}

// motionModels keeps one motion model per object id
type motionModels struct {
	dt     float64
	models map[int]*motionModel
}

func newMotionModels(dt float64) *motionModels {
	return &motionModels{
		dt:     dt,
		models: make(map[int]*motionModel),
	}
}

// Reset (re)starts model of object at given position
func (mms *motionModels) Reset(objectID int, position Point) {
	mms.models[objectID] = newMotionModel(position, mms.dt)
}

// Forget drops model of object
func (mms *motionModels) Forget(objectID int) {
	delete(mms.models, objectID)
}

// Clear drops every model
func (mms *motionModels) Clear() {
	mms.models = make(map[int]*motionModel)
}

// Guesses returns predicted positions for the given ids, falling back to positions for objects without a model
func (mms *motionModels) Guesses(ids []int, positions []Point) []Point {
	assertSameLength("motion guesses", len(ids), len(positions))
	guesses := make([]Point, len(ids))
	for i, id := range ids {
		model, ok := mms.models[id]
		if !ok {
			model = newMotionModel(positions[i], mms.dt)
			mms.models[id] = model
		}
		guesses[i] = model.PredictNextPosition()
	}
	return guesses
}

// Observe feeds tracked position into model of object
func (mms *motionModels) Observe(objectID int, position Point) error {
	model, ok := mms.models[objectID]
	if !ok {
		mms.Reset(objectID, position)
		return nil
	}
	return errors.Wrapf(model.Update(position), "object %d", objectID)
}
