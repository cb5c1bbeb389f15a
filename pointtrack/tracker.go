package pointtrack

import (
	"image"
	"image/color"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// Params configures LucasKanadeTracker
type Params struct {
	// Correspondence and sub-pixel refinement window, pyramid depth and termination criterion
	LK LKParams
	// Stop criterion of sub-pixel refinement of created and seeded points. Default 100 iterations or 0.001 px
	SubPixCriteria TermCriteria
	// Clicks within this distance (pixels) of an existing valid point do not create a new one. Default 5
	ProximityThreshold float64
	// Trail length in frames including current one, at most MaxHistorySize. Default 30
	HistorySize int
	// When false frames only refresh grayscale cache. Default true
	ShouldTrack bool
	// Ask host to pause playback whenever a point gets lost. Default false
	PauseOnInvalidPoint bool
	// Seed correspondence with Kalman filter prediction. Default false
	MotionPrediction bool
	// Number of classification toggles applied to active point. Default 3
	ClassificationBits int
	// Automatic seeding parameters
	Features FeatureParams
	// Marker colors
	ValidColor   color.RGBA
	InvalidColor color.RGBA
}

// DefaultParams returns defaults of every tracker parameter
func DefaultParams() Params {
	return Params{
		LK:                  DefaultLKParams(),
		SubPixCriteria:      DefaultSubPixCriteria(),
		ProximityThreshold:  5,
		HistorySize:         30,
		ShouldTrack:         true,
		PauseOnInvalidPoint: false,
		MotionPrediction:    false,
		ClassificationBits:  3,
		Features:            DefaultFeatureParams(),
		ValidColor:          color.RGBA{R: 0, G: 255, B: 0, A: 255},
		InvalidColor:        color.RGBA{R: 255, G: 0, B: 0, A: 255},
	}
}

const (
	minWindowSize     = 3
	defaultMaxWinSize = 255
)

// LucasKanadeTracker tracks operator designated points with pyramidal Lucas-Kanade optical flow.
// Every exported method is safe for concurrent use: one mutex serializes frame processing and editing.
type LucasKanadeTracker struct {
	mu sync.Mutex

	params         Params
	store          *TrajectoryStore
	frames         *FrameCache
	engine         *CorrespondenceEngine
	motion         *motionModels
	classification *ClassificationRegister

	// Currently active point, -1 when none
	activeID int
	// Last frame passed to Track, -1 before first frame
	currentFrame int
	session      uuid.UUID

	sink   EventSink
	logger zerolog.Logger
}

// TrackerOption customizes LucasKanadeTracker
type TrackerOption func(*LucasKanadeTracker)

// WithEventSink sets receiver of notices and host requests
func WithEventSink(sink EventSink) TrackerOption {
	return func(t *LucasKanadeTracker) {
		if sink != nil {
			t.sink = sink
		}
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) TrackerOption {
	return func(t *LucasKanadeTracker) {
		t.logger = logger
	}
}

// NewDefaultLucasKanadeTracker creates tracker with DefaultParams
func NewDefaultLucasKanadeTracker(opts ...TrackerOption) *LucasKanadeTracker {
	tracker, err := NewLucasKanadeTracker(DefaultParams(), opts...)
	if err != nil {
		panic("default params are invalid: " + err.Error())
	}
	return tracker
}

// NewLucasKanadeTracker creates new instance of LucasKanadeTracker
func NewLucasKanadeTracker(params Params, opts ...TrackerOption) (*LucasKanadeTracker, error) {
	if params.LK.WinSize < minWindowSize || params.LK.WinSize%2 == 0 {
		return nil, outOfRangef("window size %d must be odd and at least %d", params.LK.WinSize, minWindowSize)
	}
	if params.HistorySize < 0 || params.HistorySize > MaxHistorySize {
		return nil, outOfRangef("history size %d (max %d)", params.HistorySize, MaxHistorySize)
	}
	classification, err := NewClassificationRegister(params.ClassificationBits)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create classification register")
	}
	tracker := &LucasKanadeTracker{
		params:         params,
		store:          NewTrajectoryStore(),
		frames:         NewFrameCache(),
		engine:         NewCorrespondenceEngine(params.LK),
		motion:         newMotionModels(1.0),
		classification: classification,
		activeID:       -1,
		currentFrame:   -1,
		session:        uuid.New(),
		sink:           NopSink{},
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(tracker)
	}
	return tracker, nil
}

// Track converts img to grayscale and, when frame directly follows the previously tracked one,
// moves every valid point into it. Repeating the current frame only refreshes the gray cache.
func (t *LucasKanadeTracker) Track(frame int, img image.Image) (TrackResult, error) {
	if img == nil || img.Bounds().Empty() {
		return TrackResult{Frame: frame}, errors.Errorf("frame %d is empty", frame)
	}
	gray, err := ToGray(img)
	if err != nil {
		return TrackResult{Frame: frame}, errors.Wrapf(err, "Can't convert frame %d", frame)
	}
	return t.track(frame, gray), nil
}

// TrackMat is Track for BGR, BGRA or single channel frames already held in OpenCV Mat.
// img stays owned by caller.
func (t *LucasKanadeTracker) TrackMat(frame int, img gocv.Mat) (TrackResult, error) {
	if img.Empty() {
		return TrackResult{Frame: frame}, errors.Errorf("frame %d is empty", frame)
	}
	gray, err := NewGrayImageFromMat(img)
	if err != nil {
		return TrackResult{Frame: frame}, errors.Wrapf(err, "Can't convert frame %d", frame)
	}
	return t.track(frame, gray), nil
}

// track takes ownership of gray
func (t *LucasKanadeTracker) track(frame int, gray *GrayImage) TrackResult {
	var events eventQueue
	t.mu.Lock()
	result := t.trackLocked(frame, gray, &events)
	t.mu.Unlock()
	events.dispatch(t.sink)
	return result
}

func (t *LucasKanadeTracker) trackLocked(frame int, gray *GrayImage, events *eventQueue) TrackResult {
	result := TrackResult{Frame: frame, Lost: []int{}}
	repeat := t.frames.Ready() && frame == t.currentFrame
	t.frames.Push(frame, gray)
	t.currentFrame = frame
	if repeat {
		return result
	}
	defer t.applyClassificationLocked(events)

	if !t.params.ShouldTrack || !t.frames.Consecutive() || t.store.Len() == 0 {
		return result
	}
	prev, _ := t.frames.Previous()
	query := t.store.Query(frame - 1)
	var guesses []Point
	if t.params.MotionPrediction {
		guesses = t.predictLocked(query)
	}
	corr := t.engine.Correspond(prev, gray, query, guesses)
	assertSameLength("track", len(corr.Statuses), t.store.Len())

	for id, status := range corr.Statuses {
		var err error
		switch status {
		case StatusValid:
			err = t.store.Append(id, frame, corr.Positions[id], true)
			if err == nil && t.params.MotionPrediction {
				err = t.motion.Observe(id, corr.Positions[id])
			}
		case StatusInvalid:
			err = t.store.Append(id, frame, corr.Positions[id], false)
		}
		if err != nil {
			// Ids come from the store itself
			panic(ContractViolation{What: err.Error()})
		}
	}
	result.Tracked = true
	result.Lost = corr.Lost

	t.logger.Debug().Str("session", t.session.String()).Int("frame", frame).Int("points", len(corr.Statuses)).Int("lost", len(corr.Lost)).Msg("frame tracked")
	if corr.SomeInvalid() {
		t.logger.Warn().Str("session", t.session.String()).Int("frame", frame).Ints("ids", corr.Lost).Msg("points lost")
		events.notice(Notice{
			Kind:    NoticePointsInvalid,
			Message: "some points became invalid",
			Frame:   frame,
			IDs:     corr.Lost,
		})
		if t.params.PauseOnInvalidPoint {
			events.pause()
		}
	}
	return result
}

// predictLocked returns initial estimates for every id: Kalman prediction for valid points, query position otherwise
func (t *LucasKanadeTracker) predictLocked(query QueryResult) []Point {
	guesses := make([]Point, query.Len())
	copy(guesses, query.Positions)
	ids := make([]int, 0, query.Len())
	positions := make([]Point, 0, query.Len())
	for id, status := range query.Statuses {
		if status == StatusValid {
			ids = append(ids, id)
			positions = append(positions, query.Positions[id])
		}
	}
	predicted := t.motion.Guesses(ids, positions)
	for i, id := range ids {
		guesses[id] = predicted[i]
	}
	return guesses
}

// applyClassificationLocked mirrors classification toggles into active point's snapshot at current frame
func (t *LucasKanadeTracker) applyClassificationLocked(events *eventQueue) {
	if t.classification.Len() == 0 || t.activeID < 0 || t.activeID >= t.store.Len() {
		return
	}
	snap, ok, err := t.store.Snapshot(t.activeID, t.currentFrame)
	if err != nil || !ok {
		return
	}
	status, err := t.classification.Apply(snap.UserStatus)
	if err != nil {
		events.notice(Notice{Kind: NoticeClassification, Message: err.Error(), Frame: t.currentFrame, IDs: []int{t.activeID}})
		return
	}
	snap.UserStatus = status
	// Id was checked above
	_ = t.store.AppendSnapshot(t.activeID, t.currentFrame, snap)
}

// OnPointerReleased routes click: no modifier moves active point, Shift activates nearest point,
// Control creates new point. Other modifier combinations are ignored.
func (t *LucasKanadeTracker) OnPointerReleased(pos Point, modifiers Modifier) {
	var err error
	switch modifiers {
	case ModNone:
		err = t.MoveActivePoint(pos)
	case ModShift:
		_, err = t.SelectPoint(pos)
	case ModControl:
		_, err = t.CreatePoint(pos)
	default:
		return
	}
	if err != nil {
		t.logger.Debug().Err(err).Float64("x", pos.X).Float64("y", pos.Y).Msg("pointer event rejected")
	}
}

// OnKeyPressed invalidates active point on KeyDelete
func (t *LucasKanadeTracker) OnKeyPressed(key Key) bool {
	if key != KeyDelete {
		return false
	}
	if err := t.DeleteActivePoint(); err != nil {
		t.logger.Debug().Err(err).Msg("delete rejected")
	}
	return true
}

// GrabbedKeys returns keys handled by OnKeyPressed
func (t *LucasKanadeTracker) GrabbedKeys() []Key {
	return []Key{KeyDelete}
}

// OnInputSourceChanged drops all trajectories and cached frames and starts new session
func (t *LucasKanadeTracker) OnInputSourceChanged() {
	var events eventQueue
	t.mu.Lock()
	t.store.Reset()
	t.frames.Reset()
	t.motion.Clear()
	t.activeID = -1
	t.currentFrame = -1
	t.session = uuid.New()
	t.logger.Info().Str("session", t.session.String()).Msg("input source changed")
	events.redraw()
	t.mu.Unlock()
	events.dispatch(t.sink)
}

// Close releases cached frames. Tracker stays usable: the next frame starts a fresh cache.
func (t *LucasKanadeTracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames.Reset()
	return nil
}

// SetWindowSize changes correspondence window side. It must be odd and fit into the current frame
func (t *LucasKanadeTracker) SetWindowSize(size int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	maxSize := defaultMaxWinSize
	if gray, _ := t.frames.Current(); gray != nil {
		maxSize = minInt(gray.Width(), gray.Height())
	}
	if size < minWindowSize || size > maxSize || size%2 == 0 {
		return outOfRangef("window size %d must be odd and within [%d, %d]", size, minWindowSize, maxSize)
	}
	t.params.LK.WinSize = size
	t.engine.Params = t.params.LK
	return nil
}

// WindowSize returns current correspondence window side
func (t *LucasKanadeTracker) WindowSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.params.LK.WinSize
}

// SetShouldTrack enables or disables correspondence
func (t *LucasKanadeTracker) SetShouldTrack(on bool) {
	t.mu.Lock()
	t.params.ShouldTrack = on
	t.mu.Unlock()
}

// SetPauseOnInvalidPoint enables or disables pause requests on lost points
func (t *LucasKanadeTracker) SetPauseOnInvalidPoint(on bool) {
	t.mu.Lock()
	t.params.PauseOnInvalidPoint = on
	t.mu.Unlock()
}

// SetColors changes valid and invalid marker colors
func (t *LucasKanadeTracker) SetColors(valid, invalid color.Color) {
	t.mu.Lock()
	t.params.ValidColor = color.RGBAModel.Convert(valid).(color.RGBA)
	t.params.InvalidColor = color.RGBAModel.Convert(invalid).(color.RGBA)
	t.mu.Unlock()
}

// SetClassificationToggle switches classification toggle i; it is applied on the next advancing frame
func (t *LucasKanadeTracker) SetClassificationToggle(i int, on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.classification.SetToggle(i, on)
}

// SetActiveUserStatusBit sets or clears bit i of active point's snapshot at current frame right away
func (t *LucasKanadeTracker) SetActiveUserStatusBit(i int, on bool) error {
	var events eventQueue
	t.mu.Lock()
	err := t.setActiveUserStatusBitLocked(i, on, &events)
	t.mu.Unlock()
	events.dispatch(t.sink)
	return err
}

func (t *LucasKanadeTracker) setActiveUserStatusBitLocked(i int, on bool, events *eventQueue) error {
	if t.activeID < 0 {
		return ErrNoActivePoint
	}
	snap, ok, err := t.store.Snapshot(t.activeID, t.currentFrame)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNoActivePoint, "point %d has no snapshot at frame %d", t.activeID, t.currentFrame)
	}
	status, err := snap.UserStatus.Set(i, on)
	if err != nil {
		return err
	}
	snap.UserStatus = status
	if err := t.store.AppendSnapshot(t.activeID, t.currentFrame, snap); err != nil {
		return err
	}
	events.redraw()
	return nil
}

// ObjectCount returns number of tracked objects
func (t *LucasKanadeTracker) ObjectCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Len()
}

// ActiveID returns active point id, -1 when none
func (t *LucasKanadeTracker) ActiveID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeID
}

// CurrentFrame returns last frame passed to Track, -1 before the first one
func (t *LucasKanadeTracker) CurrentFrame() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentFrame
}

// EarliestFrame returns lowest frame holding any snapshot, -1 when nothing is tracked
func (t *LucasKanadeTracker) EarliestFrame() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.EarliestFrame()
}

// Session returns id of current input session
func (t *LucasKanadeTracker) Session() uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Query returns positions and statuses of every object at frame
func (t *LucasKanadeTracker) Query(frame int) QueryResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Query(frame)
}

// LatestSnapshot returns most recent snapshot of object at or before uptoFrame
func (t *LucasKanadeTracker) LatestSnapshot(objectID, uptoFrame int) (PointSnapshot, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.LatestSnapshot(objectID, uptoFrame)
}

// ActiveSnapshot returns latest snapshot of active point up to current frame
func (t *LucasKanadeTracker) ActiveSnapshot() (PointSnapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.activeID < 0 {
		return PointSnapshot{}, false
	}
	snap, _, ok := t.store.LatestSnapshot(t.activeID, t.currentFrame)
	return snap, ok
}

// History returns trail point sets preceding frame, nearest first
func (t *LucasKanadeTracker) History(frame int) []QueryResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return History(t.store, frame, t.params.HistorySize)
}
