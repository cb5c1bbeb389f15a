package pointtrack

import (
	"math"

	"github.com/pkg/errors"
)

// CreatePoint adds new tracked point at pos on current frame and makes it active.
// Position is refined to sub-pixel accuracy with the correspondence window.
func (t *LucasKanadeTracker) CreatePoint(pos Point) (int, error) {
	var events eventQueue
	t.mu.Lock()
	id, err := t.createPointLocked(pos, &events)
	t.mu.Unlock()
	events.dispatch(t.sink)
	return id, err
}

func (t *LucasKanadeTracker) createPointLocked(pos Point, events *eventQueue) (int, error) {
	gray, _ := t.frames.Current()
	if gray == nil {
		events.forceTracking()
		events.notice(Notice{Kind: NoticeNotReady, Message: "no frame processed yet, tracking is forced", Frame: t.currentFrame})
		return -1, ErrNotReady
	}
	pos = t.clampToFrameLocked(gray, pos)
	if near, ok := t.nearestValidLocked(pos); ok {
		events.notice(Notice{Kind: NoticeTooClose, Message: "point is too close to an existing one", Frame: t.currentFrame, IDs: []int{near}})
		return -1, errors.Wrapf(ErrTooClose, "point %d", near)
	}
	refined := CornerSubPix(gray, []Point{pos}, t.params.LK.WinSize/2, t.params.SubPixCriteria)[0]
	refined = gray.Size().Clamp(refined)

	id := t.store.CreateObject()
	snap := PointSnapshot{
		Position: refined,
		Valid:    true,
		Manual:   true,
	}
	if err := t.store.AppendSnapshot(id, t.currentFrame, snap); err != nil {
		panic(ContractViolation{What: err.Error()})
	}
	if t.params.MotionPrediction {
		t.motion.Reset(id, refined)
	}
	t.activeID = id
	t.logger.Info().Str("session", t.session.String()).Int("frame", t.currentFrame).Int("id", id).Float64("x", refined.X).Float64("y", refined.Y).Msg("point created")
	events.redraw()
	return id, nil
}

// clampToFrameLocked pins click position into gray
func (t *LucasKanadeTracker) clampToFrameLocked(gray *GrayImage, pos Point) Point {
	size := gray.Size()
	if size.Contains(pos) {
		return pos
	}
	clamped := size.Clamp(pos)
	t.logger.Debug().Int("frame", t.currentFrame).Float64("x", pos.X).Float64("y", pos.Y).Float64("clamped_x", clamped.X).Float64("clamped_y", clamped.Y).Msg("click outside frame")
	return clamped
}

// nearestValidLocked returns id of a valid point at current frame lying within proximity threshold of pos
func (t *LucasKanadeTracker) nearestValidLocked(pos Point) (int, bool) {
	query := t.store.Query(t.currentFrame)
	for id, status := range query.Statuses {
		if status != StatusValid {
			continue
		}
		if euclideanDistance(query.Positions[id], pos) <= t.params.ProximityThreshold {
			return id, true
		}
	}
	return -1, false
}

// SelectPoint activates point nearest to pos at current frame. Ties go to the lowest id.
func (t *LucasKanadeTracker) SelectPoint(pos Point) (int, error) {
	var events eventQueue
	t.mu.Lock()
	id, err := t.selectPointLocked(pos, &events)
	t.mu.Unlock()
	events.dispatch(t.sink)
	return id, err
}

func (t *LucasKanadeTracker) selectPointLocked(pos Point, events *eventQueue) (int, error) {
	query := t.store.Query(t.currentFrame)
	bestID := -1
	bestDistance := math.MaxFloat64
	for id := range query.Statuses {
		truePos, ok := query.TruePosition(id)
		if !ok {
			continue
		}
		d := euclideanDistance(truePos, pos)
		if d < bestDistance {
			bestDistance = d
			bestID = id
		}
	}
	t.activeID = bestID
	events.redraw()
	if bestID < 0 {
		events.notice(Notice{Kind: NoticeNothingToSelect, Message: "there is no point to select", Frame: t.currentFrame})
		return -1, ErrNothingToSelect
	}
	t.logger.Debug().Str("session", t.session.String()).Int("frame", t.currentFrame).Int("id", bestID).Msg("point selected")
	return bestID, nil
}

// MoveActivePoint places active point at pos on current frame, overriding correspondence output.
// Without active point it does nothing and returns ErrNoActivePoint.
func (t *LucasKanadeTracker) MoveActivePoint(pos Point) error {
	var events eventQueue
	t.mu.Lock()
	err := t.moveActivePointLocked(pos, &events)
	t.mu.Unlock()
	events.dispatch(t.sink)
	return err
}

func (t *LucasKanadeTracker) moveActivePointLocked(pos Point, events *eventQueue) error {
	if t.activeID < 0 {
		return ErrNoActivePoint
	}
	if t.activeID >= t.store.Len() {
		err := outOfRangef("active point %d (count %d)", t.activeID, t.store.Len())
		events.notice(Notice{Kind: NoticeOutOfRange, Message: err.Error(), Frame: t.currentFrame, IDs: []int{t.activeID}})
		return err
	}
	gray, _ := t.frames.Current()
	if gray == nil {
		events.forceTracking()
		events.notice(Notice{Kind: NoticeNotReady, Message: "no frame processed yet, tracking is forced", Frame: t.currentFrame})
		return ErrNotReady
	}
	pos = t.clampToFrameLocked(gray, pos)
	snap := PointSnapshot{
		Position: pos,
		Valid:    true,
		Manual:   true,
	}
	if prev, _, ok := t.store.LatestSnapshot(t.activeID, t.currentFrame); ok {
		snap.UserStatus = prev.UserStatus
	}
	if err := t.store.AppendSnapshot(t.activeID, t.currentFrame, snap); err != nil {
		return err
	}
	if t.params.MotionPrediction {
		t.motion.Reset(t.activeID, pos)
	}
	t.logger.Info().Str("session", t.session.String()).Int("frame", t.currentFrame).Int("id", t.activeID).Float64("x", pos.X).Float64("y", pos.Y).Msg("point moved")
	events.redraw()
	return nil
}

// DeleteActivePoint marks active point invalid at current frame. Earlier snapshots are kept.
func (t *LucasKanadeTracker) DeleteActivePoint() error {
	var events eventQueue
	t.mu.Lock()
	err := t.deleteActivePointLocked(&events)
	t.mu.Unlock()
	events.dispatch(t.sink)
	return err
}

func (t *LucasKanadeTracker) deleteActivePointLocked(events *eventQueue) error {
	if t.activeID < 0 {
		return ErrNoActivePoint
	}
	snap, ok, err := t.store.Snapshot(t.activeID, t.currentFrame)
	if err != nil {
		events.notice(Notice{Kind: NoticeOutOfRange, Message: err.Error(), Frame: t.currentFrame, IDs: []int{t.activeID}})
		return err
	}
	if !ok {
		events.notice(Notice{Kind: NoticeNothingToDelete, Message: "active point has no snapshot at current frame", Frame: t.currentFrame, IDs: []int{t.activeID}})
		return errors.Wrapf(ErrNothingToDelete, "point %d at frame %d", t.activeID, t.currentFrame)
	}
	snap.Valid = false
	snap.Manual = true
	if err := t.store.AppendSnapshot(t.activeID, t.currentFrame, snap); err != nil {
		return err
	}
	t.motion.Forget(t.activeID)
	t.logger.Info().Str("session", t.session.String()).Int("frame", t.currentFrame).Int("id", t.activeID).Msg("point deleted")
	events.redraw()
	return nil
}

// AutoSeed detects strong corners on current frame and creates a point for each of them
// that is not too close to an existing valid point. At most limit points are created when limit > 0.
func (t *LucasKanadeTracker) AutoSeed(limit int) ([]int, error) {
	var events eventQueue
	t.mu.Lock()
	ids, err := t.autoSeedLocked(limit, &events)
	t.mu.Unlock()
	events.dispatch(t.sink)
	return ids, err
}

func (t *LucasKanadeTracker) autoSeedLocked(limit int, events *eventQueue) ([]int, error) {
	gray, _ := t.frames.Current()
	if gray == nil {
		events.forceTracking()
		events.notice(Notice{Kind: NoticeNotReady, Message: "no frame processed yet, tracking is forced", Frame: t.currentFrame})
		return nil, ErrNotReady
	}
	params := t.params.Features
	if limit > 0 && (params.MaxCorners <= 0 || limit < params.MaxCorners) {
		params.MaxCorners = limit
	}
	corners := GoodFeaturesToTrack(gray, params)
	corners = CornerSubPix(gray, corners, params.SubPixHalfWin, t.params.SubPixCriteria)
	ids := make([]int, 0, len(corners))
	for _, corner := range corners {
		corner = gray.Size().Clamp(corner)
		if _, ok := t.nearestValidLocked(corner); ok {
			continue
		}
		id := t.store.CreateObject()
		if err := t.store.AppendSnapshot(id, t.currentFrame, PointSnapshot{Position: corner, Valid: true}); err != nil {
			panic(ContractViolation{What: err.Error()})
		}
		if t.params.MotionPrediction {
			t.motion.Reset(id, corner)
		}
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		t.activeID = ids[len(ids)-1]
		events.redraw()
	}
	t.logger.Info().Str("session", t.session.String()).Int("frame", t.currentFrame).Int("points", len(ids)).Msg("points seeded")
	return ids, nil
}
