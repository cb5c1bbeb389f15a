package pointtrack

import (
	"sort"
)

// TrackedObject is one physical point being tracked.
// ID equals its index in owning store and is never reused.
type TrackedObject struct {
	ID      int
	history map[int]PointSnapshot
	// frames are sorted frame numbers present in history
	frames []int
}

func newTrackedObject(id int) *TrackedObject {
	return &TrackedObject{
		ID:      id,
		history: make(map[int]PointSnapshot),
		frames:  make([]int, 0, 150),
	}
}

func (obj *TrackedObject) put(frame int, snap PointSnapshot) {
	if _, ok := obj.history[frame]; !ok {
		idx := sort.SearchInts(obj.frames, frame)
		obj.frames = append(obj.frames, 0)
		copy(obj.frames[idx+1:], obj.frames[idx:])
		obj.frames[idx] = frame
	}
	obj.history[frame] = snap
}

// Snapshot returns snapshot at exact frame
func (obj *TrackedObject) Snapshot(frame int) (PointSnapshot, bool) {
	snap, ok := obj.history[frame]
	return snap, ok
}

// Latest returns most recent snapshot at or before uptoFrame and its frame number
func (obj *TrackedObject) Latest(uptoFrame int) (PointSnapshot, int, bool) {
	idx := sort.SearchInts(obj.frames, uptoFrame+1)
	if idx == 0 {
		return PointSnapshot{}, 0, false
	}
	frame := obj.frames[idx-1]
	return obj.history[frame], frame, true
}

// Frames returns copy of frame numbers with snapshots, ascending
func (obj *TrackedObject) Frames() []int {
	out := make([]int, len(obj.frames))
	copy(out, obj.frames)
	return out
}

// TrajectoryStore is per-object, frame-indexed history of point snapshots.
// It is not safe for concurrent use: the owning tracker serializes access.
type TrajectoryStore struct {
	objects []*TrackedObject
	// earliestFrame is the lowest frame with any snapshot, -1 when store is empty
	earliestFrame int
}

// NewTrajectoryStore creates empty store
func NewTrajectoryStore() *TrajectoryStore {
	return &TrajectoryStore{
		objects:       make([]*TrackedObject, 0),
		earliestFrame: -1,
	}
}

// Len returns number of known objects
func (store *TrajectoryStore) Len() int {
	return len(store.objects)
}

// Reset drops every object
func (store *TrajectoryStore) Reset() {
	// Fresh slice so previous objects can be collected
	store.objects = make([]*TrackedObject, 0)
	store.earliestFrame = -1
}

// EarliestFrame returns lowest frame with a snapshot, -1 when there are none
func (store *TrajectoryStore) EarliestFrame() int {
	return store.earliestFrame
}

// CreateObject appends new object at next dense id
func (store *TrajectoryStore) CreateObject() int {
	id := len(store.objects)
	store.objects = append(store.objects, newTrackedObject(id))
	return id
}

// Object returns object by id
func (store *TrajectoryStore) Object(objectID int) (*TrackedObject, error) {
	if objectID < 0 || objectID >= len(store.objects) {
		return nil, outOfRangef("object id %d (count %d)", objectID, len(store.objects))
	}
	return store.objects[objectID], nil
}

// Append inserts or overwrites snapshot for (objectID, frame) keeping user status of the snapshot being replaced
func (store *TrajectoryStore) Append(objectID, frame int, position Point, valid bool) error {
	obj, err := store.Object(objectID)
	if err != nil {
		return err
	}
	snap := PointSnapshot{
		Position: position,
		Valid:    valid,
	}
	if prev, _, ok := obj.Latest(frame); ok {
		snap.UserStatus = prev.UserStatus
	}
	store.put(obj, frame, snap)
	return nil
}

// AppendSnapshot replaces record for (objectID, frame) wholesale
func (store *TrajectoryStore) AppendSnapshot(objectID, frame int, snap PointSnapshot) error {
	obj, err := store.Object(objectID)
	if err != nil {
		return err
	}
	store.put(obj, frame, snap)
	return nil
}

func (store *TrajectoryStore) put(obj *TrackedObject, frame int, snap PointSnapshot) {
	obj.put(frame, snap)
	if store.earliestFrame < 0 || frame < store.earliestFrame {
		store.earliestFrame = frame
	}
}

// Snapshot returns snapshot of object at exact frame
func (store *TrajectoryStore) Snapshot(objectID, frame int) (PointSnapshot, bool, error) {
	obj, err := store.Object(objectID)
	if err != nil {
		return PointSnapshot{}, false, err
	}
	snap, ok := obj.Snapshot(frame)
	return snap, ok, nil
}

// LatestSnapshot returns most recent snapshot of object at or before uptoFrame together with its frame
func (store *TrajectoryStore) LatestSnapshot(objectID, uptoFrame int) (PointSnapshot, int, bool) {
	obj, err := store.Object(objectID)
	if err != nil {
		return PointSnapshot{}, 0, false
	}
	return obj.Latest(uptoFrame)
}

// Query returns position and existence status of every known object at frame, in id order.
// Invalid snapshots are emitted shifted by InvalidOffset, missing ones as NonExistingPosition.
func (store *TrajectoryStore) Query(frame int) QueryResult {
	result := QueryResult{
		Frame:     frame,
		Positions: make([]Point, len(store.objects)),
		Statuses:  make([]ExistenceStatus, len(store.objects)),
	}
	for i, obj := range store.objects {
		snap, ok := obj.history[frame]
		switch {
		case !ok:
			result.Positions[i] = NonExistingPosition
			result.Statuses[i] = StatusNonExisting
		case snap.Valid:
			result.Positions[i] = snap.Position
			result.Statuses[i] = StatusValid
		default:
			result.Positions[i] = snap.Position.Add(InvalidOffset)
			result.Statuses[i] = StatusInvalid
		}
	}
	assertSameLength("query", len(result.Positions), len(result.Statuses), len(store.objects))
	return result
}

// Record is one valid snapshot with its coordinates in (frame, object) space
type Record struct {
	Frame    int
	ObjectID int
	Snapshot PointSnapshot
}

// Records returns every valid snapshot ordered by frame, then by object id
func (store *TrajectoryStore) Records() []Record {
	records := make([]Record, 0)
	for _, obj := range store.objects {
		for _, frame := range obj.frames {
			snap := obj.history[frame]
			if !snap.Valid {
				continue
			}
			records = append(records, Record{Frame: frame, ObjectID: obj.ID, Snapshot: snap})
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Frame != records[j].Frame {
			return records[i].Frame < records[j].Frame
		}
		return records[i].ObjectID < records[j].ObjectID
	})
	return records
}
