package pointtrack

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestTrajectoryStoreCreateObject(t *testing.T) {
	store := NewTrajectoryStore()
	for want := 0; want < 4; want++ {
		id := store.CreateObject()
		if id != want {
			t.Errorf("Expected dense id %d, got %d", want, id)
		}
	}
	if store.Len() != 4 {
		t.Errorf("Expected 4 objects, got %d", store.Len())
	}
}

func TestTrajectoryStoreAppendUnknown(t *testing.T) {
	store := NewTrajectoryStore()
	store.CreateObject()
	err := store.Append(1, 0, Point{X: 1, Y: 1}, true)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	err = store.Append(-1, 0, Point{X: 1, Y: 1}, true)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange for negative id, got %v", err)
	}
}

func TestTrajectoryStoreQuery(t *testing.T) {
	store := NewTrajectoryStore()
	a := store.CreateObject()
	b := store.CreateObject()
	c := store.CreateObject()
	mustAppend(t, store, a, 5, Point{X: 10, Y: 20}, true)
	mustAppend(t, store, b, 5, Point{X: 30, Y: 40}, false)
	mustAppend(t, store, c, 7, Point{X: 50, Y: 60}, true)

	result := store.Query(5)
	if result.Len() != store.Len() || len(result.Statuses) != store.Len() {
		t.Fatalf("Query length mismatch: %d positions, %d statuses, %d objects", len(result.Positions), len(result.Statuses), store.Len())
	}
	expectedStatuses := []ExistenceStatus{StatusValid, StatusInvalid, StatusNonExisting}
	if !reflect.DeepEqual(result.Statuses, expectedStatuses) {
		t.Errorf("Expected statuses %v, got %v", expectedStatuses, result.Statuses)
	}
	if result.Positions[a] != (Point{X: 10, Y: 20}) {
		t.Errorf("Valid position should be emitted as is, got %v", result.Positions[a])
	}
	if result.Positions[b] != (Point{X: 30, Y: 40}).Add(InvalidOffset) {
		t.Errorf("Invalid position should be offset, got %v", result.Positions[b])
	}
	if result.Positions[c] != NonExistingPosition {
		t.Errorf("Missing object should get sentinel, got %v", result.Positions[c])
	}
	truePos, ok := result.TruePosition(b)
	if !ok || truePos != (Point{X: 30, Y: 40}) {
		t.Errorf("True position of invalid point should be restored, got %v (%v)", truePos, ok)
	}
	if _, ok := result.TruePosition(c); ok {
		t.Error("Non-existing object should not have true position")
	}
}

func TestTrajectoryStoreQueryIdempotent(t *testing.T) {
	store := NewTrajectoryStore()
	for i := 0; i < 5; i++ {
		id := store.CreateObject()
		mustAppend(t, store, id, i, Point{X: float64(i), Y: float64(2 * i)}, i%2 == 0)
	}
	for frame := -1; frame < 6; frame++ {
		first := store.Query(frame)
		second := store.Query(frame)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Query(%d) is not idempotent: %v vs %v", frame, first, second)
		}
		if first.Len() != store.Len() {
			t.Errorf("Query(%d) length %d, expected %d", frame, first.Len(), store.Len())
		}
	}
}

func TestTrajectoryStoreLatestSnapshot(t *testing.T) {
	store := NewTrajectoryStore()
	id := store.CreateObject()
	mustAppend(t, store, id, 2, Point{X: 1, Y: 1}, true)
	mustAppend(t, store, id, 9, Point{X: 3, Y: 3}, true)
	mustAppend(t, store, id, 4, Point{X: 2, Y: 2}, false)

	if _, _, ok := store.LatestSnapshot(id, 1); ok {
		t.Error("No snapshot expected before frame 2")
	}
	snap, frame, ok := store.LatestSnapshot(id, 8)
	if !ok || frame != 4 || snap.Position != (Point{X: 2, Y: 2}) || snap.Valid {
		t.Errorf("Expected invalid snapshot at frame 4, got %+v at %d (%v)", snap, frame, ok)
	}
	snap, frame, ok = store.LatestSnapshot(id, 100)
	if !ok || frame != 9 || snap.Position != (Point{X: 3, Y: 3}) {
		t.Errorf("Expected snapshot at frame 9, got %+v at %d (%v)", snap, frame, ok)
	}
	if _, _, ok := store.LatestSnapshot(42, 100); ok {
		t.Error("Unknown object should have no snapshot")
	}
	obj, err := store.Object(id)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(obj.Frames(), []int{2, 4, 9}) {
		t.Errorf("Frames should be sorted, got %v", obj.Frames())
	}
	if store.EarliestFrame() != 2 {
		t.Errorf("Expected earliest frame 2, got %d", store.EarliestFrame())
	}
}

func TestTrajectoryStoreAppendKeepsUserStatus(t *testing.T) {
	store := NewTrajectoryStore()
	id := store.CreateObject()
	err := store.AppendSnapshot(id, 0, PointSnapshot{Position: Point{X: 1, Y: 1}, Valid: true, UserStatus: 0b101})
	if err != nil {
		t.Fatal(err)
	}
	mustAppend(t, store, id, 1, Point{X: 2, Y: 2}, true)
	snap, ok, err := store.Snapshot(id, 1)
	if err != nil || !ok {
		t.Fatalf("Snapshot at frame 1 expected, got %v (err %v)", ok, err)
	}
	if snap.UserStatus != 0b101 {
		t.Errorf("User status should carry over, got %b", snap.UserStatus)
	}
}

func TestTrajectoryStoreRecords(t *testing.T) {
	store := NewTrajectoryStore()
	a := store.CreateObject()
	b := store.CreateObject()
	mustAppend(t, store, b, 0, Point{X: 5, Y: 5}, true)
	mustAppend(t, store, a, 1, Point{X: 1, Y: 1}, true)
	mustAppend(t, store, a, 0, Point{X: 0, Y: 0}, true)
	mustAppend(t, store, b, 1, Point{X: 6, Y: 6}, false)

	records := store.Records()
	if len(records) != 3 {
		t.Fatalf("Expected 3 valid records, got %d", len(records))
	}
	order := [][2]int{{0, a}, {0, b}, {1, a}}
	for i, rec := range records {
		if rec.Frame != order[i][0] || rec.ObjectID != order[i][1] {
			t.Errorf("Record %d: expected frame %d object %d, got frame %d object %d", i, order[i][0], order[i][1], rec.Frame, rec.ObjectID)
		}
	}
}

func TestTrajectoryStoreReset(t *testing.T) {
	store := NewTrajectoryStore()
	id := store.CreateObject()
	mustAppend(t, store, id, 3, Point{X: 1, Y: 1}, true)
	dropped := store.objects
	store.Reset()
	if store.Len() != 0 || store.EarliestFrame() != -1 {
		t.Errorf("Store should be empty after reset, got %d objects, earliest %d", store.Len(), store.EarliestFrame())
	}
	if cap(store.objects) != 0 {
		t.Errorf("Reset must release previous objects, capacity %d kept", cap(store.objects))
	}
	if id := store.CreateObject(); id != 0 {
		t.Errorf("Ids should restart from 0 after reset, got %d", id)
	}
	if dropped[0] == store.objects[0] {
		t.Error("New objects must not reuse storage of dropped ones")
	}
	if _, ok, _ := store.Snapshot(0, 3); ok {
		t.Error("New object must not inherit history of dropped one")
	}
}

func mustAppend(t *testing.T, store *TrajectoryStore, id, frame int, pos Point, valid bool) {
	t.Helper()
	if err := store.Append(id, frame, pos, valid); err != nil {
		t.Fatalf("Append(%d, %d) failed: %v", id, frame, err)
	}
}
