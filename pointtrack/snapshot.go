package pointtrack

// ExistenceStatus classifies a tracked object at a queried frame
type ExistenceStatus uint8

const (
	// StatusValid means snapshot exists and point can be tracked
	StatusValid ExistenceStatus = iota
	// StatusInvalid means snapshot exists but the point was lost or invalidated and must not be tracked
	StatusInvalid
	// StatusNonExisting means object has no snapshot at the frame (e.g. it was created later)
	StatusNonExisting
)

func (s ExistenceStatus) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusNonExisting:
		return "non-existing"
	default:
		return "unknown"
	}
}

var (
	// InvalidOffset is added to positions of invalid snapshots emitted by Query.
	// It is far outside any image so correspondence never recovers such points.
	InvalidOffset = Point{X: 1 << 20, Y: 1 << 20}
	// NonExistingPosition is emitted by Query for objects without snapshot at the frame
	NonExistingPosition = Point{X: -1, Y: -1}
)

// PointSnapshot is recorded state of one tracked point at one frame
type PointSnapshot struct {
	Position Point
	Valid    bool
	// Manual is true when snapshot was authored by operator (create or move) rather than by correspondence
	Manual     bool
	UserStatus UserStatus
}

// QueryResult holds positions and statuses of every known object at a frame.
// Index of both slices equals object id.
type QueryResult struct {
	Frame     int
	Positions []Point
	Statuses  []ExistenceStatus
}

// Len returns number of objects in result
func (qr QueryResult) Len() int {
	return len(qr.Positions)
}

// TruePosition returns last known position of object i with invalid offset removed.
// Second value is false for non-existing objects.
func (qr QueryResult) TruePosition(i int) (Point, bool) {
	switch qr.Statuses[i] {
	case StatusValid:
		return qr.Positions[i], true
	case StatusInvalid:
		return qr.Positions[i].Sub(InvalidOffset), true
	default:
		return NonExistingPosition, false
	}
}
