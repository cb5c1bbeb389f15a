package pointtrack

// Correspondence is outcome of one frame-to-frame correspondence step.
// Index of every slice equals object id.
type Correspondence struct {
	// Frame the positions belong to
	Frame int
	// Positions are true (non offset) positions at Frame; NonExistingPosition for objects absent at previous frame
	Positions []Point
	// Statuses at Frame: Valid when tracked, Invalid when lost now or already invalid before, NonExisting when untouched
	Statuses []ExistenceStatus
	// Lost lists ids which failed to track during this step
	Lost []int
}

// SomeInvalid reports whether any point was lost during this step
func (c Correspondence) SomeInvalid() bool {
	return len(c.Lost) > 0
}

// CorrespondenceEngine computes new point positions between two grayscale frames
type CorrespondenceEngine struct {
	Params LKParams
}

// NewCorrespondenceEngine creates engine with given Lucas-Kanade parameters
func NewCorrespondenceEngine(params LKParams) *CorrespondenceEngine {
	return &CorrespondenceEngine{
		Params: params,
	}
}

// Correspond tracks every Valid entry of query (positions at frame query.Frame in prev) into next.
// Non-existing entries are never tracked but keep their slot. Invalid entries are carried over
// unchanged and stay invalid. Tracked positions are pinned to image borders.
// guesses is either nil or holds an initial estimate for every id.
func (ce *CorrespondenceEngine) Correspond(prev, next *GrayImage, query QueryResult, guesses []Point) Correspondence {
	assertSameLength("correspondence query", len(query.Positions), len(query.Statuses))
	if guesses != nil {
		assertSameLength("correspondence guesses", len(query.Positions), len(guesses))
	}
	n := query.Len()
	result := Correspondence{
		Frame:     query.Frame + 1,
		Positions: make([]Point, n),
		Statuses:  make([]ExistenceStatus, n),
		Lost:      make([]int, 0),
	}

	batchIDs := make([]int, 0, n)
	batchPts := make([]Point, 0, n)
	var batchGuesses []Point
	if guesses != nil {
		batchGuesses = make([]Point, 0, n)
	}
	for id := 0; id < n; id++ {
		switch query.Statuses[id] {
		case StatusValid:
			batchIDs = append(batchIDs, id)
			batchPts = append(batchPts, query.Positions[id])
			if guesses != nil {
				batchGuesses = append(batchGuesses, guesses[id])
			}
			// Placeholder until batch result is scattered back
			result.Positions[id] = query.Positions[id]
			result.Statuses[id] = StatusValid
		case StatusInvalid:
			result.Positions[id], _ = query.TruePosition(id)
			result.Statuses[id] = StatusInvalid
		default:
			result.Positions[id] = NonExistingPosition
			result.Statuses[id] = StatusNonExisting
		}
	}
	if len(batchIDs) == 0 {
		return result
	}

	size := next.Size()
	trackedPts, status := CalcOpticalFlowPyrLK(prev, next, batchPts, batchGuesses, ce.Params)
	assertSameLength("correspondence batch", len(batchIDs), len(trackedPts), len(status))

	for i, id := range batchIDs {
		if !status[i] {
			// Lost points keep last known position
			result.Statuses[id] = StatusInvalid
			result.Lost = append(result.Lost, id)
			continue
		}
		// Known limitation: a point driven off-frame is pinned to the border and indistinguishable from one sitting there
		result.Positions[id] = size.Clamp(trackedPts[i])
	}
	return result
}
