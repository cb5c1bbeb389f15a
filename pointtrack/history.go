package pointtrack

// MaxHistorySize bounds trail window
const MaxHistorySize = 150

// History returns point sets of frames frame-1 down to frame-window+1, nearest first.
// Negative frames are omitted and window is clamped to MaxHistorySize. Store is never mutated.
func History(store *TrajectoryStore, frame, window int) []QueryResult {
	window = clampInt(window, 0, MaxHistorySize)
	if window <= 1 || frame <= 0 {
		return []QueryResult{}
	}
	oldest := maxInt(0, frame-window+1)
	sets := make([]QueryResult, 0, frame-oldest)
	for f := frame - 1; f >= oldest; f-- {
		sets = append(sets, store.Query(f))
	}
	return sets
}
