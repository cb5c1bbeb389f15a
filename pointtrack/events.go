package pointtrack

// NoticeKind classifies user facing notifications
type NoticeKind uint8

const (
	// NoticeTooClose - new point rejected because it lies near an existing one
	NoticeTooClose NoticeKind = iota
	// NoticeNothingToSelect - there is no point to activate
	NoticeNothingToSelect
	// NoticeNothingToDelete - active point has no snapshot at current frame
	NoticeNothingToDelete
	// NoticeOutOfRange - active index does not refer to a known object
	NoticeOutOfRange
	// NoticeNotReady - no frame was processed yet
	NoticeNotReady
	// NoticePointsInvalid - some points were lost by correspondence
	NoticePointsInvalid
	// NoticeClassification - user status could not be updated
	NoticeClassification
)

// Notice is non-fatal message to the operator
type Notice struct {
	Kind    NoticeKind
	Message string
	// Frame the notice refers to
	Frame int
	// IDs of affected objects, if any
	IDs []int
}

// EventSink receives requests and notifications produced by a tracker.
// Calls are made after the tracker released its lock, so implementations may call back into it.
type EventSink interface {
	// Notify delivers user facing notice
	Notify(notice Notice)
	// RequestRedraw asks the host to repaint overlay
	RequestRedraw()
	// RequestForcedTracking asks the host to run tracking on the current frame so a gray frame becomes available
	RequestForcedTracking()
	// RequestPause asks the host to stop advancing frames
	RequestPause()
}

// NopSink ignores every event
type NopSink struct{}

func (NopSink) Notify(Notice)          {}
func (NopSink) RequestRedraw()         {}
func (NopSink) RequestForcedTracking() {}
func (NopSink) RequestPause()          {}

type eventKind uint8

const (
	eventNotice eventKind = iota
	eventRedraw
	eventForceTracking
	eventPause
)

type pendingEvent struct {
	kind   eventKind
	notice Notice
}

// eventQueue buffers events raised while tracker lock is held
type eventQueue []pendingEvent

func (q *eventQueue) notice(n Notice) {
	*q = append(*q, pendingEvent{kind: eventNotice, notice: n})
}

func (q *eventQueue) redraw() {
	*q = append(*q, pendingEvent{kind: eventRedraw})
}

func (q *eventQueue) forceTracking() {
	*q = append(*q, pendingEvent{kind: eventForceTracking})
}

func (q *eventQueue) pause() {
	*q = append(*q, pendingEvent{kind: eventPause})
}

func (q eventQueue) dispatch(sink EventSink) {
	for _, ev := range q {
		switch ev.kind {
		case eventNotice:
			sink.Notify(ev.notice)
		case eventRedraw:
			sink.RequestRedraw()
		case eventForceTracking:
			sink.RequestForcedTracking()
		case eventPause:
			sink.RequestPause()
		}
	}
}
