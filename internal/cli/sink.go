package cli

import (
	"sync"

	"github.com/LdDl/pointtrack-go/pointtrack"
	"github.com/rs/zerolog"
)

// logSink reports tracker notices to the log and remembers pause requests
type logSink struct {
	logger zerolog.Logger

	mu     sync.Mutex
	paused bool
}

func (ls *logSink) Notify(notice pointtrack.Notice) {
	ls.logger.Warn().Int("frame", notice.Frame).Ints("ids", notice.IDs).Msg(notice.Message)
}

func (ls *logSink) RequestRedraw() {}

func (ls *logSink) RequestForcedTracking() {
	ls.logger.Debug().Msg("forced tracking requested")
}

func (ls *logSink) RequestPause() {
	ls.mu.Lock()
	ls.paused = true
	ls.mu.Unlock()
}

func (ls *logSink) Paused() bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.paused
}
