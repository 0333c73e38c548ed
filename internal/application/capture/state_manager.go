package capture

import (
	"sync"
	"time"

	"github.com/penwyp/go-error-capture/internal/core/model"
	"github.com/penwyp/go-error-capture/internal/util"
)

// Stats summarizes a capture run.
type Stats struct {
	StartedAt    time.Time
	Polls        int
	SkippedPolls int
	LinesRead    int
	Position     int64
	Records      int
	LikelyReal   int
	BySource     map[model.ScriptSource]int
	LastRecord   *model.ErrorRecord
	LastRecordAt time.Time
}

// StateManager tracks capture progress in a thread-safe manner
type StateManager struct {
	mu    sync.RWMutex
	stats Stats
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{
		stats: Stats{
			StartedAt: util.GetTimeProvider().Now(),
			BySource:  make(map[model.ScriptSource]int),
		},
	}
}

func (sm *StateManager) RecordCycle(linesRead int, skipped bool, position int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.stats.Polls++
	if skipped {
		sm.stats.SkippedPolls++
	}
	sm.stats.LinesRead += linesRead
	sm.stats.Position = position
}

func (sm *StateManager) RecordError(record model.ErrorRecord) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.stats.Records++
	if record.IsLikelyRealError {
		sm.stats.LikelyReal++
	}
	sm.stats.BySource[record.Source]++
	sm.stats.LastRecord = &record
	sm.stats.LastRecordAt = util.GetTimeProvider().Now()
}

// Snapshot returns a copy that is safe to read while capture continues.
func (sm *StateManager) Snapshot() Stats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s := sm.stats
	s.BySource = make(map[model.ScriptSource]int, len(sm.stats.BySource))
	for k, v := range sm.stats.BySource {
		s.BySource[k] = v
	}
	if sm.stats.LastRecord != nil {
		last := *sm.stats.LastRecord
		s.LastRecord = &last
	}
	return s
}
