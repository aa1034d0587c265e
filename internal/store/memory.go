package store

import (
	"errors"
	"sync"
	"time"

	"github.com/solarwatch/panel-insights/internal/prediction"
)

var (
	// ErrNotFound is returned when no snapshots exist for a panel.
	ErrNotFound = errors.New("no snapshots for panel")
)

// PanelSnapshot is one stored fleet observation: the sampled environment
// and the prediction computed from it.
type PanelSnapshot struct {
	PanelID   string                       `json:"panelId"`
	Timestamp time.Time                    `json:"timestamp"` // always UTC
	Sample    prediction.EnvironmentSample `json:"sample"`
	Result    prediction.EfficiencyResult  `json:"result"`
}

// snapshotHistory holds a time-ordered list of snapshots for one panel.
type snapshotHistory struct {
	snapshots []PanelSnapshot
}

// MemoryStore is a concurrency-safe in-memory snapshot store, keyed by
// panel id, with optional count and age retention.
type MemoryStore struct {
	mu sync.RWMutex

	data map[string]*snapshotHistory

	maxHistory int           // max snapshots per panel (<=0 = unlimited)
	maxAge     time.Duration // max snapshot age (<=0 = unlimited)
}

// NewMemoryStore creates a MemoryStore with the given retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*snapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveSnapshot appends a snapshot for a panel and enforces retention.
func (s *MemoryStore) SaveSnapshot(snapshot PanelSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[snapshot.PanelID]
	if !ok {
		history = &snapshotHistory{}
		s.data[snapshot.PanelID] = history
	}

	history.snapshots = append(history.snapshots, snapshot)

	if s.maxHistory > 0 && len(history.snapshots) > s.maxHistory {
		over := len(history.snapshots) - s.maxHistory
		history.snapshots = history.snapshots[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.snapshots); i++ {
			if !history.snapshots[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history.snapshots) {
			history.snapshots = history.snapshots[i:]
		}
	}
}

// GetLatest returns the most recent snapshot for a panel.
func (s *MemoryStore) GetLatest(panelID string) (PanelSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[panelID]
	if !ok || len(history.snapshots) == 0 {
		return PanelSnapshot{}, ErrNotFound
	}
	return history.snapshots[len(history.snapshots)-1], nil
}

// GetRange returns all snapshots for a panel between from and to inclusive.
func (s *MemoryStore) GetRange(panelID string, from, to time.Time) ([]PanelSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[panelID]
	if !ok || len(history.snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []PanelSnapshot
	for _, snap := range history.snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

// PanelIDs returns the ids of all panels with at least one snapshot.
func (s *MemoryStore) PanelIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id, h := range s.data {
		if len(h.snapshots) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
