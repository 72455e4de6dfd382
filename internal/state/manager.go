package state

import (
	"sync"
	"time"
)

// Manager handles harvest state updates with concurrency safety; the
// scheduler and an interactive run may both touch it.
type Manager struct {
	mu       sync.Mutex
	state    *HarvestState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string) (*Manager, error) {
	s, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{state: s, filePath: filePath}, nil
}

// GetState returns a copy of the current state.
func (m *Manager) GetState() HarvestState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// RecordRun updates the state after a successful harvest and persists it.
func (m *Manager) RecordRun(outputFile string, records int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.LastRunAt = at
	m.state.LastOutput = outputFile
	m.state.LastRecords = records
	m.state.TotalRuns++
	m.state.TotalRecords += records

	return SaveState(m.filePath, m.state)
}

// RanToday reports whether a run already completed on the given day.
// The scheduler uses this to skip duplicate same-day harvests.
func (m *Manager) RanToday(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.LastRunAt.IsZero() {
		return false
	}
	y1, m1, d1 := m.state.LastRunAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
