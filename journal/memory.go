// journal/memory.go
package journal

import "sync"

// Memory keeps every record in append order in process memory. It is the
// backend for tests and for callers that only want the run summary and no
// artifact on disk.
type Memory struct {
	mu     sync.Mutex
	fills  []FillRecord
	snaps  []SnapshotRecord
	closed bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordFill(r FillRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fills = append(m.fills, r)
	return nil
}

func (m *Memory) RecordSnapshot(s SnapshotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, s)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Fills returns a copy of the recorded history in append order.
func (m *Memory) Fills() []FillRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FillRecord, len(m.fills))
	copy(out, m.fills)
	return out
}

// Snapshots returns a copy of the valuation series in append order.
func (m *Memory) Snapshots() []SnapshotRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SnapshotRecord, len(m.snaps))
	copy(out, m.snaps)
	return out
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
