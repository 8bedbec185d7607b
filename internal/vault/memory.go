package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryVault keeps snapshots in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name      string
	snapshots map[string][]byte
	modTimes  map[string]time.Time
	now       func() time.Time
	mu        sync.RWMutex
}

func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string][]byte),
		modTimes:  make(map[string]time.Time),
		now:       time.Now,
	}
}

func (m *MemoryVault) Name() string { return m.name }

func (m *MemoryVault) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := validName(name); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snapshots[name]; ok {
		return fmt.Errorf("snapshot %s already exists", name)
	}
	m.snapshots[name] = data
	m.modTimes[name] = m.now()
	return nil
}

func (m *MemoryVault) Get(ctx context.Context, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshots[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (m *MemoryVault) List(ctx context.Context) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.snapshots))
	for name, data := range m.snapshots {
		out = append(out, Snapshot{Name: name, Size: int64(len(data)), ModTime: m.modTimes[name]})
	}
	sortNewestFirst(out)
	return out, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup(ctx context.Context) error { return nil }

var _ Vault = (*MemoryVault)(nil)
