package cache

import (
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value    interface{}
	storedAt time.Time
	ttl      time.Duration
}

// MemoryStore adalah implementasi Store default: map in-process dengan
// expiry malas (entry kadaluarsa baru dibuang saat dibaca atau di-invalidate).
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	totalRequests int64
	hits          int64
	misses        int64

	// now bisa diganti di test untuk clock deterministik.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock -> override sumber waktu (dipakai test)
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Fetch(key string, ttl time.Duration, loader func() (interface{}, error)) (interface{}, error) {
	m.mu.Lock()
	m.totalRequests++
	if entry, ok := m.entries[key]; ok {
		if m.now().Sub(entry.storedAt) < entry.ttl {
			m.hits++
			m.mu.Unlock()
			return entry.value, nil
		}
		delete(m.entries, key)
	}
	m.misses++
	m.mu.Unlock()

	// Loader dipanggil di luar lock: dua reader yang miss pada key yang sama
	// boleh sama-sama fetch, paling buruk satu round trip DB ekstra.
	value, err := loader()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, storedAt: m.now(), ttl: ttl}
	m.mu.Unlock()
	return value, nil
}

// Invalidate menghapus semua key yang mengandung pattern sebagai substring.
// Satu panggilan membersihkan semua varian filter list query milik tenant.
func (m *MemoryStore) Invalidate(pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if strings.Contains(key, pattern) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{
		TotalRequests: m.totalRequests,
		Hits:          m.hits,
		Misses:        m.misses,
		EntryCount:    len(m.entries),
	}
	if stats.TotalRequests > 0 {
		stats.HitRatePercent = float64(stats.Hits) / float64(stats.TotalRequests) * 100
	}
	return stats
}

func (m *MemoryStore) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
}
