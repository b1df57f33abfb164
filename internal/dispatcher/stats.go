package dispatcher

import "sync"

// statsEntry is one URL's rolling render-duration observation.
type statsEntry struct {
	count int
	avgMs float64
}

// Stats tracks a rolling average render duration per observed URL,
// evicting the oldest-observed entry (by insertion order, not access
// order) once more than 100 distinct URLs have been seen.
type Stats struct {
	mu      sync.Mutex
	entries map[string]*statsEntry
	order   []string
}

const statsCapacity = 100

// NewStats returns an empty Stats tracker.
func NewStats() *Stats {
	return &Stats{entries: make(map[string]*statsEntry)}
}

// Observe records one completed render duration (in milliseconds) for url,
// creating the entry if this is the first observation and evicting the
// oldest entry if the map would otherwise exceed 100 entries.
func (s *Stats) Observe(url string, durationMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[url]; ok {
		e.count++
		e.avgMs += (durationMs - e.avgMs) / float64(e.count)
		return
	}

	s.entries[url] = &statsEntry{count: 1, avgMs: durationMs}
	s.order = append(s.order, url)
	if len(s.order) > statsCapacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
}

// Average reports the current rolling average duration for url and whether
// any observation has been recorded for it yet.
func (s *Stats) Average(url string) (avgMs float64, observed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[url]
	if !ok {
		return 0, false
	}
	return e.avgMs, true
}

// Len reports how many distinct URLs are currently tracked.
func (s *Stats) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
