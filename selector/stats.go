package selector

import "sync"

// EntryStats is the running tally for one selector candidate (primary or
// one fallback entry).
type EntryStats struct {
	Attempts int
	Wins     int
}

// Stats is the per-locator selector health bookkeeping supplemented
// per SPEC_FULL.md's "selector health stats" feature: read-only to
// execution, mutated only by the resolver, surfaced for trace output and
// operator diagnostics. Each Executor owns one Stats instance, shared
// across all its invocations and namespaces,
// unlike the per-call Resolution which is never cached (§4.5).
type Stats struct {
	mu      sync.Mutex
	entries map[string]*EntryStats
}

func NewStats() *Stats {
	return &Stats{entries: map[string]*EntryStats{}}
}

func (s *Stats) recordAttempt(locator string, won bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[locator]
	if !ok {
		e = &EntryStats{}
		s.entries[locator] = e
	}
	e.Attempts++
	if won {
		e.Wins++
	}
}

// Snapshot returns a copy of the per-locator counters, safe to read
// concurrently with ongoing resolutions.
func (s *Stats) Snapshot() map[string]EntryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]EntryStats, len(s.entries))
	for k, v := range s.entries {
		out[k] = *v
	}
	return out
}
