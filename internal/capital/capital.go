// Package capital resolves depository-participant codes to capital ids.
package capital

import "fmt"

// LookupError reports a depository code that is unknown even after a refresh.
// Callers escalate it to manual input; it is never fatal.
type LookupError struct {
	Code string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no capital id for depository code %s", e.Code)
}

// Fetcher downloads the full depository-participant list.
type Fetcher interface {
	FetchCapitals() (map[string]int, error)
}

// Map is a cached code → capital-id lookup. The backing map is shared with
// the vault so a refresh is visible to the next vault save.
type Map struct {
	entries map[string]int
	fetcher Fetcher
}

// NewMap wraps an existing cache (usually the vault's) with a fetcher.
func NewMap(entries map[string]int, f Fetcher) *Map {
	if entries == nil {
		entries = make(map[string]int)
	}
	return &Map{entries: entries, fetcher: f}
}

// Resolve looks the code up in the cache.
func (m *Map) Resolve(code string) (int, bool) {
	id, ok := m.entries[code]
	return id, ok
}

// Refresh replaces the whole cache with a fresh remote fetch.
func (m *Map) Refresh() error {
	fresh, err := m.fetcher.FetchCapitals()
	if err != nil {
		return fmt.Errorf("refresh capital map: %w", err)
	}
	for k := range m.entries {
		delete(m.entries, k)
	}
	for k, v := range fresh {
		m.entries[k] = v
	}
	return nil
}

// ResolveOrRefresh looks the code up, refreshing the cache once on a miss.
// A second miss returns *LookupError: the code is genuinely unknown and the
// capital id must be supplied manually.
func (m *Map) ResolveOrRefresh(code string) (int, error) {
	if id, ok := m.Resolve(code); ok {
		return id, nil
	}
	if err := m.Refresh(); err != nil {
		return 0, err
	}
	if id, ok := m.Resolve(code); ok {
		return id, nil
	}
	return 0, &LookupError{Code: code}
}

// Len returns the number of cached entries.
func (m *Map) Len() int { return len(m.entries) }
