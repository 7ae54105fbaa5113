package memory

import (
	"context"
	"sort"
	"sync"

	ports "idledger/internal/sheets"
)

// Store keeps tabs in memory. It stands in for a spreadsheet in tests and
// local runs.
type Store struct {
	mu     sync.Mutex
	tabs   map[string][][]any
	writes int
}

var _ ports.TabWriter = (*Store)(nil)

func New() *Store {
	return &Store{tabs: make(map[string][][]any)}
}

func (s *Store) ReplaceTab(_ context.Context, tab string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[tab] = copyRows(rows)
	s.writes++
	return nil
}

// Tab returns a copy of the rows of tab and whether it exists.
func (s *Store) Tab(tab string) ([][]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tabs[tab]
	return copyRows(rows), ok
}

// Tabs lists tab titles, sorted.
func (s *Store) Tabs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tabs))
	for name := range s.tabs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Writes counts ReplaceTab calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func copyRows(rows [][]any) [][]any {
	if rows == nil {
		return nil
	}
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
