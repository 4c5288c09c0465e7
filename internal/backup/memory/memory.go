// Package memory is an in-process backup destination, used when no
// spreadsheet is configured and by tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"financeiro/internal/backup"
)

type Store struct {
	mu        sync.Mutex
	summaries map[string]backup.MonthSummary
	writes    int
}

var _ backup.SummaryWriter = (*Store)(nil)

func New() *Store {
	return &Store{summaries: make(map[string]backup.MonthSummary)}
}

// WriteMonthSummary keeps the newest summary per competence.
func (s *Store) WriteMonthSummary(_ context.Context, summary backup.MonthSummary) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries[summary.Competence] = summary
	s.writes++
	return fmt.Sprintf("mem:%s", summary.Competence), nil
}

// Summary returns the stored summary for a competence.
func (s *Store) Summary(competence string) (backup.MonthSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary, ok := s.summaries[competence]
	return summary, ok
}

// Writes returns how many summaries were written in total.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
