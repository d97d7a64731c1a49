package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

// ErrNotFound is returned for a month that was never written.
var ErrNotFound = errors.New("month summary not found")

// Store keeps month summaries in memory, one entry per period.
type Store struct {
	mu     sync.Mutex
	tabs   map[core.Period]core.MonthOverview
	writes int
}

var (
	_ ports.SummaryWriter = (*Store)(nil)
	_ ports.SummaryReader = (*Store)(nil)
)

func New() *Store {
	return &Store{tabs: make(map[core.Period]core.MonthOverview)}
}

// WriteMonthSummary stores a copy of ov, replacing the previous one.
func (s *Store) WriteMonthSummary(_ context.Context, ov core.MonthOverview) error {
	if !ov.Period.Valid() {
		return fmt.Errorf("invalid period %+v", ov.Period)
	}
	ov.ByCategory = slices.Clone(ov.ByCategory)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[ov.Period] = ov
	s.writes++
	return nil
}

func (s *Store) ReadMonthSummary(_ context.Context, p core.Period) (core.MonthOverview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ov, ok := s.tabs[p]
	if !ok {
		return core.MonthOverview{}, fmt.Errorf("%w: %s", ErrNotFound, p.Key())
	}
	ov.ByCategory = slices.Clone(ov.ByCategory)
	return ov, nil
}

// Writes counts successful writes.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
