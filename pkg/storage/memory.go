package storage

import (
	"context"
	"sync"

	"github.com/yurykabanov/logrotd/pkg/domain"
)

// MemoryCycleRepository keeps the latest cycle summaries in memory; it backs
// the status endpoints when no journal database is configured.
type MemoryCycleRepository struct {
	mu     sync.RWMutex
	size   int
	cycles []domain.CycleSummary
}

func NewMemoryCycleRepository(size int) *MemoryCycleRepository {
	if size <= 0 {
		size = 1
	}

	return &MemoryCycleRepository{size: size}
}

func (r *MemoryCycleRepository) ObserveCycle(_ context.Context, report domain.CycleReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cycles = append(r.cycles, report.Summary())
	if len(r.cycles) > r.size {
		r.cycles = r.cycles[len(r.cycles)-r.size:]
	}

	return nil
}

// FindRecent returns up to limit summaries, newest first.
func (r *MemoryCycleRepository) FindRecent(_ context.Context, limit int) ([]domain.CycleSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit > len(r.cycles) || limit <= 0 {
		limit = len(r.cycles)
	}

	result := make([]domain.CycleSummary, 0, limit)
	for i := len(r.cycles) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, r.cycles[i])
	}

	return result, nil
}
