package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/partyserver/models"
)

// MemoryArchive keeps records for the lifetime of the process.
type MemoryArchive struct {
	mu      sync.RWMutex
	records []*models.GameRecord
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{}
}

func (m *MemoryArchive) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	if record == nil {
		return ErrNilRecord
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := *record
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored.ID = uint(len(m.records) + 1)
	m.records = append(m.records, &stored)
	return nil
}

func (m *MemoryArchive) LoadGameRecord(ctx context.Context, id uint) (*models.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id == 0 || int(id) > len(m.records) {
		return nil, ErrRecordNotFound
	}
	r := *m.records[id-1]
	return &r, nil
}

func (m *MemoryArchive) RecentGames(ctx context.Context, limit int) ([]*models.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]*models.GameRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := *m.records[i]
		out = append(out, &r)
	}
	return out, nil
}

func (m *MemoryArchive) GameStats(ctx context.Context, variant string) (*models.GameStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := newStats(variant)
	for _, r := range m.records {
		if variant != "" && r.Variant != variant {
			continue
		}
		stats.TotalGames++
		stats.ByReason[r.Reason]++
	}
	return stats, nil
}

func (m *MemoryArchive) Close() error {
	return nil
}
