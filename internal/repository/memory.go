package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// MemoryStore is an in-process RecordStore used for demos and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]domain.GrowthRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]domain.GrowthRecord)}
}

func (m *MemoryStore) SelectAll(_ context.Context) ([]domain.GrowthRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.GrowthRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Insert(_ context.Context, date time.Time, f domain.RecordFields) (domain.GrowthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec := domain.GrowthRecord{ID: m.nextID, Date: domain.Day(date), RecordFields: f}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *MemoryStore) Update(_ context.Context, id int64, f domain.RecordFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return &domain.StoreError{Op: "update", ID: id, Err: domain.ErrNotFound}
	}
	rec.RecordFields = f
	m.records[id] = rec
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return &domain.StoreError{Op: "delete", ID: id, Err: domain.ErrNotFound}
	}
	delete(m.records, id)
	return nil
}
