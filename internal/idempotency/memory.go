package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory keeps idempotency records in process. It backs local runs that have no DynamoDB table.
// Expired entries are treated as absent.
type Memory struct {
	mu        sync.Mutex
	records   map[string]Record
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

func NewMemory(ttlWindow time.Duration) *Memory {
	return &Memory{
		records:   map[string]Record{},
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

func (m *Memory) CreateIfNotExists(ctx context.Context, key, reference string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	if rec, ok := m.live(key, now); ok && rec.Status != StatusFailed {
		return false, nil
	}
	m.records[key] = Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		Reference:      reference,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(m.ttlWindow).Unix(),
	}
	return true, nil
}

func (m *Memory) Get(ctx context.Context, key string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.live(key, m.nowFunc())
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error {
	return m.update(key, func(r *Record) {
		r.Status = StatusDone
		r.ResponseBody = responseBody
		r.ResponseStatus = responseStatus
	})
}

func (m *Memory) MarkFailed(ctx context.Context, key, note string) error {
	return m.update(key, func(r *Record) {
		r.Status = StatusFailed
		r.Note = note
	})
}

func (m *Memory) update(key string, fn func(*Record)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.nowFunc()
	rec, ok := m.live(key, now)
	if !ok {
		return fmt.Errorf("idempotency record %q not found", key)
	}
	fn(&rec)
	rec.UpdatedAt = now
	m.records[key] = rec
	return nil
}

func (m *Memory) live(key string, now time.Time) (Record, bool) {
	rec, ok := m.records[key]
	if !ok {
		return Record{}, false
	}
	if m.ttlWindow > 0 && now.Unix() >= rec.ExpiresAt {
		delete(m.records, key)
		return Record{}, false
	}
	return rec, true
}
