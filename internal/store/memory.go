package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore - потокобезопасная in-memory реализация Client для юнит-тестов.
// Поведение версионирования идентично SQLiteStore. Через FailNext можно
// заказать ошибку на следующие N операций конкретного типа записи - так
// тестируется частичный сбой двухфазной записи и пакетного прогона.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]map[string]*Record
	seq     int64

	failures map[string]failure
}

type failure struct {
	op    string
	count int
	err   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string]map[string]*Record),
		failures: make(map[string]failure),
	}
}

// FailNext заказывает ошибку err на следующие count операций op ("create",
// "update", "get", "list") над записями типа typ.
func (m *MemoryStore) FailNext(op, typ string, count int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+":"+typ] = failure{op: op, count: count, err: err}
}

func (m *MemoryStore) takeFailure(op, typ string) error {
	key := op + ":" + typ
	f, ok := m.failures[key]
	if !ok || f.count == 0 {
		return nil
	}
	f.count--
	if f.count == 0 {
		delete(m.failures, key)
	} else {
		m.failures[key] = f
	}
	return f.err
}

func (m *MemoryStore) Create(_ context.Context, typ string, data json.RawMessage) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure("create", typ); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m.seq++
	record := &Record{
		// seq в префиксе сохраняет порядок вставки при сортировке списка.
		ID:        fmt.Sprintf("%06d-%s", m.seq, uuid.NewString()),
		Type:      typ,
		Version:   1,
		Data:      append(json.RawMessage(nil), data...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if m.objects[typ] == nil {
		m.objects[typ] = make(map[string]*Record)
	}
	m.objects[typ][record.ID] = record

	copied := *record
	return &copied, nil
}

func (m *MemoryStore) Get(_ context.Context, typ, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure("get", typ); err != nil {
		return nil, err
	}

	record, ok := m.objects[typ][id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *record
	copied.Data = append(json.RawMessage(nil), record.Data...)
	return &copied, nil
}

func (m *MemoryStore) Update(
	_ context.Context, typ, id string, data json.RawMessage, expectedVersion int64,
) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure("update", typ); err != nil {
		return nil, err
	}

	record, ok := m.objects[typ][id]
	if !ok {
		return nil, ErrNotFound
	}
	if record.Version != expectedVersion {
		return nil, ErrVersionConflict
	}

	record.Data = append(json.RawMessage(nil), data...)
	record.Version++
	record.UpdatedAt = time.Now().UTC()

	copied := *record
	copied.Data = append(json.RawMessage(nil), record.Data...)
	return &copied, nil
}

func (m *MemoryStore) ListByType(_ context.Context, typ string, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure("list", typ); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}

	records := make([]Record, 0, len(m.objects[typ]))
	for _, record := range m.objects[typ] {
		copied := *record
		copied.Data = append(json.RawMessage(nil), record.Data...)
		records = append(records, copied)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
