package documentstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store with the same filter and ordering
// semantics as the Postgres adapter. It backs tests and local development, and
// supports per-collection fault injection so fail-soft collector paths can be
// exercised.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]Document
	order  map[string][]string
	faults map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]map[string]Document),
		order:  make(map[string][]string),
		faults: make(map[string]error),
	}
}

// FailCollection makes every operation against the collection return err.
// Passing a nil error clears the fault.
func (m *MemoryStore) FailCollection(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, collection)
		return
	}
	m.faults[collection] = err
}

// Len reports the number of documents in a collection.
func (m *MemoryStore) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}

func (m *MemoryStore) Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.faults[collection]; err != nil {
		return nil, err
	}

	var results []Document
	for _, id := range m.order[collection] {
		doc := m.data[collection][id]
		if matchesAll(doc, opts.Filters) {
			results = append(results, cloneDocument(doc))
		}
	}

	if opts.OrderBy != nil {
		field, desc := opts.OrderBy.Field, opts.OrderBy.Desc
		sort.SliceStable(results, func(i, j int) bool {
			cmp, ok := compareValues(results[i][field], results[j][field])
			if !ok {
				return false
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

func (m *MemoryStore) Count(ctx context.Context, collection string, filters []Filter) (int, error) {
	docs, err := m.Query(ctx, collection, QueryOptions{Filters: filters})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.faults[collection]; err != nil {
		return nil, err
	}

	doc, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (m *MemoryStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.faults[collection]; err != nil {
		return "", err
	}

	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	stored := cloneDocument(doc)
	stored["id"] = id

	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Document)
	}
	if _, exists := m.data[collection][id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	m.data[collection][id] = stored

	return id, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, partial Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.faults[collection]; err != nil {
		return err
	}

	doc, ok := m.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return nil
}

func matchesAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc Document, f Filter) bool {
	val, ok := doc[f.Field]
	if !ok {
		return false
	}

	switch f.Op {
	case OpEqual:
		cmp, ok := compareValues(val, f.Value)
		return ok && cmp == 0
	case OpGreaterEqual:
		cmp, ok := compareValues(val, f.Value)
		return ok && cmp >= 0
	case OpLessEqual:
		cmp, ok := compareValues(val, f.Value)
		return ok && cmp <= 0
	case OpIn:
		candidates, ok := f.Value.([]any)
		if !ok {
			return false
		}
		for _, c := range candidates {
			if cmp, ok := compareValues(val, c); ok && cmp == 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// compareValues compares two document values, normalizing numerics to float64
// and timestamps to time.Time (RFC 3339 strings included). The bool result
// reports comparability.
func compareValues(a, b any) (int, bool) {
	if ta, ok := asTime(a); ok {
		tb, ok := asTime(b)
		if !ok {
			return 0, false
		}
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		default:
			return 0, true
		}
	}

	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		return 1, false
	}

	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
