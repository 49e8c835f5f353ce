package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Client for tests and offline development.
// Setting Fail makes every call return that error, simulating an
// unreachable remote.
type Memory struct {
	mu    sync.Mutex
	colls map[string]map[string]Document
	now   func() time.Time

	// Fail, when non-nil, is returned by every operation.
	Fail error
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{
		colls: map[string]map[string]Document{},
		now:   time.Now,
	}
}

// SetClock overrides the creation-timestamp source.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Create implements Client.
func (m *Memory) Create(_ context.Context, collection, id string, data any) error {
	return m.put(collection, id, data)
}

// Update implements Client.
func (m *Memory) Update(_ context.Context, collection, id string, data any) error {
	return m.put(collection, id, data)
}

func (m *Memory) put(collection, id string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return &NetworkError{Op: fmt.Sprintf("put %s/%s", collection, id), Err: err}
	}
	coll, ok := m.colls[collection]
	if !ok {
		coll = map[string]Document{}
		m.colls[collection] = coll
	}
	createdAt := m.now()
	if prior, ok := coll[id]; ok {
		createdAt = prior.CreatedAt
	}
	coll[id] = Document{ID: id, Data: raw, CreatedAt: createdAt}
	return nil
}

// Get implements Client.
func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return Document{}, m.Fail
	}
	doc, ok := m.colls[collection][id]
	if !ok {
		return Document{}, &NotFoundError{Collection: collection, ID: id}
	}
	return doc, nil
}

// Delete implements Client.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	coll, ok := m.colls[collection]
	if !ok {
		return &NotFoundError{Collection: collection, ID: id}
	}
	if _, ok := coll[id]; !ok {
		return &NotFoundError{Collection: collection, ID: id}
	}
	delete(coll, id)
	return nil
}

// List implements Client.
func (m *Memory) List(_ context.Context, collection string, query Query) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}

	var docs []Document
	for _, doc := range m.colls[collection] {
		ok, err := matches(doc, query.Where)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		less := false
		switch query.OrderBy {
		case "", "createdAt":
			less = a.CreatedAt.Before(b.CreatedAt)
		default:
			less = fieldString(a, query.OrderBy) < fieldString(b, query.OrderBy)
		}
		if query.Descending {
			return !less
		}
		return less
	})

	if query.Offset > 0 {
		if query.Offset >= len(docs) {
			return nil, nil
		}
		docs = docs[query.Offset:]
	}
	if query.Limit > 0 && len(docs) > query.Limit {
		docs = docs[:query.Limit]
	}
	return docs, nil
}

func matches(doc Document, conds []Condition) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(doc.Data, &fields); err != nil {
		return false, err
	}
	for _, cond := range conds {
		got := lookup(fields, cond.Field)
		switch cond.Op {
		case OpEqual:
			if fmt.Sprint(got) != fmt.Sprint(cond.Value) {
				return false, nil
			}
		case OpGreaterOrEqual:
			if fmt.Sprint(got) < fmt.Sprint(cond.Value) {
				return false, nil
			}
		case OpLessOrEqual:
			if fmt.Sprint(got) > fmt.Sprint(cond.Value) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported operator %q", cond.Op)
		}
	}
	return true, nil
}

func lookup(fields map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var current any = fields
	for _, part := range parts {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[part]
	}
	return current
}

func fieldString(doc Document, field string) string {
	var fields map[string]any
	if err := json.Unmarshal(doc.Data, &fields); err != nil {
		return ""
	}
	return fmt.Sprint(lookup(fields, field))
}
