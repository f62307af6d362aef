package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Memory is an in-process Store used by tests and as a dev fallback. All
// operations run under one mutex, which trivially satisfies the atomicity
// contract (Create-once, lost-update-free Increment).
type Memory struct {
	mu   sync.Mutex
	root map[string]col
}

type col map[string]*memDoc

type memDoc struct {
	// data is nil while the document does not exist; subcollections may
	// still hang off a missing document, as in Firestore.
	data map[string]any
	subs map[string]col
}

func NewMemory() *Memory {
	return &Memory{root: make(map[string]col)}
}

// docAt resolves a document path. With create=true missing containers are
// materialized (with nil data, i.e. still "missing" as a document).
func (m *Memory) docAt(path []string, create bool) *memDoc {
	cols := m.root
	var d *memDoc
	for i := 0; i < len(path); i += 2 {
		c, ok := cols[path[i]]
		if !ok {
			if !create {
				return nil
			}
			c = make(col)
			cols[path[i]] = c
		}
		d, ok = c[path[i+1]]
		if !ok {
			if !create {
				return nil
			}
			d = &memDoc{subs: make(map[string]col)}
			c[path[i+1]] = d
		}
		cols = d.subs
	}
	return d
}

func (m *Memory) colAt(path []string, create bool) col {
	if len(path) == 1 {
		c, ok := m.root[path[0]]
		if !ok {
			if !create {
				return nil
			}
			c = make(col)
			m.root[path[0]] = c
		}
		return c
	}
	parent := m.docAt(path[:len(path)-1], create)
	if parent == nil {
		return nil
	}
	name := path[len(path)-1]
	c, ok := parent.subs[name]
	if !ok {
		if !create {
			return nil
		}
		c = make(col)
		parent.subs[name] = c
	}
	return c
}

func (m *Memory) Get(_ context.Context, path ...string) (Document, error) {
	if !validDocPath(path) {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.docAt(path, false)
	if d == nil || d.data == nil {
		return Document{}, ErrNotFound
	}
	return Document{ID: path[len(path)-1], Data: cloneMap(d.data)}, nil
}

func (m *Memory) Create(_ context.Context, data map[string]any, path ...string) error {
	if !validDocPath(path) {
		return fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.docAt(path, true)
	if d.data != nil {
		return ErrAlreadyExists
	}
	d.data = cloneMap(data)
	return nil
}

func (m *Memory) Set(_ context.Context, data map[string]any, path ...string) error {
	if !validDocPath(path) {
		return fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docAt(path, true).data = cloneMap(data)
	return nil
}

func (m *Memory) Update(_ context.Context, field string, value any, path ...string) error {
	if !validDocPath(path) {
		return fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.docAt(path, false)
	if d == nil || d.data == nil {
		return ErrNotFound
	}
	d.data[field] = cloneValue(value)
	return nil
}

func (m *Memory) Delete(_ context.Context, path ...string) error {
	if !validDocPath(path) {
		return fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.docAt(path, false); d != nil {
		d.data = nil
	}
	return nil
}

func (m *Memory) Add(_ context.Context, data map[string]any, collection ...string) (string, error) {
	if !validCollectionPath(collection) {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, collection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.colAt(collection, true)
	id := xid.New().String()
	c[id] = &memDoc{data: cloneMap(data), subs: make(map[string]col)}
	return id, nil
}

func (m *Memory) Increment(_ context.Context, field string, delta int64, path ...string) error {
	if !validDocPath(path) {
		return fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.docAt(path, false)
	if d == nil || d.data == nil {
		return ErrNotFound
	}
	d.data[field] = asInt64(d.data[field]) + delta
	return nil
}

func (m *Memory) Query(_ context.Context, q Query, collection ...string) ([]Document, error) {
	if !validCollectionPath(collection) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, collection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.matchLocked(q, collection)
	if q.OrderBy != "" && q.StartAfter != nil {
		kept := docs[:0]
		for _, d := range docs {
			c := compareValues(d.Data[q.OrderBy], q.StartAfter)
			if (q.Desc && c < 0) || (!q.Desc && c > 0) {
				kept = append(kept, d)
			}
		}
		docs = kept
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (m *Memory) Count(_ context.Context, q Query, collection ...string) (int64, error) {
	if !validCollectionPath(collection) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPath, collection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matchLocked(Query{Filters: q.Filters}, collection))), nil
}

// matchLocked returns filtered, sorted clones of the collection's documents.
func (m *Memory) matchLocked(q Query, collection []string) []Document {
	c := m.colAt(collection, false)
	var docs []Document
	for id, d := range c {
		if d.data == nil {
			continue
		}
		ok := true
		for _, f := range q.Filters {
			if !matchFilter(d.data[f.Field], f.Op, f.Value) {
				ok = false
				break
			}
		}
		if ok {
			docs = append(docs, Document{ID: id, Data: cloneMap(d.data)})
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		var c int
		if q.OrderBy != "" {
			c = compareValues(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy])
		}
		if c == 0 {
			// Firestore breaks ties (and orders unqueried scans) by id.
			c = strings.Compare(docs[i].ID, docs[j].ID)
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})
	return docs
}

func matchFilter(have any, op string, want any) bool {
	c := compareValues(have, want)
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

// compareValues orders the value types the board stores: timestamps,
// strings, booleans and numbers. Mixed incomparable types fall back to
// their string forms so sorting stays total.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case bv:
				return -1
			}
			return 1
		}
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float64:
		return int64(x)
	}
	return 0
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		cp := make([]any, len(x))
		for i, e := range x {
			cp[i] = cloneValue(e)
		}
		return cp
	case []string:
		return append([]string(nil), x...)
	case []map[string]any:
		cp := make([]map[string]any, len(x))
		for i, e := range x {
			cp[i] = cloneMap(e)
		}
		return cp
	}
	return v
}
