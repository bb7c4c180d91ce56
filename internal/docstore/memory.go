package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Documents are kept in their JSON
// form, so models must use identical json and firestore field names.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	now         func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		now:         time.Now,
	}
}

type memoryDocument struct {
	id   string
	data map[string]interface{}
}

func (d memoryDocument) ID() string { return d.id }

func (d memoryDocument) DataTo(v interface{}) error {
	raw, err := json.Marshal(d.data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return memoryDocument{id: id, data: cloneMap(data)}, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	for _, f := range q.Filters {
		if !validOp(f.Op) {
			return nil, fmt.Errorf("unsupported operator %q", f.Op)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filters := make([]Filter, len(q.Filters))
	for i, f := range q.Filters {
		filters[i] = Filter{Path: f.Path, Op: f.Op, Value: normalize(f.Value)}
	}

	var docs []memoryDocument
	for id, data := range s.collections[collection] {
		if matches(data, filters) {
			docs = append(docs, memoryDocument{id: id, data: data})
		}
	}

	if q.OrderBy != "" {
		// Documents without the ordering field are left out, as Firestore does.
		kept := docs[:0]
		for _, d := range docs {
			if _, ok := lookup(d.data, q.OrderBy); ok {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if q.OrderBy != "" {
			a, _ := lookup(docs[i].data, q.OrderBy)
			b, _ := lookup(docs[j].data, q.OrderBy)
			if c, ok := compare(a, b); ok && c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return docs[i].id < docs[j].id
	})

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}

	result := make([]Document, len(docs))
	for i, d := range docs {
		result[i] = memoryDocument{id: d.id, data: cloneMap(d.data)}
	}
	return result, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data interface{}) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data interface{}) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}
	m, err := toMap(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, field := range serverTimestampFields(data) {
		if isZeroTime(m[field]) {
			m[field] = now.UTC().Format(time.RFC3339Nano)
		}
	}

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]interface{})
	}
	s.collections[collection][id] = m
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}

	now := s.now()
	for path, value := range fields {
		if value == ServerTimestamp {
			setPath(data, path, now.UTC().Format(time.RFC3339Nano))
			continue
		}
		setPath(data, path, normalize(value))
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func validOp(op string) bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		return true
	}
	return false
}

func matches(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := lookup(data, f.Path)
		if !ok {
			return false
		}
		c, comparable := compare(v, f.Value)
		if !comparable {
			if f.Op == OpNotEqual {
				continue
			}
			return false
		}
		var pass bool
		switch f.Op {
		case OpEqual:
			pass = c == 0
		case OpNotEqual:
			pass = c != 0
		case OpLess:
			pass = c < 0
		case OpLessOrEqual:
			pass = c <= 0
		case OpGreater:
			pass = c > 0
		case OpGreaterOrEqual:
			pass = c >= 0
		}
		if !pass {
			return false
		}
	}
	return true
}

// compare orders two normalized values. Strings that both parse as
// RFC 3339 timestamps are compared as instants.
func compare(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		at, aErr := time.Parse(time.RFC3339Nano, av)
		bt, bErr := time.Parse(time.RFC3339Nano, bv)
		if aErr == nil && bErr == nil {
			return at.Compare(bt), true
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	case nil:
		if b == nil {
			return 0, true
		}
	}
	return 0, false
}

func lookup(data map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func setPath(data map[string]interface{}, path string, value interface{}) {
	parts := strings.Split(path, ".")
	m := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// normalize converts a Go value into its JSON-decoded form so it can be
// compared with stored data.
func normalize(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func toMap(data interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("document must encode to an object: %w", err)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	return m, nil
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out, err := toMap(m)
	if err != nil {
		return m
	}
	return out
}

func isZeroTime(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return v == nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	return err != nil || t.IsZero()
}

// serverTimestampFields lists the top-level field names of a struct
// that carry the serverTimestamp firestore tag option.
func serverTimestampFields(data interface{}) []string {
	t := reflect.TypeOf(data)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var fields []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		parts := strings.Split(f.Tag.Get("firestore"), ",")
		for _, opt := range parts[1:] {
			if opt == "serverTimestamp" {
				name := parts[0]
				if name == "" {
					name = f.Name
				}
				fields = append(fields, name)
			}
		}
	}
	return fields
}
