package docstore

import (
	"context"
	"errors"
)

// Collection is a typed view over one collection of a Store. T should
// expose SetID(string) on its pointer so decoded values carry their id.
type Collection[T any] struct {
	store Store
	name  string
}

// NewCollection returns a typed accessor for the named collection
func NewCollection[T any](store Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// Name returns the collection path
func (c *Collection[T]) Name() string {
	return c.name
}

// Get returns the document or ErrNotFound
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	v, err := decode[T](doc)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Exists reports whether a document with the id is present
func (c *Collection[T]) Exists(ctx context.Context, id string) (bool, error) {
	_, err := c.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Query returns documents matching q
func (c *Collection[T]) Query(ctx context.Context, q Query) ([]T, error) {
	docs, err := c.store.Query(ctx, c.name, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// All returns every document in the collection
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	return c.Query(ctx, Query{})
}

// Add stores data under a generated id and sets that id on data
func (c *Collection[T]) Add(ctx context.Context, data *T) (string, error) {
	id, err := c.store.Add(ctx, c.name, data)
	if err != nil {
		return "", err
	}
	setID(data, id)
	return id, nil
}

// Set creates or replaces the document with the given id
func (c *Collection[T]) Set(ctx context.Context, id string, data *T) error {
	if err := c.store.Set(ctx, c.name, id, data); err != nil {
		return err
	}
	setID(data, id)
	return nil
}

// Update merges fields into the document
func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if id == "" {
		return ErrNotFound
	}
	return c.store.Update(ctx, c.name, id, fields)
}

// Remove deletes the document; removing a missing id succeeds
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return c.store.Delete(ctx, c.name, id)
}

func decode[T any](doc Document) (T, error) {
	var v T
	if err := doc.DataTo(&v); err != nil {
		return v, err
	}
	setID(&v, doc.ID())
	return v, nil
}

func setID(v interface{}, id string) {
	if s, ok := v.(interface{ SetID(string) }); ok {
		s.SetID(id)
	}
}
