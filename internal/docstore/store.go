package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// Comparison operators supported by Filter
const (
	OpEqual          = "=="
	OpNotEqual       = "!="
	OpLess           = "<"
	OpLessOrEqual    = "<="
	OpGreater        = ">"
	OpGreaterOrEqual = ">="
)

// Filter is a single field comparison. Path may be dotted to reach
// nested fields, e.g. "availedPlan.expiryDate".
type Filter struct {
	Path  string
	Op    string
	Value interface{}
}

// Where builds a Filter
func Where(path, op string, value interface{}) Filter {
	return Filter{Path: path, Op: op, Value: value}
}

// Query describes a filtered, optionally ordered read of a collection
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Document is a single stored document
type Document interface {
	ID() string
	DataTo(v interface{}) error
}

type serverTimestamp struct{}

// ServerTimestamp can be used as an Update value to stamp the store's
// write time into a field.
var ServerTimestamp = serverTimestamp{}

// Store is a path-addressed document database. Collection names may be
// nested, e.g. "kpis/2024/months".
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Add stores data under a generated id. Fields tagged
	// `firestore:",serverTimestamp"` are stamped when zero.
	Add(ctx context.Context, collection string, data interface{}) (string, error)
	Set(ctx context.Context, collection, id string, data interface{}) error
	// Update merges fields into an existing document. Keys are dotted
	// field paths; fields not named are left untouched.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	// Delete removes a document. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error
}
