package docstore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is a Store backed by Cloud Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps a Firestore client
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type firestoreDocument struct {
	snap *firestore.DocumentSnapshot
}

func (d firestoreDocument) ID() string { return d.snap.Ref.ID }

func (d firestoreDocument) DataTo(v interface{}) error { return d.snap.DataTo(v) }

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return firestoreDocument{snap: snap}, nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Path, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, firestoreDocument{snap: snap})
	}
	return docs, nil
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, data interface{}) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data interface{}) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, data)
	return err
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, path := range paths {
		value := fields[path]
		if value == ServerTimestamp {
			value = firestore.ServerTimestamp
		}
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return err
}

// Close releases the underlying client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
