package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements Store on top of Cloud Firestore.
type Firestore struct {
	c *firestore.Client
}

// NewFirestore connects to the Firestore database of the given project.
// Credentials are resolved the usual way (GOOGLE_APPLICATION_CREDENTIALS or
// ambient service account).
func NewFirestore(ctx context.Context, projectID string) (*Firestore, error) {
	c, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Firestore{c: c}, nil
}

func (s *Firestore) Close() error { return s.c.Close() }

func (s *Firestore) doc(path []string) (*firestore.DocumentRef, error) {
	if !validDocPath(path) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	ref := s.c.Collection(path[0]).Doc(path[1])
	for i := 2; i < len(path); i += 2 {
		ref = ref.Collection(path[i]).Doc(path[i+1])
	}
	return ref, nil
}

func (s *Firestore) collection(path []string) (*firestore.CollectionRef, error) {
	if !validCollectionPath(path) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	if len(path) == 1 {
		return s.c.Collection(path[0]), nil
	}
	parent, err := s.doc(path[:len(path)-1])
	if err != nil {
		return nil, err
	}
	return parent.Collection(path[len(path)-1]), nil
}

func mapError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	}
	return err
}

func (s *Firestore) Get(ctx context.Context, path ...string) (Document, error) {
	ref, err := s.doc(path)
	if err != nil {
		return Document{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return Document{}, mapError(err)
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *Firestore) Create(ctx context.Context, data map[string]any, path ...string) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	if _, err := ref.Create(ctx, data); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Firestore) Set(ctx context.Context, data map[string]any, path ...string) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, data)
	return err
}

func (s *Firestore) Update(ctx context.Context, field string, value any, path ...string) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	if _, err := ref.Update(ctx, []firestore.Update{{Path: field, Value: value}}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Firestore) Delete(ctx context.Context, path ...string) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx)
	return err
}

func (s *Firestore) Add(ctx context.Context, data map[string]any, collection ...string) (string, error) {
	col, err := s.collection(collection)
	if err != nil {
		return "", err
	}
	ref, _, err := col.Add(ctx, data)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Firestore) Increment(ctx context.Context, field string, delta int64, path ...string) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	// Server-side transform; atomic under concurrent callers.
	if _, err := ref.Update(ctx, []firestore.Update{{Path: field, Value: firestore.Increment(delta)}}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Firestore) Query(ctx context.Context, q Query, collection ...string) ([]Document, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	fq := col.Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
		if q.StartAfter != nil {
			fq = fq.StartAfter(q.StartAfter)
		}
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	iter := fq.Documents(ctx)
	defer iter.Stop()
	var out []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return out, nil
}

func (s *Firestore) Count(ctx context.Context, q Query, collection ...string) (int64, error) {
	col, err := s.collection(collection)
	if err != nil {
		return 0, err
	}
	fq := col.Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, f.Op, f.Value)
	}
	res, err := fq.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["count"]
	if !ok {
		return 0, fmt.Errorf("docstore: count aggregate missing from result")
	}
	pv, ok := v.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("docstore: unexpected count aggregate type %T", v)
	}
	return pv.GetIntegerValue(), nil
}
