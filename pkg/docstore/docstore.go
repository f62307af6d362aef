// Package docstore is a thin handle to a collection-oriented document
// database. Documents live in a hierarchical namespace addressed by
// alternating collection/id segments, e.g. "movies", title, "comments", id.
//
// Two implementations exist: Firestore for production and Memory for tests
// and local development. Both honor the same contract: Create is
// create-once (ErrAlreadyExists on duplicates), Increment is atomic under
// concurrent callers, and reads never observe partially applied writes to a
// single document.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("docstore: not found")
	// ErrAlreadyExists is returned by Create when the document id is taken.
	ErrAlreadyExists = errors.New("docstore: already exists")
	// ErrInvalidPath is returned for malformed path segment lists.
	ErrInvalidPath = errors.New("docstore: invalid path")
)

// Document is a decoded document with its id within the parent collection.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is a single field predicate. Op is one of "==", "!=", "<", "<=",
// ">", ">=".
type Filter struct {
	Field string
	Op    string
	Value any
}

// Query describes an ordered, filtered, cursor-positioned read of a
// collection. A zero Query returns every document in id order. StartAfter
// positions the result strictly after the given OrderBy value: documents
// whose value equals the cursor are skipped.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Desc       bool
	StartAfter any
	Limit      int
}

// Store is the document-database contract the service relies on.
type Store interface {
	// Get reads the document at path (even number of segments).
	Get(ctx context.Context, path ...string) (Document, error)
	// Create writes the document only if it does not exist yet.
	Create(ctx context.Context, data map[string]any, path ...string) error
	// Set writes the document, overwriting any existing content.
	Set(ctx context.Context, data map[string]any, path ...string) error
	// Update overwrites a single field of an existing document.
	Update(ctx context.Context, field string, value any, path ...string) error
	// Delete removes the document. Deleting a missing document is a no-op.
	Delete(ctx context.Context, path ...string) error
	// Add creates a document with a server-assigned id in the collection
	// (odd number of segments) and returns the id.
	Add(ctx context.Context, data map[string]any, collection ...string) (string, error)
	// Increment atomically adds delta to an integer field of an existing
	// document. Concurrent increments must all be reflected.
	Increment(ctx context.Context, field string, delta int64, path ...string) error
	// Query reads documents from the collection.
	Query(ctx context.Context, q Query, collection ...string) ([]Document, error)
	// Count returns the number of documents matching q's filters using a
	// server-side aggregate, not a client-side scan.
	Count(ctx context.Context, q Query, collection ...string) (int64, error)
}

func validDocPath(path []string) bool {
	if len(path) < 2 || len(path)%2 != 0 {
		return false
	}
	for _, seg := range path {
		if seg == "" {
			return false
		}
	}
	return true
}

func validCollectionPath(path []string) bool {
	if len(path) < 1 || len(path)%2 != 1 {
		return false
	}
	for _, seg := range path {
		if seg == "" {
			return false
		}
	}
	return true
}
