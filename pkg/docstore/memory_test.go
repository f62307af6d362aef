package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCreateGetSemantics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "movies", "foo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := m.Create(ctx, map[string]any{"v": int64(1)}, "movies", "foo"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := m.Create(ctx, map[string]any{"v": int64(2)}, "movies", "foo"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	doc, err := m.Get(ctx, "movies", "foo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := doc.Data["v"]; got != int64(1) {
		t.Fatalf("duplicate create altered document: v=%v", got)
	}
}

func TestGetReturnsClone(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Set(ctx, map[string]any{"tags": []any{"a"}}, "movies", "foo"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	doc, _ := m.Get(ctx, "movies", "foo")
	doc.Data["tags"].([]any)[0] = "mutated"
	doc.Data["new"] = true

	again, _ := m.Get(ctx, "movies", "foo")
	if again.Data["tags"].([]any)[0] != "a" {
		t.Fatal("stored document was modified through a read")
	}
	if _, ok := again.Data["new"]; ok {
		t.Fatal("stored document gained a field through a read")
	}
}

func TestQueryOrderCursorLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		err := m.Create(ctx, map[string]any{"created_at": base.Add(time.Duration(i) * time.Minute)}, "movies", id)
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	q := Query{OrderBy: "created_at", Desc: true, Limit: 2}
	page1, err := m.Query(ctx, q, "movies")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page1) != 2 || page1[0].ID != "e" || page1[1].ID != "d" {
		t.Fatalf("unexpected first page: %+v", page1)
	}

	// Strictly-after cursor: no duplicates, no skips.
	q.StartAfter = page1[1].Data["created_at"]
	page2, err := m.Query(ctx, q, "movies")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page2) != 2 || page2[0].ID != "c" || page2[1].ID != "b" {
		t.Fatalf("unexpected second page: %+v", page2)
	}

	q.StartAfter = page2[1].Data["created_at"]
	page3, _ := m.Query(ctx, q, "movies")
	if len(page3) != 1 || page3[0].ID != "a" {
		t.Fatalf("unexpected last page: %+v", page3)
	}
}

func TestQueryDefaultOrderIsID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []string{"c", "a", "b"} {
		if err := m.Set(ctx, map[string]any{"id": id}, "col", id); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	docs, err := m.Query(ctx, Query{}, "col")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 3 || docs[0].ID != "a" || docs[1].ID != "b" || docs[2].ID != "c" {
		t.Fatalf("unexpected order: %+v", docs)
	}
}

func TestCountWithFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i, valid := range []bool{true, false, true, true} {
		path := []string{"movies", "foo", "likes", string(rune('a' + i))}
		if err := m.Set(ctx, map[string]any{"is_valid": valid}, path...); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	q := Query{Filters: []Filter{{Field: "is_valid", Op: "==", Value: true}}}
	n, err := m.Count(ctx, q, "movies", "foo", "likes")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
}

func TestIncrementIsAtomic(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Create(ctx, map[string]any{"counter": int64(0)}, "movies", "foo", "daily_counters", "2024-05-01"); err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = m.Increment(ctx, "counter", 1, "movies", "foo", "daily_counters", "2024-05-01")
		}()
	}
	wg.Wait()

	doc, err := m.Get(ctx, "movies", "foo", "daily_counters", "2024-05-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := doc.Data["counter"]; got != int64(n) {
		t.Fatalf("expected %d, got %v", n, got)
	}
}

func TestIncrementMissingDoc(t *testing.T) {
	m := NewMemory()
	err := m.Increment(context.Background(), "counter", 1, "movies", "foo", "daily_counters", "2024-05-01")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Delete(ctx, "users", "u1", "favorites", "foo"); err != nil {
		t.Fatalf("delete of missing doc failed: %v", err)
	}
	if err := m.Set(ctx, map[string]any{"title": "foo"}, "users", "u1", "favorites", "foo"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Delete(ctx, "users", "u1", "favorites", "foo"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(ctx, "users", "u1", "favorites", "foo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAddAssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		id, err := m.Add(ctx, map[string]any{"n": int64(i)}, "movies", "foo", "comments")
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate generated id %s", id)
		}
		seen[id] = true
	}
	n, err := m.Count(ctx, Query{}, "movies", "foo", "comments")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 10 {
		t.Fatalf("expected 10 comments, got %d", n)
	}
}

func TestInvalidPaths(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, err := m.Get(ctx, "movies"); err == nil {
		t.Fatal("expected error for odd doc path")
	}
	if _, err := m.Query(ctx, Query{}, "movies", "foo"); err == nil {
		t.Fatal("expected error for even collection path")
	}
}
