package repos

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Osteoporosis/movie-board-backend/internal/model"
	"github.com/Osteoporosis/movie-board-backend/pkg/cache"
	"github.com/Osteoporosis/movie-board-backend/pkg/docstore"
)

func newTestRepo() *Repository {
	return New(docstore.NewMemory(), cache.NewInMemory())
}

func movieInfo(title string, tags ...string) model.MovieInfo {
	return model.MovieInfo{
		ReleasedAt:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Tags:        tags,
		Title:       title,
		Description: "about " + title,
	}
}

func TestCreateDuplicateTitle(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := r.Movies.Create(ctx, movieInfo("Foo"), first); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := r.Movies.Create(ctx, movieInfo("Foo"), first.Add(time.Hour))
	if !errors.Is(err, ErrMovieExists) {
		t.Fatalf("expected ErrMovieExists, got %v", err)
	}
	m, err := r.Movies.GetByTitle(ctx, "Foo")
	if err != nil || m == nil {
		t.Fatalf("get after duplicate create: %v, %v", m, err)
	}
	if !m.CreatedAt.Equal(first) {
		t.Fatalf("duplicate create altered the document: created_at=%v", m.CreatedAt)
	}
}

func TestGetByTitleMissingIsNotAnError(t *testing.T) {
	r := newTestRepo()
	m, err := r.Movies.GetByTitle(context.Background(), "Nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil movie, got %+v", m)
	}
}

func TestListPagePagination(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	titles := []string{"m1", "m2", "m3", "m4", "m5"}
	for i, title := range titles {
		if err := r.Movies.Create(ctx, movieInfo(title), base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	var seen []string
	lastTitle := ""
	for {
		page, err := r.Movies.ListPage(ctx, lastTitle, 2)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page) > 2 {
			t.Fatalf("page exceeds limit: %d", len(page))
		}
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			seen = append(seen, m.MovieInfo.Title)
		}
		lastTitle = page[len(page)-1].MovieInfo.Title
	}

	want := []string{"m5", "m4", "m3", "m2", "m1"}
	if len(seen) != len(want) {
		t.Fatalf("paging skipped or duplicated items: %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestListPageUnknownCursorStartsOver(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	if err := r.Movies.Create(ctx, movieInfo("Solo"), time.Now()); err != nil {
		t.Fatalf("create: %v", err)
	}
	page, err := r.Movies.ListPage(ctx, "does-not-exist", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected first page, got %+v", page)
	}
}

func TestExistsReflectsCreateImmediately(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()

	// Warm the negative cache entry first.
	ok, err := r.Movies.Exists(ctx, "Foo")
	if err != nil || ok {
		t.Fatalf("expected absent movie, got ok=%v err=%v", ok, err)
	}
	if err := r.Movies.Create(ctx, movieInfo("Foo"), time.Now()); err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err = r.Movies.Exists(ctx, "Foo")
	if err != nil || !ok {
		t.Fatalf("create did not invalidate existence cache: ok=%v err=%v", ok, err)
	}
}

func TestSearchSubstringAndLimit(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	now := time.Now()
	movies := []model.MovieInfo{
		movieInfo("Space Battles", "action"),
		movieInfo("Deep Space Nine", "space opera"),
		movieInfo("Gardening 101", "space saving", "hobby"),
		movieInfo("Cooking Show", "food"),
	}
	for i, info := range movies {
		if err := r.Movies.Create(ctx, info, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	found, err := r.Movies.Search(ctx, "Space", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 title matches, got %+v", found)
	}

	// Tag substrings match too.
	found, err = r.Movies.Search(ctx, "space", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 tag matches, got %+v", found)
	}
	for _, m := range found {
		if !movieMatches(m.MovieInfo, "space") {
			t.Fatalf("result does not contain keyword: %+v", m.MovieInfo)
		}
	}

	// The scan stops at limit matches.
	found, err = r.Movies.Search(ctx, "o", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected at most limit results, got %d", len(found))
	}
}

func TestTop10OrderAndTruncation(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	now := time.Now()
	const date = "2024-05-01"
	for i := 0; i < 12; i++ {
		title := fmt.Sprintf("movie-%02d", i)
		if err := r.Movies.Create(ctx, movieInfo(title), now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("create: %v", err)
		}
		for j := 0; j <= i; j++ {
			if err := r.Movies.IncreaseDailyCounter(ctx, title, date); err != nil {
				t.Fatalf("counter: %v", err)
			}
		}
	}

	top, err := r.Movies.Top10(ctx, date)
	if err != nil {
		t.Fatalf("top10: %v", err)
	}
	if len(top) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(top))
	}
	if top[0].Counter != 12 || top[0].Title != "movie-11" {
		t.Fatalf("unexpected leader: %+v", top[0])
	}
	for i := 1; i < len(top); i++ {
		if top[i].Counter > top[i-1].Counter {
			t.Fatalf("rows not sorted by counter desc: %+v", top)
		}
	}
}

func TestTop10EmptyWhenNoCounters(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	if err := r.Movies.Create(ctx, movieInfo("Quiet"), time.Now()); err != nil {
		t.Fatalf("create: %v", err)
	}
	top, err := r.Movies.Top10(ctx, "2024-05-01")
	if err != nil {
		t.Fatalf("top10: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", top)
	}
}

func TestIncreaseDailyCounterConcurrent(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	if err := r.Movies.Create(ctx, movieInfo("Busy"), time.Now()); err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := r.Movies.IncreaseDailyCounter(ctx, "Busy", "2024-05-01"); err != nil {
				t.Errorf("increase: %v", err)
			}
		}()
	}
	wg.Wait()

	top, err := r.Movies.Top10(ctx, "2024-05-01")
	if err != nil {
		t.Fatalf("top10: %v", err)
	}
	if len(top) != 1 || top[0].Counter != n {
		t.Fatalf("expected counter %d, got %+v", n, top)
	}
}

func TestMovieLikeLifecycle(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo()
	if err := r.Movies.Create(ctx, movieInfo("Liked"), time.Now()); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, uid := range []string{"u1", "u2"} {
		if err := r.Movies.SetLike(ctx, "Liked", uid, true); err != nil {
			t.Fatalf("like: %v", err)
		}
	}
	// Re-liking is idempotent.
	if err := r.Movies.SetLike(ctx, "Liked", "u1", true); err != nil {
		t.Fatalf("re-like: %v", err)
	}
	n, err := r.Movies.LikeCount(ctx, "Liked")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 likes, got %d", n)
	}

	if err := r.Movies.SetLike(ctx, "Liked", "u1", false); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	n, _ = r.Movies.LikeCount(ctx, "Liked")
	if n != 1 {
		t.Fatalf("expected 1 like after unlike, got %d", n)
	}
}
