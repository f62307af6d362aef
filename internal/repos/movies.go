package repos

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Osteoporosis/movie-board-backend/internal/model"
	"github.com/Osteoporosis/movie-board-backend/pkg/cache"
	"github.com/Osteoporosis/movie-board-backend/pkg/docstore"
)

const (
	moviesCol        = "movies"
	likesCol         = "likes"
	dailyCountersCol = "daily_counters"

	existsKeyPrefix = "movie_exists:"
	existsTTL       = 5 * time.Minute
)

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrMovieExists   = errors.New("movie already exists")
)

type MoviesRepo struct {
	store docstore.Store
	cache cache.Cache
}

// ListPage returns movies ordered by creation time descending. A non-empty
// lastTitle is resolved to that movie's created_at and the page starts
// strictly after it; an unknown lastTitle yields the first page, matching
// the cursor contract for deleted or bogus cursors.
func (r *MoviesRepo) ListPage(ctx context.Context, lastTitle string, limit int) ([]model.Movie, error) {
	q := docstore.Query{OrderBy: "created_at", Desc: true, Limit: limit}
	if lastTitle != "" {
		doc, err := r.store.Get(ctx, moviesCol, lastTitle)
		if err == nil {
			q.StartAfter = doc.Data["created_at"]
		} else if !errors.Is(err, docstore.ErrNotFound) {
			return nil, err
		}
	}
	docs, err := r.store.Query(ctx, q, moviesCol)
	if err != nil {
		return nil, err
	}
	out := make([]model.Movie, 0, len(docs))
	for _, d := range docs {
		out = append(out, movieFromDoc(d.Data))
	}
	return out, nil
}

// GetByTitle returns nil without error when the movie does not exist; an
// absent movie is not an error on this read path.
func (r *MoviesRepo) GetByTitle(ctx context.Context, title string) (*model.Movie, error) {
	doc, err := r.store.Get(ctx, moviesCol, title)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := movieFromDoc(doc.Data)
	return &m, nil
}

// Exists is the hot existence check guarding most movie-scoped routes.
// Results are memoized in the cache; Create invalidates the entry, so a
// new movie is visible immediately.
func (r *MoviesRepo) Exists(ctx context.Context, title string) (bool, error) {
	key := existsKeyPrefix + title
	if v, ok := r.cache.Get(ctx, key); ok {
		return v == "1", nil
	}
	_, err := r.store.Get(ctx, moviesCol, title)
	switch {
	case err == nil:
		_ = r.cache.Set(ctx, key, "1", existsTTL)
		return true, nil
	case errors.Is(err, docstore.ErrNotFound):
		_ = r.cache.Set(ctx, key, "0", existsTTL)
		return false, nil
	}
	return false, err
}

// Create inserts a movie keyed by its title. Duplicate titles fail with
// ErrMovieExists and leave the existing document untouched.
func (r *MoviesRepo) Create(ctx context.Context, info model.MovieInfo, now time.Time) error {
	movie := model.Movie{CreatedAt: now, MovieInfo: info}
	err := r.store.Create(ctx, movieToDoc(movie), moviesCol, info.Title)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return ErrMovieExists
	}
	if err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, existsKeyPrefix+info.Title)
	return nil
}

// Search scans every movie and keeps those whose title or tags contain the
// keyword as a substring, stopping once limit matches are collected.
// Unindexed and O(catalog); acceptable only at small scale.
func (r *MoviesRepo) Search(ctx context.Context, keyword string, limit int) ([]model.Movie, error) {
	docs, err := r.store.Query(ctx, docstore.Query{}, moviesCol)
	if err != nil {
		return nil, err
	}
	matches := make([]model.Movie, 0, limit)
	for _, d := range docs {
		if len(matches) >= limit {
			break
		}
		m := movieFromDoc(d.Data)
		if movieMatches(m.MovieInfo, keyword) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func movieMatches(info model.MovieInfo, keyword string) bool {
	if strings.Contains(info.Title, keyword) {
		return true
	}
	for _, tag := range info.Tags {
		if strings.Contains(tag, keyword) {
			return true
		}
	}
	return false
}

// Top10 reads the given date's counter for every movie and returns the ten
// highest, counter descending then title descending. Movies with no
// counter, or a zero one, are skipped. Full scan per call; not fit for
// production load.
func (r *MoviesRepo) Top10(ctx context.Context, date string) ([]model.TopMovie, error) {
	docs, err := r.store.Query(ctx, docstore.Query{}, moviesCol)
	if err != nil {
		return nil, err
	}
	results := make([]model.TopMovie, 0, len(docs))
	for _, d := range docs {
		title := asString(asMap(d.Data["movie_info"])["title"])
		counterDoc, err := r.store.Get(ctx, moviesCol, title, dailyCountersCol, date)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if counter := asInt64(counterDoc.Data["counter"]); counter > 0 {
			results = append(results, model.TopMovie{Counter: counter, Title: title})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Counter != results[j].Counter {
			return results[i].Counter > results[j].Counter
		}
		return results[i].Title > results[j].Title
	})
	if len(results) > 10 {
		results = results[:10]
	}
	return results, nil
}

// IncreaseDailyCounter bumps the (movie, date) view counter. The zero
// document is created at most once; a concurrent creation losing the race
// is silently ignored. The +1 itself is a store-side atomic increment, so
// concurrent bumps are never lost.
func (r *MoviesRepo) IncreaseDailyCounter(ctx context.Context, title, date string) error {
	err := r.store.Create(ctx, map[string]any{"counter": int64(0)}, moviesCol, title, dailyCountersCol, date)
	if err != nil && !errors.Is(err, docstore.ErrAlreadyExists) {
		return err
	}
	return r.store.Increment(ctx, "counter", 1, moviesCol, title, dailyCountersCol, date)
}

// SetLike upserts the caller's like document for the movie. One document
// per (movie, user) keeps concurrent toggles by different users from
// overwriting each other.
func (r *MoviesRepo) SetLike(ctx context.Context, title, uid string, valid bool) error {
	return r.store.Set(ctx, map[string]any{"is_valid": valid}, moviesCol, title, likesCol, uid)
}

// LikeCount counts valid like documents with a server-side aggregate.
func (r *MoviesRepo) LikeCount(ctx context.Context, title string) (int64, error) {
	q := docstore.Query{Filters: []docstore.Filter{{Field: "is_valid", Op: "==", Value: true}}}
	return r.store.Count(ctx, q, moviesCol, title, likesCol)
}
