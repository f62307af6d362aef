package repos

import (
	"context"
	"time"

	"github.com/Osteoporosis/movie-board-backend/pkg/docstore"
)

const (
	usersCol     = "users"
	favoritesCol = "favorites"
)

type UsersRepo struct {
	store docstore.Store
}

// Favorites returns the caller's favorite movie titles. Favorites are one
// document per (user, title) keyed by the title, so a user with none simply
// has an empty subcollection; no user document is created on read.
func (r *UsersRepo) Favorites(ctx context.Context, uid string) ([]string, error) {
	docs, err := r.store.Query(ctx, docstore.Query{}, usersCol, uid, favoritesCol)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(docs))
	for _, d := range docs {
		titles = append(titles, d.ID)
	}
	return titles, nil
}

// AddFavorite is an idempotent upsert; re-adding only refreshes added_at.
func (r *UsersRepo) AddFavorite(ctx context.Context, uid, title string, now time.Time) error {
	data := map[string]any{"title": title, "added_at": now}
	return r.store.Set(ctx, data, usersCol, uid, favoritesCol, title)
}

// RemoveFavorite is a no-op when the title was never favorited.
func (r *UsersRepo) RemoveFavorite(ctx context.Context, uid, title string) error {
	return r.store.Delete(ctx, usersCol, uid, favoritesCol, title)
}
