package repos

import (
	"github.com/Osteoporosis/movie-board-backend/pkg/cache"
	"github.com/Osteoporosis/movie-board-backend/pkg/docstore"
)

// Repository bundles the per-entity repos over one document store handle.
type Repository struct {
	store docstore.Store

	Movies   *MoviesRepo
	Comments *CommentsRepo
	Users    *UsersRepo
}

// New builds the repository. The cache is used only for movie-existence
// memoization and is invalidated on catalog writes.
func New(store docstore.Store, c cache.Cache) *Repository {
	r := &Repository{store: store}
	r.Movies = &MoviesRepo{store: store, cache: c}
	r.Comments = &CommentsRepo{store: store}
	r.Users = &UsersRepo{store: store}
	return r
}
