package routes

import (
	"encoding/json"
	"net/http"

	pkghttpx "github.com/Osteoporosis/movie-board-backend/pkg/httpx"
)

// UserFavorites handles GET /users/me/favorites/. A user with no record
// simply has no favorites; nothing is created on read.
func UserFavorites(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUID(d, w, r)
		if !ok {
			return
		}
		writeFavorites(d, w, r, uid)
	}
}

// UserFavoriteAdd handles POST /users/me/favorites/add with body
// {"title": ...}. The movie must exist.
func UserFavoriteAdd(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUID(d, w, r)
		if !ok {
			return
		}
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("missing title", err))
			return
		}
		if !requireMovie(d, w, r, req.Title) {
			return
		}
		if err := d.Repo.Users.AddFavorite(r.Context(), uid, req.Title, d.Now()); err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to add favorite", err))
			return
		}
		writeFavorites(d, w, r, uid)
	}
}

// UserFavoriteRemove handles POST /users/me/favorites/{title}/remove.
// Removing a title that was never favorited is a no-op.
func UserFavoriteRemove(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUID(d, w, r)
		if !ok {
			return
		}
		title := r.PathValue("title")
		if !requireMovie(d, w, r, title) {
			return
		}
		if err := d.Repo.Users.RemoveFavorite(r.Context(), uid, title); err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to remove favorite", err))
			return
		}
		writeFavorites(d, w, r, uid)
	}
}

func writeFavorites(d Deps, w http.ResponseWriter, r *http.Request, uid string) {
	favorites, err := d.Repo.Users.Favorites(r.Context(), uid)
	if err != nil {
		pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to load favorites", err))
		return
	}
	pkghttpx.WriteJSON(w, http.StatusOK, map[string][]string{"favorites": favorites})
}
