package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Osteoporosis/movie-board-backend/internal/model"
	"github.com/Osteoporosis/movie-board-backend/internal/repos"

	pkghttpx "github.com/Osteoporosis/movie-board-backend/pkg/httpx"
)

// Movies handles GET /movies/ (paginated list, newest first).
func Movies(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, herr := parseLimit(r, d.MaxResults)
		if herr != nil {
			pkghttpx.WriteError(w, r, herr)
			return
		}
		lastTitle := r.URL.Query().Get("last_title")
		movies, err := d.Repo.Movies.ListPage(r.Context(), lastTitle, limit)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to list movies", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, movies)
	}
}

// MovieAdd handles POST /movies/add. Admin only.
func MovieAdd(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUID(d, w, r)
		if !ok {
			return
		}
		if uid != d.AdminUID {
			pkghttpx.WriteError(w, r, pkghttpx.Forbidden("admin only", nil))
			return
		}
		var info model.MovieInfo
		if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		if strings.TrimSpace(info.Title) == "" {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("missing title", nil))
			return
		}
		if err := d.Repo.Movies.Create(r.Context(), info, d.Now()); err != nil {
			if errors.Is(err, repos.ErrMovieExists) {
				pkghttpx.WriteError(w, r, pkghttpx.Conflict("movie already exists", err))
				return
			}
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to add movie", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "done"})
	}
}

// MovieByTitle handles GET /movies/{title}/. A missing movie is not an
// error on this path: the response body is null.
func MovieByTitle(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movie, err := d.Repo.Movies.GetByTitle(r.Context(), r.PathValue("title"))
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to get movie", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, movie)
	}
}

// MovieSearch handles GET /movies/search/{keyword}/. Authenticated;
// unindexed full scan over titles and tags.
func MovieSearch(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUID(d, w, r); !ok {
			return
		}
		keyword := strings.TrimSpace(r.PathValue("keyword"))
		if len(keyword) < d.MinKeywordLength {
			pkghttpx.WriteError(w, r, pkghttpx.BadRequest("the keyword is too short", nil))
			return
		}
		limit, herr := parseLimit(r, d.MaxResults)
		if herr != nil {
			pkghttpx.WriteError(w, r, herr)
			return
		}
		movies, err := d.Repo.Movies.Search(r.Context(), keyword, limit)
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to search movies", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]any{"movies": movies})
	}
}

// MovieTop10 handles GET /movies/top10: today's most viewed movies as
// [counter, title] pairs. Scans the whole catalog per request; dev-only
// quality, not meant for production traffic.
func MovieTop10(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := d.Repo.Movies.Top10(r.Context(), d.Today())
		if err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to build top10", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, results)
	}
}

// MovieIncreaseCounter handles POST /movies/{title}/increase_counter.
func MovieIncreaseCounter(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := r.PathValue("title")
		if !requireMovie(d, w, r, title) {
			return
		}
		if err := d.Repo.Movies.IncreaseDailyCounter(r.Context(), title, d.Today()); err != nil {
			pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to increase counter", err))
			return
		}
		pkghttpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "done"})
	}
}
