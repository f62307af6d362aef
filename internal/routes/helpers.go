package routes

import (
	"net/http"
	"strconv"
	"strings"

	pkghttpx "github.com/Osteoporosis/movie-board-backend/pkg/httpx"
)

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// requireUID resolves the caller's identity, writing a 401 on failure.
func requireUID(d Deps, w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, err := d.Auth.Verify(r.Context(), bearerToken(r))
	if err != nil {
		pkghttpx.WriteError(w, r, pkghttpx.Unauthorized("invalid or missing identity token", err))
		return "", false
	}
	return uid, true
}

// requireMovie checks the target movie exists, writing a 404 otherwise.
func requireMovie(d Deps, w http.ResponseWriter, r *http.Request, title string) bool {
	ok, err := d.Repo.Movies.Exists(r.Context(), title)
	if err != nil {
		pkghttpx.WriteError(w, r, pkghttpx.Internal("failed to check movie", err))
		return false
	}
	if !ok {
		pkghttpx.WriteError(w, r, pkghttpx.NotFound("unknown movie: "+title, nil))
		return false
	}
	return true
}

// parseLimit reads the limit query param. Missing defaults to max, values
// above max are clamped, anything below 1 is rejected.
func parseLimit(r *http.Request, max int) (int, *pkghttpx.HTTPError) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return max, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, pkghttpx.BadRequest("invalid limit", err)
	}
	if n > max {
		n = max
	}
	return n, nil
}
