package server

import (
	"net/http"

	"github.com/Osteoporosis/movie-board-backend/internal/routes"
)

type Server struct {
	deps    routes.Deps
	origins []string
}

func New(deps routes.Deps, corsOrigins []string) *Server {
	return &Server{deps: deps, origins: corsOrigins}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	d := s.deps

	// Endpoints declared here for easy scanning
	mux.HandleFunc("GET /health", routes.Health(d))

	mux.HandleFunc("GET /movies/{$}", routes.Movies(d))
	mux.HandleFunc("POST /movies/add", routes.MovieAdd(d))
	mux.HandleFunc("GET /movies/top10", routes.MovieTop10(d))
	mux.HandleFunc("GET /movies/search/{keyword}/{$}", routes.MovieSearch(d))
	mux.HandleFunc("GET /movies/{title}/{$}", routes.MovieByTitle(d))
	mux.HandleFunc("POST /movies/{title}/increase_counter", routes.MovieIncreaseCounter(d))
	mux.HandleFunc("POST /movies/{title}/likes/like", routes.MovieLike(d))
	mux.HandleFunc("PUT /movies/{title}/likes/unlike", routes.MovieUnlike(d))
	mux.HandleFunc("GET /movies/{title}/likes/count", routes.MovieLikeCount(d))

	mux.HandleFunc("GET /movies/{title}/comments/{$}", routes.MovieComments(d))
	mux.HandleFunc("GET /movies/{title}/comments/count", routes.MovieCommentsCount(d))
	mux.HandleFunc("POST /movies/{title}/comments/add", routes.MovieCommentAdd(d))
	mux.HandleFunc("PUT /movies/{title}/comments/{id}/edit", routes.MovieCommentEdit(d))
	mux.HandleFunc("PUT /movies/{title}/comments/{id}/likes/like", routes.MovieCommentLike(d))
	mux.HandleFunc("PUT /movies/{title}/comments/{id}/likes/unlike", routes.MovieCommentUnlike(d))

	mux.HandleFunc("GET /users/me/favorites/{$}", routes.UserFavorites(d))
	mux.HandleFunc("POST /users/me/favorites/add", routes.UserFavoriteAdd(d))
	mux.HandleFunc("POST /users/me/favorites/{title}/remove", routes.UserFavoriteRemove(d))

	var h http.Handler = mux
	h = withSecurityHeaders(h)
	h = withCORS(s.origins)(h)
	return withCorrelationID(withLogging(h))
}
