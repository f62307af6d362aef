package routes

import (
	"time"

	"github.com/Osteoporosis/movie-board-backend/internal/identity"
	"github.com/Osteoporosis/movie-board-backend/internal/repos"
	"github.com/Osteoporosis/movie-board-backend/pkg/digest"
)

// Deps holds the read-only values every request handler needs. It is built
// once at startup and passed into each handler constructor; there is no
// module-level state.
type Deps struct {
	Repo       *repos.Repository
	Auth       identity.Verifier
	Anonymizer *digest.Anonymizer

	AdminUID         string
	MaxResults       int
	MinKeywordLength int
	TimeZone         *time.Location

	Name      string
	StartedAt time.Time
}

// Now returns the current time in the board's configured time zone.
func (d Deps) Now() time.Time { return time.Now().In(d.TimeZone) }

// Today is the calendar-date bucket used for daily view counters.
func (d Deps) Today() string { return d.Now().Format("2006-01-02") }
