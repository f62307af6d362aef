package model

import (
	"encoding/json"
	"time"
)

// MovieInfo is the admin-supplied description of a catalog entry. Title
// doubles as the document key and is immutable once created.
type MovieInfo struct {
	ReleasedAt  time.Time `json:"released_at"`
	IsSeries    bool      `json:"is_series"`
	Tags        []string  `json:"tags"`
	Episodes    []string  `json:"episodes"`
	ImageURLs   []string  `json:"image_urls"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HTMLContent string    `json:"html_content"`
}

type Movie struct {
	CreatedAt time.Time `json:"created_at"`
	MovieInfo MovieInfo `json:"movie_info"`
}

// TimestampedComment is one entry of a comment's append-only history.
// The current text of a comment is its last entry.
type TimestampedComment struct {
	CreatedAt time.Time `json:"created_at"`
	Comment   string    `json:"comment"`
}

// Comment is the stored comment document. Likes live in a per-user
// subcollection, not on the comment itself.
type Comment struct {
	ID        string               `json:"-"`
	Author    string               `json:"author"`
	CreatedAt time.Time            `json:"created_at"`
	Histories []TimestampedComment `json:"comment_histories"`
	Title     string               `json:"title"`
}

// Latest returns the current text entry, i.e. the last history element.
func (c Comment) Latest() TimestampedComment {
	if len(c.Histories) == 0 {
		return TimestampedComment{}
	}
	return c.Histories[len(c.Histories)-1]
}

// CommentView is the read-side shape of a comment: anonymized author,
// like count and only the latest history entry.
type CommentView struct {
	CommentID          string             `json:"comment_id"`
	Author             string             `json:"author"`
	CreatedAt          time.Time          `json:"created_at"`
	Likes              int64              `json:"likes"`
	TimestampedComment TimestampedComment `json:"timestamped_comment"`
	Title              string             `json:"title"`
}

// TopMovie is one leaderboard row. It marshals as a [counter, title] pair
// to keep the daily-top response compact.
type TopMovie struct {
	Counter int64
	Title   string
}

func (t TopMovie) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{t.Counter, t.Title})
}

func (t *TopMovie) UnmarshalJSON(b []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &t.Counter); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &t.Title)
}
