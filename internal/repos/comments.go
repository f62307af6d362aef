package repos

import (
	"context"
	"errors"
	"time"

	"github.com/Osteoporosis/movie-board-backend/internal/model"
	"github.com/Osteoporosis/movie-board-backend/pkg/docstore"
)

const commentsCol = "comments"

var ErrCommentNotFound = errors.New("comment not found")

type CommentsRepo struct {
	store docstore.Store
}

// ListPage returns a movie's comments ordered by creation time descending,
// paged the same way as the movie list: lastID resolves to the cursor
// comment's created_at, and the page starts strictly after it. An unknown
// movie simply has no comments.
func (r *CommentsRepo) ListPage(ctx context.Context, title, lastID string, limit int) ([]model.Comment, error) {
	q := docstore.Query{OrderBy: "created_at", Desc: true, Limit: limit}
	if lastID != "" {
		doc, err := r.store.Get(ctx, moviesCol, title, commentsCol, lastID)
		if err == nil {
			q.StartAfter = doc.Data["created_at"]
		} else if !errors.Is(err, docstore.ErrNotFound) {
			return nil, err
		}
	}
	docs, err := r.store.Query(ctx, q, moviesCol, title, commentsCol)
	if err != nil {
		return nil, err
	}
	out := make([]model.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, commentFromDoc(d.ID, d.Data))
	}
	return out, nil
}

// Count returns the movie's comment count via a server-side aggregate.
func (r *CommentsRepo) Count(ctx context.Context, title string) (int64, error) {
	return r.store.Count(ctx, docstore.Query{}, moviesCol, title, commentsCol)
}

// Add creates a comment with a single-entry history and returns its id.
func (r *CommentsRepo) Add(ctx context.Context, title, author, text string, now time.Time) (string, error) {
	c := model.Comment{
		Author:    author,
		CreatedAt: now,
		Histories: []model.TimestampedComment{{CreatedAt: now, Comment: text}},
		Title:     title,
	}
	return r.store.Add(ctx, commentToDoc(c), moviesCol, title, commentsCol)
}

func (r *CommentsRepo) Get(ctx context.Context, title, id string) (model.Comment, error) {
	doc, err := r.store.Get(ctx, moviesCol, title, commentsCol, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return model.Comment{}, ErrCommentNotFound
	}
	if err != nil {
		return model.Comment{}, err
	}
	return commentFromDoc(id, doc.Data), nil
}

// AppendHistory persists the full updated history sequence. Histories only
// grow; validation of who may append, and of no-op edits, happens at the
// handler.
func (r *CommentsRepo) AppendHistory(ctx context.Context, title, id string, histories []model.TimestampedComment) error {
	err := r.store.Update(ctx, "comment_histories", historiesToDoc(histories), moviesCol, title, commentsCol, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrCommentNotFound
	}
	return err
}

// SetLike upserts the caller's like document under the comment, mirroring
// the movie-level like layout: one document per (comment, user), so
// concurrent likes by different users cannot lose updates.
func (r *CommentsRepo) SetLike(ctx context.Context, title, commentID, uid string, valid bool) error {
	return r.store.Set(ctx, map[string]any{"is_valid": valid}, moviesCol, title, commentsCol, commentID, likesCol, uid)
}

// LikeCount counts valid like documents for the comment.
func (r *CommentsRepo) LikeCount(ctx context.Context, title, commentID string) (int64, error) {
	q := docstore.Query{Filters: []docstore.Filter{{Field: "is_valid", Op: "==", Value: true}}}
	return r.store.Count(ctx, q, moviesCol, title, commentsCol, commentID, likesCol)
}
