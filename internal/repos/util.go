package repos

import (
	"time"

	"github.com/Osteoporosis/movie-board-backend/internal/model"
)

// Decoding helpers for document data maps. The store hands back loosely
// typed values (Firestore decodes arrays as []any), so every field read
// goes through one of these.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float64:
		return int64(x)
	}
	return 0
}

func asTime(v any) time.Time {
	t, _ := v.(time.Time)
	return t
}

func asStringSlice(v any) []string {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, asString(e))
		}
		return out
	}
	return nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func movieToDoc(m model.Movie) map[string]any {
	info := m.MovieInfo
	return map[string]any{
		"created_at": m.CreatedAt,
		"movie_info": map[string]any{
			"released_at":  info.ReleasedAt,
			"is_series":    info.IsSeries,
			"tags":         info.Tags,
			"episodes":     info.Episodes,
			"image_urls":   info.ImageURLs,
			"title":        info.Title,
			"description":  info.Description,
			"html_content": info.HTMLContent,
		},
	}
}

func movieFromDoc(data map[string]any) model.Movie {
	info := asMap(data["movie_info"])
	return model.Movie{
		CreatedAt: asTime(data["created_at"]),
		MovieInfo: model.MovieInfo{
			ReleasedAt:  asTime(info["released_at"]),
			IsSeries:    asBool(info["is_series"]),
			Tags:        asStringSlice(info["tags"]),
			Episodes:    asStringSlice(info["episodes"]),
			ImageURLs:   asStringSlice(info["image_urls"]),
			Title:       asString(info["title"]),
			Description: asString(info["description"]),
			HTMLContent: asString(info["html_content"]),
		},
	}
}

func historiesToDoc(hs []model.TimestampedComment) []map[string]any {
	out := make([]map[string]any, 0, len(hs))
	for _, h := range hs {
		out = append(out, map[string]any{
			"created_at": h.CreatedAt,
			"comment":    h.Comment,
		})
	}
	return out
}

func historiesFromDoc(v any) []model.TimestampedComment {
	var out []model.TimestampedComment
	appendOne := func(m map[string]any) {
		out = append(out, model.TimestampedComment{
			CreatedAt: asTime(m["created_at"]),
			Comment:   asString(m["comment"]),
		})
	}
	switch x := v.(type) {
	case []map[string]any:
		for _, m := range x {
			appendOne(m)
		}
	case []any:
		for _, e := range x {
			appendOne(asMap(e))
		}
	}
	return out
}

func commentToDoc(c model.Comment) map[string]any {
	return map[string]any{
		"author":            c.Author,
		"created_at":        c.CreatedAt,
		"comment_histories": historiesToDoc(c.Histories),
		"title":             c.Title,
	}
}

func commentFromDoc(id string, data map[string]any) model.Comment {
	return model.Comment{
		ID:        id,
		Author:    asString(data["author"]),
		CreatedAt: asTime(data["created_at"]),
		Histories: historiesFromDoc(data["comment_histories"]),
		Title:     asString(data["title"]),
	}
}
