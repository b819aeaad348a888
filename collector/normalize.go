package collector

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bluesky-social/indigo/atproto/syntax"

	"github.com/christiemegill/social-media-analysis/bluesky"
	"github.com/christiemegill/social-media-analysis/models"
)

// errNoPost marks a feed item without a post object. It is the only
// condition that skips an item instead of degrading fields to defaults.
var errNoPost = errors.New("feed item carries no post")

// Normalize maps one feed item onto the analysis schema. It does no I/O and
// never fails on individual missing fields; anything the server omitted
// degrades to the documented default.
func Normalize(item *bluesky.FeedItem, author string) (models.NormalizedPost, error) {
	if item == nil || item.Post == nil {
		return models.NormalizedPost{}, errNoPost
	}

	view := item.Post
	post := models.NormalizedPost{
		Author:    author,
		Likes:     counterValue(view.LikeCount),
		Reposts:   counterValue(view.RepostCount),
		Replies:   counterValue(view.ReplyCount),
		IndexedAt: view.IndexedAt,
	}

	if view.Record != nil {
		post.Text = view.Record.Text
		post.IsReply = view.Record.Reply != nil

		if createdAt, ok := parseCreatedAt(view.Record.CreatedAt); ok {
			hour := createdAt.Hour()
			day := createdAt.Weekday().String()
			weekend := createdAt.Weekday() == time.Saturday || createdAt.Weekday() == time.Sunday

			post.CreatedAt = &createdAt
			post.HourOfDay = &hour
			post.DayOfWeek = &day
			post.IsWeekend = &weekend
		}
	}

	post.WordCount = len(strings.Fields(post.Text))
	post.CharacterCount = utf8.RuneCountInString(post.Text)

	if view.HasEmbed() {
		mediaType := classifyEmbed(view.EmbedType())
		post.HasMedia = true
		post.MediaType = &mediaType
	}

	return post, nil
}

// counterValue treats an engagement counter the server omitted as zero.
func counterValue(count *int64) int64 {
	if count == nil {
		return 0
	}
	return *count
}

// parseCreatedAt reads an atproto datetime leniently and reports it in UTC.
// A value that will not parse leaves created_at and every derived timing
// field absent.
func parseCreatedAt(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	parsed, err := syntax.ParseDatetimeLenient(raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.Time().UTC(), true
}

// classifyEmbed maps an embed $type tag onto the media vocabulary. Matching
// is a case-insensitive substring check with a fixed priority order; a tag
// that matches nothing still counts as media of kind "other".
func classifyEmbed(tag string) string {
	tag = strings.ToLower(tag)
	switch {
	case strings.Contains(tag, "video"):
		return models.MediaVideo
	case strings.Contains(tag, "image"):
		return models.MediaImage
	case strings.Contains(tag, "record"):
		return models.MediaQuote
	case strings.Contains(tag, "external"):
		return models.MediaLink
	default:
		return models.MediaOther
	}
}
