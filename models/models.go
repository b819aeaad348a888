package models

import "time"

// Media classes derived from a post's embed descriptor. A post without an
// embed carries no media class at all (MediaType stays nil).
const (
	MediaVideo = "video"
	MediaImage = "image"
	MediaQuote = "quote"
	MediaLink  = "link"
	MediaOther = "other"
)

// NormalizedPost is the canonical unit a collection run stores. The json
// tags double as the export schema for both the JSON and CSV writers;
// optional fields are pointers so data the server omitted survives an
// export/reload round trip as null instead of a zero value.
type NormalizedPost struct {
	Author         string     `json:"author"`
	Text           string     `json:"text"`
	CreatedAt      *time.Time `json:"created_at"`
	Likes          int64      `json:"likes"`
	Reposts        int64      `json:"reposts"`
	Replies        int64      `json:"replies"`
	IndexedAt      string     `json:"indexed_at"`
	HasMedia       bool       `json:"has_media"`
	MediaType      *string    `json:"media_type"`
	IsReply        bool       `json:"is_reply"`
	HourOfDay      *int       `json:"hour_of_day"`
	DayOfWeek      *string    `json:"day_of_week"`
	IsWeekend      *bool      `json:"is_weekend"`
	WordCount      int        `json:"word_count"`
	CharacterCount int        `json:"character_count"`
}

// Engagement is the combined interaction count on a post.
func (p NormalizedPost) Engagement() int64 {
	return p.Likes + p.Reposts + p.Replies
}
