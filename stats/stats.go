package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/christiemegill/social-media-analysis/models"
)

// DefaultTopN is how many posts the top-engagement table keeps when the
// caller does not say otherwise.
const DefaultTopN = 10

// Summary holds the whole-dataset aggregates.
type Summary struct {
	Posts         int     `json:"posts"`
	Authors       int     `json:"authors"`
	ReplyPosts    int     `json:"reply_posts"`
	MediaPosts    int     `json:"media_posts"`
	TotalLikes    int64   `json:"total_likes"`
	TotalReposts  int64   `json:"total_reposts"`
	TotalReplies  int64   `json:"total_replies"`
	AvgLikes      float64 `json:"avg_likes"`
	AvgReposts    float64 `json:"avg_reposts"`
	AvgReplies    float64 `json:"avg_replies"`
	AvgWords      float64 `json:"avg_words"`
	MaxLikes      int64   `json:"max_likes"`
	MaxEngagement int64   `json:"max_engagement"`
}

// Bucket is one row of a grouped aggregation.
type Bucket struct {
	Label         string  `json:"label"`
	Posts         int     `json:"posts"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// Overview bundles everything the stats and report commands consume.
type Overview struct {
	Summary   Summary                 `json:"summary"`
	ByHour    []Bucket                `json:"by_hour"`
	ByWeekday []Bucket                `json:"by_weekday"`
	ByMedia   []Bucket                `json:"by_media"`
	TopPosts  []models.NormalizedPost `json:"top_posts"`
}

// weekdayOrder fixes the weekday table to start the week on Monday.
var weekdayOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// mediaOrder fixes the media table to the classification priority order.
var mediaOrder = []string{
	models.MediaVideo,
	models.MediaImage,
	models.MediaQuote,
	models.MediaLink,
	models.MediaOther,
}

// Compute aggregates a dataset. ByHour always carries 24 buckets and
// ByWeekday 7; posts without a parsed timestamp stay out of the timing
// tables, and ByMedia only lists observed kinds.
func Compute(posts []models.NormalizedPost, topN int) Overview {
	if topN <= 0 {
		topN = DefaultTopN
	}

	summary := Summary{
		Posts:        len(posts),
		Authors:      len(lo.UniqBy(posts, func(p models.NormalizedPost) string { return p.Author })),
		ReplyPosts:   lo.CountBy(posts, func(p models.NormalizedPost) bool { return p.IsReply }),
		MediaPosts:   lo.CountBy(posts, func(p models.NormalizedPost) bool { return p.HasMedia }),
		TotalLikes:   lo.SumBy(posts, func(p models.NormalizedPost) int64 { return p.Likes }),
		TotalReposts: lo.SumBy(posts, func(p models.NormalizedPost) int64 { return p.Reposts }),
		TotalReplies: lo.SumBy(posts, func(p models.NormalizedPost) int64 { return p.Replies }),
	}

	if len(posts) > 0 {
		count := float64(len(posts))
		summary.AvgLikes = float64(summary.TotalLikes) / count
		summary.AvgReposts = float64(summary.TotalReposts) / count
		summary.AvgReplies = float64(summary.TotalReplies) / count
		summary.AvgWords = float64(lo.SumBy(posts, func(p models.NormalizedPost) int { return p.WordCount })) / count

		mostLiked := lo.MaxBy(posts, func(a models.NormalizedPost, b models.NormalizedPost) bool {
			return a.Likes > b.Likes
		})
		summary.MaxLikes = mostLiked.Likes

		mostEngaged := lo.MaxBy(posts, func(a models.NormalizedPost, b models.NormalizedPost) bool {
			return a.Engagement() > b.Engagement()
		})
		summary.MaxEngagement = mostEngaged.Engagement()
	}

	return Overview{
		Summary:   summary,
		ByHour:    hourBuckets(posts),
		ByWeekday: weekdayBuckets(posts),
		ByMedia:   mediaBuckets(posts),
		TopPosts:  topPosts(posts, topN),
	}
}

func hourBuckets(posts []models.NormalizedPost) []Bucket {
	timed := lo.Filter(posts, func(p models.NormalizedPost, _ int) bool { return p.HourOfDay != nil })
	grouped := lo.GroupBy(timed, func(p models.NormalizedPost) int { return *p.HourOfDay })

	buckets := make([]Bucket, 0, 24)
	for hour := 0; hour < 24; hour++ {
		buckets = append(buckets, newBucket(fmt.Sprintf("%02d:00", hour), grouped[hour]))
	}
	return buckets
}

func weekdayBuckets(posts []models.NormalizedPost) []Bucket {
	timed := lo.Filter(posts, func(p models.NormalizedPost, _ int) bool { return p.DayOfWeek != nil })
	grouped := lo.GroupBy(timed, func(p models.NormalizedPost) string { return *p.DayOfWeek })

	buckets := make([]Bucket, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		buckets = append(buckets, newBucket(day.String(), grouped[day.String()]))
	}
	return buckets
}

func mediaBuckets(posts []models.NormalizedPost) []Bucket {
	withMedia := lo.Filter(posts, func(p models.NormalizedPost, _ int) bool { return p.MediaType != nil })
	grouped := lo.GroupBy(withMedia, func(p models.NormalizedPost) string { return *p.MediaType })

	buckets := make([]Bucket, 0, len(grouped))
	for _, kind := range mediaOrder {
		group, ok := grouped[kind]
		if !ok {
			continue
		}
		buckets = append(buckets, newBucket(kind, group))
	}
	return buckets
}

func newBucket(label string, group []models.NormalizedPost) Bucket {
	bucket := Bucket{Label: label, Posts: len(group)}
	if len(group) > 0 {
		total := lo.SumBy(group, func(p models.NormalizedPost) int64 { return p.Engagement() })
		bucket.AvgEngagement = float64(total) / float64(len(group))
	}
	return bucket
}

// topPosts returns the n most engaged posts, ties kept in dataset order.
func topPosts(posts []models.NormalizedPost, n int) []models.NormalizedPost {
	sorted := make([]models.NormalizedPost, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Engagement() > sorted[j].Engagement()
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
