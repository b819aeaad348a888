package dataset

import "github.com/christiemegill/social-media-analysis/models"

// Dataset accumulates normalized posts in collection order. Appends only;
// duplicates stay. A run writes from a single goroutine and reads after
// collection, no locking.
type Dataset struct {
	posts   []models.NormalizedPost
	skipped int
}

func New() *Dataset {
	return &Dataset{posts: []models.NormalizedPost{}}
}

// Append adds one post to the end of the dataset.
func (d *Dataset) Append(post models.NormalizedPost) {
	d.posts = append(d.posts, post)
}

// All returns a snapshot copy of the posts in insertion order.
func (d *Dataset) All() []models.NormalizedPost {
	out := make([]models.NormalizedPost, len(d.posts))
	copy(out, d.posts)
	return out
}

func (d *Dataset) Count() int {
	return len(d.posts)
}

// AddSkipped records feed items that could not be normalized.
func (d *Dataset) AddSkipped(n int) {
	d.skipped += n
}

func (d *Dataset) Skipped() int {
	return d.skipped
}
