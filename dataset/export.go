package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/christiemegill/social-media-analysis/models"
)

// csvHeader lists the export columns in schema order. The JSON and CSV
// exports carry exactly these fields under exactly these names.
var csvHeader = []string{
	"author",
	"text",
	"created_at",
	"likes",
	"reposts",
	"replies",
	"indexed_at",
	"has_media",
	"media_type",
	"is_reply",
	"hour_of_day",
	"day_of_week",
	"is_weekend",
	"word_count",
	"character_count",
}

// WriteJSON exports the dataset as an indented JSON array. An empty dataset
// writes [] rather than null.
func (d *Dataset) WriteJSON(path string) error {
	posts := d.posts
	if posts == nil {
		posts = []models.NormalizedPost{}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(posts); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	return file.Close()
}

// LoadJSON reads a previously exported dataset back into memory, preserving
// order. The stats and report commands run off such files.
func LoadJSON(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var posts []models.NormalizedPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}

	return &Dataset{posts: posts}, nil
}

// WriteCSV exports the dataset as a CSV table, one column per schema field.
// Absent optional values become empty cells.
func (d *Dataset) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		file.Close()
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, post := range d.posts {
		if err := writer.Write(csvRecord(post)); err != nil {
			file.Close()
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return file.Close()
}

func csvRecord(post models.NormalizedPost) []string {
	return []string{
		post.Author,
		post.Text,
		formatTime(post.CreatedAt),
		strconv.FormatInt(post.Likes, 10),
		strconv.FormatInt(post.Reposts, 10),
		strconv.FormatInt(post.Replies, 10),
		post.IndexedAt,
		strconv.FormatBool(post.HasMedia),
		stringValue(post.MediaType),
		strconv.FormatBool(post.IsReply),
		intValue(post.HourOfDay),
		stringValue(post.DayOfWeek),
		boolValue(post.IsWeekend),
		strconv.Itoa(post.WordCount),
		strconv.Itoa(post.CharacterCount),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intValue(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func boolValue(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
