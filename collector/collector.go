package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/christiemegill/social-media-analysis/bluesky"
	"github.com/christiemegill/social-media-analysis/dataset"
)

const (
	// DefaultPageSize matches the getAuthorFeed server cap.
	DefaultPageSize = 100

	// DefaultPageDelay spaces feed requests so a run stays well inside the
	// public PDS rate limits.
	DefaultPageDelay = 500 * time.Millisecond
)

// Config tunes a collection run. Zero values fall back to the defaults, and
// a zero MaxRounds derives the cap from Limit and PageSize.
type Config struct {
	// Limit is the number of posts to collect per account.
	Limit int
	// PageSize is the request size per feed page, capped at 100.
	PageSize int
	// PageDelay is the fixed pause between feed requests.
	PageDelay time.Duration
	// MaxRounds bounds the pagination loop per account.
	MaxRounds int
}

// Collector drains author feeds page by page into a dataset, one account at
// a time. A single limiter paces every request it makes, across account
// boundaries.
type Collector struct {
	client  *bluesky.Client
	dataset *dataset.Dataset
	limiter *rate.Limiter

	limit     int
	pageSize  int
	maxRounds int
}

func New(client *bluesky.Client, ds *dataset.Dataset, cfg Config) *Collector {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > bluesky.MaxFeedPageSize {
		pageSize = DefaultPageSize
	}

	delay := cfg.PageDelay
	if delay <= 0 {
		delay = DefaultPageDelay
	}

	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds(cfg.Limit, pageSize)
	}

	return &Collector{
		client:    client,
		dataset:   ds,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
		limit:     cfg.Limit,
		pageSize:  pageSize,
		maxRounds: maxRounds,
	}
}

// defaultMaxRounds allows twice the rounds a full-page server would need,
// plus slack for sparse pages.
func defaultMaxRounds(limit int, pageSize int) int {
	need := (limit + pageSize - 1) / pageSize
	return 2*need + 8
}

// Collect drains every handle in order. A handle that does not resolve is
// logged and skipped so the remaining accounts still run; any other error
// aborts the whole run.
func (c *Collector) Collect(ctx context.Context, handles []string) error {
	for _, handle := range handles {
		did, err := c.client.ResolveHandle(ctx, handle)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var resolutionErr *bluesky.ResolutionError
			if errors.As(err, &resolutionErr) {
				log.WithFields(log.Fields{
					"handle": handle,
					"error":  err,
				}).Warn("Skipping account, handle did not resolve")
				continue
			}
			return err
		}

		log.WithFields(log.Fields{
			"handle": handle,
			"did":    did,
		}).Info("Collecting account")

		collected, skipped, err := c.CollectAccount(ctx, did, handle)
		if err != nil {
			return fmt.Errorf("failed to collect posts for %s: %w", handle, err)
		}

		log.WithFields(log.Fields{
			"handle":    handle,
			"collected": collected,
			"skipped":   skipped,
		}).Info("Account done")
	}

	return nil
}

// CollectAccount pages through one author feed until the configured number
// of posts is collected, the feed ends, or the round cap trips. A failed
// page ends the account early but keeps everything collected so far; only a
// cancelled context surfaces as an error.
func (c *Collector) CollectAccount(ctx context.Context, actor string, author string) (int, int, error) {
	collected := 0
	skipped := 0
	cursor := ""
	rounds := 0

	for collected < c.limit {
		if rounds >= c.maxRounds {
			log.WithFields(log.Fields{
				"author":    author,
				"rounds":    rounds,
				"collected": collected,
			}).Warn("Round cap hit before the feed ended")
			break
		}
		rounds++

		if err := c.limiter.Wait(ctx); err != nil {
			return collected, skipped, err
		}

		pageLimit := c.pageSize
		if remaining := c.limit - collected; remaining < pageLimit {
			pageLimit = remaining
		}

		page, err := c.client.GetAuthorFeed(ctx, actor, pageLimit, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return collected, skipped, ctx.Err()
			}
			log.WithFields(log.Fields{
				"author": author,
				"cursor": cursor,
				"error":  err,
			}).Warn("Page fetch failed, keeping posts collected so far")
			break
		}

		for i := range page.Feed {
			if collected >= c.limit {
				break
			}

			post, err := Normalize(&page.Feed[i], author)
			if err != nil {
				skipped++
				log.WithFields(log.Fields{
					"author": author,
					"error":  err,
				}).Debug("Skipping feed item")
				continue
			}

			c.dataset.Append(post)
			collected++
		}

		// An empty page only ends the feed when the cursor is gone too;
		// the server filters pages and may hand back nothing but a cursor.
		if page.Cursor == nil || *page.Cursor == "" {
			break
		}
		cursor = *page.Cursor
	}

	if skipped > 0 {
		c.dataset.AddSkipped(skipped)
	}

	return collected, skipped, nil
}
