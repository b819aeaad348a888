package collector_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christiemegill/social-media-analysis/bluesky"
	"github.com/christiemegill/social-media-analysis/collector"
	"github.com/christiemegill/social-media-analysis/dataset"
)

// feedPage builds a getAuthorFeed response with n posts and, when cursor is
// not empty, a cursor to the next page.
func feedPage(n int, cursor string) bluesky.AuthorFeedResponse {
	items := make([]bluesky.FeedItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, bluesky.FeedItem{
			Post: &bluesky.PostView{
				Record: &bluesky.PostRecord{
					Text:      fmt.Sprintf("post %d", i),
					CreatedAt: "2024-03-15T14:30:00Z",
				},
				IndexedAt: "2024-03-15T14:30:05Z",
			},
		})
	}

	resp := bluesky.AuthorFeedResponse{Feed: items}
	if cursor != "" {
		resp.Cursor = &cursor
	}
	return resp
}

func testClient(t *testing.T, mux *http.ServeMux) *bluesky.Client {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return bluesky.NewClient(bluesky.WithHost(server.URL), bluesky.WithHTTPClient(server.Client()))
}

func TestCollectAccountPagination(t *testing.T) {
	var requests []string

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		requests = append(requests, query.Get("limit")+":"+query.Get("cursor"))

		n, err := strconv.Atoi(query.Get("limit"))
		require.NoError(t, err)
		json.NewEncoder(w).Encode(feedPage(n, fmt.Sprintf("c%d", len(requests))))
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     250,
		PageSize:  100,
		PageDelay: time.Millisecond,
	})

	collected, skipped, err := c.CollectAccount(context.Background(), "did:plc:alice123", "alice.bsky.social")
	require.NoError(t, err)

	// Three rounds: two full pages and one trimmed to the remainder
	assert.Equal(t, []string{"100:", "100:c1", "50:c2"}, requests)
	assert.Equal(t, 250, collected)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 250, ds.Count())
	assert.Equal(t, "alice.bsky.social", ds.All()[0].Author)
}

func TestCollectAccountZeroLimit(t *testing.T) {
	requests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     0,
		PageDelay: time.Millisecond,
	})

	collected, skipped, err := c.CollectAccount(context.Background(), "did:plc:alice123", "alice.bsky.social")
	require.NoError(t, err)

	assert.Equal(t, 0, collected)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 0, requests, "a non-positive limit should issue no requests")
}

func TestCollectAccountKeepsPostsOnPageFailure(t *testing.T) {
	requests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "InternalServerError", "message": "oops"})
			return
		}
		json.NewEncoder(w).Encode(feedPage(2, "c1"))
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     4,
		PageSize:  2,
		PageDelay: time.Millisecond,
	})

	collected, skipped, err := c.CollectAccount(context.Background(), "did:plc:alice123", "alice.bsky.social")
	require.NoError(t, err, "a failed page should not surface as an error")

	assert.Equal(t, 2, collected, "posts from the successful page stay collected")
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 2, ds.Count())
	assert.Equal(t, 2, requests)
}

func TestCollectAccountContinuesOnEmptyPageWithCursor(t *testing.T) {
	requests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			// A fully filtered page: no posts, but the feed is not done
			json.NewEncoder(w).Encode(feedPage(0, "more"))
			return
		}
		json.NewEncoder(w).Encode(feedPage(2, ""))
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     5,
		PageSize:  5,
		PageDelay: time.Millisecond,
	})

	collected, _, err := c.CollectAccount(context.Background(), "did:plc:alice123", "alice.bsky.social")
	require.NoError(t, err)

	assert.Equal(t, 2, requests, "an empty page with a cursor should not end the feed")
	assert.Equal(t, 2, collected)
}

func TestCollectAccountStopsOnMissingCursor(t *testing.T) {
	requests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode(feedPage(3, ""))
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     10,
		PageSize:  5,
		PageDelay: time.Millisecond,
	})

	collected, _, err := c.CollectAccount(context.Background(), "did:plc:alice123", "alice.bsky.social")
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
	assert.Equal(t, 3, collected, "a short feed ends at the last available post")
}

func TestCollectAccountRoundCap(t *testing.T) {
	requests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		requests++
		// Keep handing back cursors without ever returning a post
		json.NewEncoder(w).Encode(feedPage(0, "again"))
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     10,
		PageSize:  5,
		PageDelay: time.Millisecond,
		MaxRounds: 3,
	})

	collected, _, err := c.CollectAccount(context.Background(), "did:plc:alice123", "alice.bsky.social")
	require.NoError(t, err)

	assert.Equal(t, 3, requests, "the round cap should end a cursor loop that never converges")
	assert.Equal(t, 0, collected)
}

func TestCollectAccountSkipsItemsWithoutPost(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		page := feedPage(2, "")
		page.Feed = append(page.Feed, bluesky.FeedItem{})
		json.NewEncoder(w).Encode(page)
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     10,
		PageSize:  10,
		PageDelay: time.Millisecond,
	})

	collected, skipped, err := c.CollectAccount(context.Background(), "did:plc:alice123", "alice.bsky.social")
	require.NoError(t, err)

	assert.Equal(t, 2, collected)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, ds.Skipped())
	assert.Equal(t, 2, ds.Count())
}

func TestCollectAccountCancelledContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(feedPage(1, ""))
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     10,
		PageDelay: time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.CollectAccount(ctx, "did:plc:alice123", "alice.bsky.social")
	assert.Error(t, err)
}

func TestCollectSkipsUnresolvedAccounts(t *testing.T) {
	var feedActors []string

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/com.atproto.identity.resolveHandle", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("handle") == "bad.bsky.social" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "InvalidRequest", "message": "Unable to resolve handle"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"did": "did:plc:good123"})
	})
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		feedActors = append(feedActors, r.URL.Query().Get("actor"))
		json.NewEncoder(w).Encode(feedPage(2, ""))
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     2,
		PageDelay: time.Millisecond,
	})

	err := c.Collect(context.Background(), []string{"bad.bsky.social", "good.bsky.social"})
	require.NoError(t, err, "an unresolved handle should not abort the run")

	assert.Equal(t, []string{"did:plc:good123"}, feedActors)
	assert.Equal(t, 2, ds.Count())
}

func TestCollectKeepsSiblingAccountsAfterPageFailure(t *testing.T) {
	requestsByActor := map[string]int{}

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/com.atproto.identity.resolveHandle", func(w http.ResponseWriter, r *http.Request) {
		handle := r.URL.Query().Get("handle")
		json.NewEncoder(w).Encode(map[string]string{"did": "did:plc:" + handle})
	})
	mux.HandleFunc("/xrpc/app.bsky.feed.getAuthorFeed", func(w http.ResponseWriter, r *http.Request) {
		actor := r.URL.Query().Get("actor")
		requestsByActor[actor]++

		// The first account loses its second page, the second account is fine
		if actor == "did:plc:one.bsky.social" && requestsByActor[actor] > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(feedPage(2, "c"+strconv.Itoa(requestsByActor[actor])))
	})

	ds := dataset.New()
	c := collector.New(testClient(t, mux), ds, collector.Config{
		Limit:     4,
		PageSize:  2,
		PageDelay: time.Millisecond,
	})

	err := c.Collect(context.Background(), []string{"one.bsky.social", "two.bsky.social"})
	require.NoError(t, err)

	assert.Equal(t, 2, requestsByActor["did:plc:one.bsky.social"])
	assert.Equal(t, 2, requestsByActor["did:plc:two.bsky.social"])
	assert.Equal(t, 6, ds.Count(), "two posts from the failed account plus four from its sibling")

	authors := map[string]int{}
	for _, post := range ds.All() {
		authors[post.Author]++
	}
	assert.Equal(t, 2, authors["one.bsky.social"])
	assert.Equal(t, 4, authors["two.bsky.social"])
}
