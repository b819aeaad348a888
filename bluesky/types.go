package bluesky

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Session is the credential set returned by com.atproto.server.createSession.
// The access token authenticates every later request made through the client
// that created it.
type Session struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	Did        string `json:"did"`
}

// AuthorFeedResponse is one page of app.bsky.feed.getAuthorFeed. A missing or
// empty cursor means the feed is exhausted; an empty feed with a cursor still
// present means the server filtered the page and there is more to fetch.
type AuthorFeedResponse struct {
	Feed   []FeedItem `json:"feed"`
	Cursor *string    `json:"cursor"`
}

// FeedItem wraps a single feed entry. Only the post object matters here;
// reason/reply context metadata is ignored.
type FeedItem struct {
	Post *PostView `json:"post"`
}

// PostView mirrors the post object of a feed entry. Fields the server may
// omit are optional; partial records decode without errors and defaults are
// applied during normalization.
type PostView struct {
	Uri         string                     `json:"uri"`
	Cid         string                     `json:"cid"`
	Author      *Author                    `json:"author"`
	Record      *PostRecord                `json:"record"`
	Embed       map[string]json.RawMessage `json:"embed"`
	ReplyCount  *int64                     `json:"replyCount"`
	RepostCount *int64                     `json:"repostCount"`
	LikeCount   *int64                     `json:"likeCount"`
	IndexedAt   string                     `json:"indexedAt"`
}

// HasEmbed reports whether the post carries a non-empty embed object. An
// embed that decodes to {} counts as no embed at all.
func (p *PostView) HasEmbed() bool {
	return len(p.Embed) > 0
}

// EmbedType returns the $type tag of the embed, or "" when the embed has
// none or it is not a string.
func (p *PostView) EmbedType() string {
	raw, ok := p.Embed["$type"]
	if !ok {
		return ""
	}

	var tag string
	if err := json.Unmarshal(raw, &tag); err != nil {
		return ""
	}
	return tag
}

type Author struct {
	Did         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

// PostRecord is the original app.bsky.feed.post record inside a post view.
type PostRecord struct {
	Text      string    `json:"text"`
	CreatedAt string    `json:"createdAt"`
	Reply     *ReplyRef `json:"reply"`
}

type ReplyRef struct {
	Root   *PostRef `json:"root"`
	Parent *PostRef `json:"parent"`
}

type PostRef struct {
	Uri string `json:"uri"`
	Cid string `json:"cid"`
}

// APIError is the decoded body of a non-2xx XRPC response. When the body is
// not the usual {error, message} document, Message carries the raw body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("xrpc error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("xrpc error %d: %s", e.StatusCode, e.Message)
}

// AuthError reports a failed session create. Callers treat it as fatal for
// the whole run.
type AuthError struct {
	Identifier string
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to authenticate %s: %s", e.Identifier, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a handle that did not resolve to a DID. It only
// affects the account it names; sibling accounts keep collecting.
type ResolutionError struct {
	Handle string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve handle %s: %s", e.Handle, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
