package bluesky

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/goccy/go-json"
)

const (
	// DefaultPDSHost is the public Bluesky PDS entrypoint.
	DefaultPDSHost = "https://bsky.social"

	// MaxFeedPageSize is the server-side cap on getAuthorFeed page sizes.
	MaxFeedPageSize = 100
)

type Credentials struct {
	Identifier string
	Password   string
}

// Client talks XRPC over plain HTTP. A fresh client can only reach
// unauthenticated endpoints; CreateSession attaches the bearer token that
// authenticates everything after it.
type Client struct {
	host       string
	httpClient *http.Client
	session    *Session
}

type Option func(*Client)

func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		host:       DefaultPDSHost,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// ClientFromCredentials creates a client and authenticates it in one step.
func ClientFromCredentials(ctx context.Context, host string, creds *Credentials) (*Client, error) {
	client := NewClient(WithHost(host))
	if _, err := client.CreateSession(ctx, creds.Identifier, creds.Password); err != nil {
		return nil, err
	}
	return client, nil
}

// Session returns the active session, or nil before authentication.
func (c *Client) Session() *Session {
	return c.session
}

// CreateSession exchanges an identifier and app password for a session and
// stores it on the client for later requests.
func (c *Client) CreateSession(ctx context.Context, identifier string, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return nil, &AuthError{Identifier: identifier, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("com.atproto.server.createSession"), bytes.NewReader(body))
	if err != nil {
		return nil, &AuthError{Identifier: identifier, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var session Session
	if err := c.do(req, &session); err != nil {
		return nil, &AuthError{Identifier: identifier, Err: err}
	}

	c.session = &session
	return &session, nil
}

// ResolveHandle resolves a handle to its DID. The handle is validated and
// normalized locally; a malformed handle fails before any network call.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (string, error) {
	parsed, err := syntax.ParseHandle(handle)
	if err != nil {
		return "", &ResolutionError{Handle: handle, Err: err}
	}

	query := url.Values{}
	query.Set("handle", parsed.Normalize().String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("com.atproto.identity.resolveHandle")+"?"+query.Encode(), nil)
	if err != nil {
		return "", &ResolutionError{Handle: handle, Err: err}
	}

	var out struct {
		Did string `json:"did"`
	}
	if err := c.do(req, &out); err != nil {
		return "", &ResolutionError{Handle: handle, Err: err}
	}

	did, err := syntax.ParseDID(out.Did)
	if err != nil {
		return "", &ResolutionError{Handle: handle, Err: fmt.Errorf("server returned unusable did %q: %w", out.Did, err)}
	}

	return did.String(), nil
}

// GetAuthorFeed fetches one page of an author's feed. The limit is clamped
// to the server cap and an empty cursor requests the first page.
func (c *Client) GetAuthorFeed(ctx context.Context, actor string, limit int, cursor string) (*AuthorFeedResponse, error) {
	if limit > MaxFeedPageSize {
		limit = MaxFeedPageSize
	}

	query := url.Values{}
	query.Set("actor", actor)
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("app.bsky.feed.getAuthorFeed")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build author feed request: %w", err)
	}

	var out AuthorFeedResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch author feed for %s: %w", actor, err)
	}

	return &out, nil
}

func (c *Client) endpoint(nsid string) string {
	return strings.TrimRight(c.host, "/") + "/xrpc/" + nsid
}

// do sends the request with the common headers and decodes the JSON body
// into out. Any response of 400 or above comes back as an *APIError.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessJwt)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if body, readErr := io.ReadAll(resp.Body); readErr == nil {
			if err := json.Unmarshal(body, apiErr); err != nil {
				apiErr.Message = strings.TrimSpace(string(body))
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
