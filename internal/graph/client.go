// Package graph fetches post comments from the Instagram Graph API.
//
// A public post URL is resolved to a media ID through the oEmbed endpoint,
// then the media's comments are paged through sequentially by following the
// API's continuation links. Any failure aborts the whole fetch; callers never
// see a partial result.
package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"github.com/calvinalkan/raffle/internal/logging"
	"github.com/calvinalkan/raffle/internal/raffle"
)

// Defaults for the public Graph API.
const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v20.0"
	DefaultCap        = 5000
	DefaultTimeout    = 30 * time.Second
)

const (
	pageSize      = 500
	commentFields = "id,username,text"
	maxBodyBytes  = 16 << 20
)

var (
	errMissingMediaID = errors.New("oEmbed response has no media_id")
	errEmptyMediaID   = errors.New("media ID is empty")
	errPagingLoop     = errors.New("paging link repeats")
)

// Comment is one comment as returned by the comments edge.
type Comment struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

// APIError is the error object the Graph API embeds in failed responses.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s (%s, code %d)", e.Message, e.Type, e.Code)
	}

	return e.Message
}

type oembedResponse struct {
	MediaID string    `json:"media_id"`
	Error   *APIError `json:"error"`
}

type commentsResponse struct {
	Data   []Comment `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
	Error *APIError `json:"error"`
}

// Client talks to the Graph API.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	timeoutSet bool
	baseURL    string
	version    string
	logger     logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithAPIVersion sets the Graph API version path segment.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.version = version
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout is kept unless
// WithTimeout is also given; hc itself is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout, regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.timeoutSet = true
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Graph API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout: DefaultTimeout,
		baseURL: DefaultBaseURL,
		version: DefaultAPIVersion,
		logger:  logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.httpClient == nil:
		c.httpClient = &http.Client{Timeout: c.timeout}
	case c.timeoutSet:
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	return c
}

// ResolveMediaID looks up the media ID of a public post URL.
func (c *Client) ResolveMediaID(ctx context.Context, postURL, token string) (string, error) {
	query := url.Values{}
	query.Set("url", postURL)
	query.Set("access_token", token)

	endpoint := c.endpoint("instagram_oembed") + "?" + query.Encode()

	var resp oembedResponse

	err := c.getJSON(ctx, endpoint, &resp, func() *APIError { return resp.Error })
	if err != nil {
		return "", fmt.Errorf("resolve post: %w", err)
	}

	if resp.MediaID == "" {
		return "", fmt.Errorf("resolve post: %w: %w", raffle.ErrRemoteFetch, errMissingMediaID)
	}

	c.logger.WithField("media_id", resp.MediaID).Debug("resolved post")

	return resp.MediaID, nil
}

// FetchComments pages through a media's comments until the API reports no
// further page or limit comments are collected. The result never holds more
// than limit comments; the bool reports whether comments were left behind
// because of the limit. A limit <= 0 means DefaultCap.
func (c *Client) FetchComments(ctx context.Context, mediaID, token string, limit int) ([]Comment, bool, error) {
	if mediaID == "" {
		return nil, false, fmt.Errorf("fetch comments: %w: %w", raffle.ErrRemoteFetch, errEmptyMediaID)
	}

	if limit <= 0 {
		limit = DefaultCap
	}

	query := url.Values{}
	query.Set("fields", commentFields)
	query.Set("limit", fmt.Sprint(pageSize))
	query.Set("access_token", token)

	next := c.endpoint(url.PathEscape(mediaID), "comments") + "?" + query.Encode()
	seen := make(map[string]bool)

	var all []Comment

	for page := 1; next != ""; page++ {
		if seen[next] {
			return nil, false, fmt.Errorf("fetch comments page %d: %w: %w", page, raffle.ErrRemoteFetch, errPagingLoop)
		}

		seen[next] = true

		var resp commentsResponse

		err := c.getJSON(ctx, next, &resp, func() *APIError { return resp.Error })
		if err != nil {
			return nil, false, fmt.Errorf("fetch comments page %d: %w", page, err)
		}

		all = append(all, resp.Data...)

		c.logger.WithFields(logging.Fields{
			"page":  page,
			"count": len(resp.Data),
			"total": len(all),
		}).Debug("fetched comments page")

		next = resp.Paging.Next

		if len(all) >= limit {
			truncated := len(all) > limit || next != ""
			if truncated {
				c.logger.WithField("cap", limit).Info("comment cap reached, stopping pagination")
			}

			return all[:limit], truncated, nil
		}
	}

	return all, false, nil
}

// FetchPostComments resolves postURL and fetches its comments.
func (c *Client) FetchPostComments(ctx context.Context, postURL, token string, limit int) ([]Comment, bool, error) {
	mediaID, err := c.ResolveMediaID(ctx, postURL, token)
	if err != nil {
		return nil, false, err
	}

	return c.FetchComments(ctx, mediaID, token, limit)
}

// Records converts comments into raw raffle records.
func Records(comments []Comment) []raffle.Record {
	records := make([]raffle.Record, 0, len(comments))
	for _, cm := range comments {
		records = append(records, raffle.Record{Username: cm.Username, Text: cm.Text, ID: cm.ID})
	}

	return records
}

func (c *Client) endpoint(segments ...string) string {
	u := c.baseURL + "/" + c.version
	for _, s := range segments {
		u += "/" + s
	}

	return u
}

// getJSON performs a GET and decodes the body into v. apiErr reports the
// error object decoded into v, if any. Every failure wraps ErrRemoteFetch.
func (c *Client) getJSON(ctx context.Context, endpoint string, v any, apiErr func() *APIError) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", raffle.ErrRemoteFetch, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", raffle.ErrRemoteFetch, redactURLError(err))
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", raffle.ErrRemoteFetch, err)
	}

	decodeErr := json.Unmarshal(body, v)

	if e := apiErr(); decodeErr == nil && e != nil {
		return fmt.Errorf("%w: %w", raffle.ErrRemoteFetch, e)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", raffle.ErrRemoteFetch, resp.StatusCode)
	}

	if decodeErr != nil {
		return fmt.Errorf("%w: decode response: %w", raffle.ErrRemoteFetch, decodeErr)
	}

	return nil
}

// redactURLError drops the request URL from transport errors so access
// tokens in the query string never reach logs or the terminal.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}

	return err
}
