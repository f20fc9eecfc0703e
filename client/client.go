// Package client is the Go consumer of the Creators Club API: a thin REST
// client, the infinite-scroll feed pager, and the pre-upload media checks the
// post wizard runs before asking the server for upload URLs.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithToken attaches the viewer's session token to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Types mirroring the server's feed payload.

type PostAuthor struct {
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

type PostMedia struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	URL    string `json:"url"`
	Kind   string `json:"kind"`
	Format string `json:"format"`
}

type PostEdit struct {
	Content  string    `json:"content"`
	EditedAt time.Time `json:"edited_at"`
}

type FeedPost struct {
	ID          string      `json:"id"`
	AuthorID    string      `json:"author_id"`
	Author      PostAuthor  `json:"author"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Media       []PostMedia `json:"media"`
	Edits       []PostEdit  `json:"edits"`
	LikeCount   int         `json:"like_count"`
	ViewerLiked bool        `json:"viewer_liked"`
}

type FeedPage struct {
	Posts      []FeedPost `json:"posts"`
	NextCursor string     `json:"next_cursor"`
}

// APIError is the server's error envelope, annotated with the HTTP status.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s (HTTP %d): %s", e.Code, e.Status, e.Message)
}

type GetPostsParams struct {
	Author string
	Limit  int
	Cursor string
}

// GetPosts fetches one feed page.
func (c *Client) GetPosts(ctx context.Context, params GetPostsParams) (*FeedPage, error) {
	values := url.Values{}
	if params.Author != "" {
		values.Set("author", params.Author)
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Cursor != "" {
		values.Set("cursor", params.Cursor)
	}

	endpoint := c.baseURL + "/api/v1/posts"
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "INTERNAL_SERVER_ERROR"
			apiErr.Message = resp.Status
		}
		return nil, apiErr
	}

	var page FeedPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}
