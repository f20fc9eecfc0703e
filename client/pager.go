package client

import (
	"context"
	"sync"
)

// PagerState tracks where the infinite-scroll consumer is in its lifecycle.
type PagerState int

const (
	StateIdle PagerState = iota
	StateLoadingFirstPage
	StateIdleWithData
	StateFetchingNextPage
	StateErrored
)

func (s PagerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingFirstPage:
		return "loading-first-page"
	case StateIdleWithData:
		return "idle-with-data"
	case StateFetchingNextPage:
		return "fetching-next-page"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ScrollThreshold is the fraction of scrollable height past which the next
// page is requested.
const ScrollThreshold = 0.9

// FeedPager accumulates feed pages into one continuous list. Pages
// concatenate in fetch order, so the list stays newest-first as long as no
// concurrent writes reorder the store between fetches; a post created
// between two fetches may be skipped or duplicated. Any query failure is
// terminal for the pager; there is no automatic retry.
type FeedPager struct {
	client *Client
	author string
	limit  int

	mu         sync.Mutex
	state      PagerState
	posts      []FeedPost
	nextCursor string
	err        error
}

func NewFeedPager(client *Client, author string, limit int) *FeedPager {
	return &FeedPager{
		client: client,
		author: author,
		limit:  limit,
		state:  StateIdle,
	}
}

// Start loads the first page. Calling Start again after it has run is a
// no-op.
func (p *FeedPager) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return p.err
	}
	p.state = StateLoadingFirstPage
	p.mu.Unlock()

	return p.fetch(ctx, "")
}

// OnScroll reports a new scroll position as a fraction of the scrollable
// height (0..1) and fetches the next page when the high-water mark is
// crossed, a cursor remains, and no fetch is already in flight. Returns true
// when a fetch was performed.
func (p *FeedPager) OnScroll(ctx context.Context, fraction float64) bool {
	p.mu.Lock()
	if fraction < ScrollThreshold || p.state != StateIdleWithData || p.nextCursor == "" {
		p.mu.Unlock()
		return false
	}
	cursor := p.nextCursor
	p.state = StateFetchingNextPage
	p.mu.Unlock()

	p.fetch(ctx, cursor)
	return true
}

func (p *FeedPager) fetch(ctx context.Context, cursor string) error {
	page, err := p.client.GetPosts(ctx, GetPostsParams{
		Author: p.author,
		Limit:  p.limit,
		Cursor: cursor,
	})

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.state = StateErrored
		p.err = err
		return err
	}

	p.posts = append(p.posts, page.Posts...)
	p.nextCursor = page.NextCursor
	p.state = StateIdleWithData
	return nil
}

// Posts returns the accumulated list in fetch order.
func (p *FeedPager) Posts() []FeedPost {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]FeedPost, len(p.posts))
	copy(out, p.posts)
	return out
}

func (p *FeedPager) State() PagerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the terminal error, if the pager has one.
func (p *FeedPager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// EndOfFeed reports whether all pages have been consumed.
func (p *FeedPager) EndOfFeed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == StateIdleWithData && p.nextCursor == ""
}
