package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// feedServer serves a fixed sequence of pages keyed by cursor and counts
// requests.
type feedServer struct {
	pages    map[string]FeedPage
	requests int
	failAll  bool
}

func (s *feedServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.requests++
		if s.failAll {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": "Error retrieving posts",
			})
			return
		}
		page, ok := s.pages[r.URL.Query().Get("cursor")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"code":    "NOT_FOUND",
				"message": "Cursor post not found",
			})
			return
		}
		json.NewEncoder(w).Encode(page)
	}
}

func makePosts(prefix string, n int) []FeedPost {
	posts := make([]FeedPost, n)
	for i := range posts {
		posts[i] = FeedPost{
			ID:        fmt.Sprintf("%s-%d", prefix, i),
			Content:   "hello",
			CreatedAt: time.Now(),
		}
	}
	return posts
}

func TestPagerStartLoadsFirstPage(t *testing.T) {
	server := &feedServer{pages: map[string]FeedPage{
		"": {Posts: makePosts("a", 10), NextCursor: "a-9"},
	}}
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	pager := NewFeedPager(NewClient(ts.URL), "", 10)
	if pager.State() != StateIdle {
		t.Fatalf("expected idle before Start, got %s", pager.State())
	}

	if err := pager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if pager.State() != StateIdleWithData {
		t.Errorf("expected idle-with-data, got %s", pager.State())
	}
	if got := len(pager.Posts()); got != 10 {
		t.Errorf("expected 10 posts, got %d", got)
	}
	if pager.EndOfFeed() {
		t.Error("cursor remains, should not be end of feed")
	}

	// Start is a one-shot.
	pager.Start(context.Background())
	if server.requests != 1 {
		t.Errorf("expected 1 request after repeated Start, got %d", server.requests)
	}
}

func TestPagerScrollThreshold(t *testing.T) {
	server := &feedServer{pages: map[string]FeedPage{
		"":    {Posts: makePosts("a", 10), NextCursor: "a-9"},
		"a-9": {Posts: makePosts("b", 10), NextCursor: "b-9"},
	}}
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	pager := NewFeedPager(NewClient(ts.URL), "", 10)
	pager.Start(context.Background())

	if pager.OnScroll(context.Background(), 0.5) {
		t.Error("scroll below threshold should not fetch")
	}
	if server.requests != 1 {
		t.Fatalf("expected no extra request, got %d total", server.requests)
	}

	if !pager.OnScroll(context.Background(), 0.95) {
		t.Error("scroll past threshold should fetch")
	}
	if server.requests != 2 {
		t.Fatalf("expected 2 requests, got %d", server.requests)
	}

	posts := pager.Posts()
	if len(posts) != 20 {
		t.Fatalf("expected 20 posts after second page, got %d", len(posts))
	}
	// Pages concatenate in fetch order.
	if posts[0].ID != "a-0" || posts[10].ID != "b-0" {
		t.Errorf("pages out of order: first=%s eleventh=%s", posts[0].ID, posts[10].ID)
	}
}

func TestPagerStopsAtEndOfFeed(t *testing.T) {
	server := &feedServer{pages: map[string]FeedPage{
		"":    {Posts: makePosts("a", 10), NextCursor: "a-9"},
		"a-9": {Posts: makePosts("b", 5)},
	}}
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	pager := NewFeedPager(NewClient(ts.URL), "", 10)
	pager.Start(context.Background())
	pager.OnScroll(context.Background(), 1.0)

	if !pager.EndOfFeed() {
		t.Fatal("expected end of feed after final page")
	}
	if pager.OnScroll(context.Background(), 1.0) {
		t.Error("scroll at end of feed should not fetch")
	}
	if server.requests != 2 {
		t.Errorf("expected 2 requests total, got %d", server.requests)
	}
	if got := len(pager.Posts()); got != 15 {
		t.Errorf("expected 15 posts, got %d", got)
	}
}

func TestPagerErrorIsTerminal(t *testing.T) {
	server := &feedServer{pages: map[string]FeedPage{
		"": {Posts: makePosts("a", 10), NextCursor: "a-9"},
	}}
	ts := httptest.NewServer(server.handler())
	defer ts.Close()

	pager := NewFeedPager(NewClient(ts.URL), "", 10)
	pager.Start(context.Background())

	server.failAll = true
	pager.OnScroll(context.Background(), 1.0)

	if pager.State() != StateErrored {
		t.Fatalf("expected errored state, got %s", pager.State())
	}
	var apiErr *APIError
	if err := pager.Err(); err == nil {
		t.Fatal("expected terminal error")
	} else if !errors.As(err, &apiErr) || apiErr.Code != "INTERNAL_SERVER_ERROR" {
		t.Errorf("unexpected error: %v", err)
	}

	// Already-loaded posts stay available, but no further fetches happen.
	if got := len(pager.Posts()); got != 10 {
		t.Errorf("expected loaded posts retained, got %d", got)
	}
	before := server.requests
	if pager.OnScroll(context.Background(), 1.0) {
		t.Error("errored pager should not fetch")
	}
	if server.requests != before {
		t.Errorf("errored pager made a request")
	}
}

func TestPagerPassesQueryParams(t *testing.T) {
	var gotAuthor, gotLimit string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthor = r.URL.Query().Get("author")
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode(FeedPage{Posts: []FeedPost{}})
	}))
	defer ts.Close()

	pager := NewFeedPager(NewClient(ts.URL), "user-1", 25)
	if err := pager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if gotAuthor != "user-1" {
		t.Errorf("expected author filter, got %q", gotAuthor)
	}
	if gotLimit != "25" {
		t.Errorf("expected limit 25, got %q", gotLimit)
	}
}
