package reddit

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetPopularSubreddits(t *testing.T) {
	ft := &fakeTransport{handle: func(method, url string) ([]byte, int) {
		if !strings.Contains(url, "/subreddits/popular?limit=25") {
			t.Errorf("unexpected url: %s", url)
		}
		return []byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t5","data":{"display_name":"funny","subscribers":40000000}}
		]}}`), 200
	}}
	c := newTestClient(ft)

	subs, err := c.GetPopularSubreddits(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetPopularSubreddits: %v", err)
	}
	if len(subs) != 1 || subs[0].Name != "funny" {
		t.Fatalf("unexpected subs: %+v", subs)
	}
}

func TestGetPopularSubredditsClampsLimit(t *testing.T) {
	ft := &fakeTransport{handle: func(method, url string) ([]byte, int) {
		if !strings.Contains(url, "limit=100") {
			t.Errorf("limit not clamped: %s", url)
		}
		return []byte(`{"kind":"Listing","data":{"children":[]}}`), 200
	}}
	c := newTestClient(ft)

	if _, err := c.GetPopularSubreddits(context.Background(), 500); err != nil {
		t.Fatalf("GetPopularSubreddits: %v", err)
	}
}

func TestTestAuthentication(t *testing.T) {
	ft := &fakeTransport{handle: func(method, url string) ([]byte, int) {
		if !strings.HasSuffix(url, "/api/v1/me") {
			t.Errorf("unexpected url: %s", url)
		}
		return []byte(`{"name":"tester","link_karma":42}`), 200
	}}
	c := newTestClient(ft)

	name, err := c.TestAuthentication(context.Background())
	if err != nil {
		t.Fatalf("TestAuthentication: %v", err)
	}
	if name != "tester" {
		t.Errorf("account name: got %q", name)
	}
}

func TestTestAuthenticationFailure(t *testing.T) {
	ft := &fakeTransport{handle: func(method, url string) ([]byte, int) {
		return []byte(`{"message":"Unauthorized"}`), 401
	}}
	c := newTestClient(ft)

	_, err := c.TestAuthentication(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Status != 401 || fetchErr.Endpoint != epMe {
		t.Errorf("unexpected error: %+v", fetchErr)
	}
}

// rateLimitedTransport serves a 429 with a reset header once, then succeeds.
type rateLimitedTransport struct {
	mu    sync.Mutex
	calls int
}

func (rt *rateLimitedTransport) Do(method, url string, headers map[string]string, body io.Reader) ([]byte, map[string]string, int, error) {
	rt.mu.Lock()
	rt.calls++
	first := rt.calls == 1
	rt.mu.Unlock()
	if first {
		return []byte(`{"message":"Too Many Requests"}`), map[string]string{"x-ratelimit-reset": "0.05"}, 429, nil
	}
	return postListingJSON("golang", "hello world post"), map[string]string{}, 200, nil
}

func TestServerRateLimitSurfacesAndMarks(t *testing.T) {
	rt := &rateLimitedTransport{}
	c := newTestClient(&fakeTransport{handle: func(method, url string) ([]byte, int) { return nil, 0 }})
	c.transport = rt

	_, err := c.getHotPosts(context.Background(), "golang", 15)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Status != 429 {
		t.Errorf("status: got %d", fetchErr.Status)
	}

	// The next call succeeds once the transport recovers; with no limiter
	// wired there is nothing to wait on.
	posts, err := c.getHotPosts(context.Background(), "golang", 15)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
}

func TestMetricsHook(t *testing.T) {
	type call struct {
		endpoint    string
		success     bool
		rateLimited bool
	}
	var mu sync.Mutex
	var calls []call

	ft := &fakeTransport{handle: func(method, url string) ([]byte, int) {
		if strings.Contains(url, "/r/privatesub/") {
			return []byte(`{}`), 403
		}
		return postListingJSON("golang", "hello"), 200
	}}
	c := newTestClient(ft)
	c.cfg.MetricsHook = func(endpoint string, success, rateLimited bool) {
		mu.Lock()
		calls = append(calls, call{endpoint, success, rateLimited})
		mu.Unlock()
	}

	ctx := context.Background()
	if _, err := c.getHotPosts(ctx, "golang", 15); err != nil {
		t.Fatalf("getHotPosts: %v", err)
	}
	if _, err := c.getHotPosts(ctx, "privatesub", 15); err == nil {
		t.Fatal("expected failure")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("expected 2 hook calls, got %d", len(calls))
	}
	if calls[0].endpoint != epHot || !calls[0].success {
		t.Errorf("first call: %+v", calls[0])
	}
	if calls[1].success {
		t.Errorf("second call should be a failure: %+v", calls[1])
	}
}

func TestDoWithTimeout(t *testing.T) {
	slow := &slowTransport{delay: time.Second}
	_, _, _, err := doWithTimeout(context.Background(), slow, 20*time.Millisecond, "GET", "http://x", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestDoWithTimeoutContextCancel(t *testing.T) {
	slow := &slowTransport{delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, _, _, err := doWithTimeout(ctx, slow, time.Minute, "GET", "http://x", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type slowTransport struct {
	delay time.Duration
}

func (s *slowTransport) Do(method, url string, headers map[string]string, body io.Reader) ([]byte, map[string]string, int, error) {
	time.Sleep(s.delay)
	return []byte(`{}`), map[string]string{}, 200, nil
}
