package reddit

import (
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// fakeTransport is a scripted transport for tests. The handler maps each
// request to a response body and status; every call is recorded.
type fakeTransport struct {
	handle func(method, url string) ([]byte, int)

	mu    sync.Mutex
	calls []string
}

func (f *fakeTransport) Do(method, url string, headers map[string]string, body io.Reader) ([]byte, map[string]string, int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, method+" "+url)
	f.mu.Unlock()
	b, status := f.handle(method, url)
	return b, map[string]string{}, status, nil
}

func (f *fakeTransport) callCount(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if strings.Contains(call, substr) {
			n++
		}
	}
	return n
}

// newTestClient builds a client on the fake transport with pacing, jitter and
// rate limiting disabled, and a pre-seeded valid token so API tests never hit
// the token endpoint.
func newTestClient(ft *fakeTransport) *Client {
	cfg := ClientConfig{
		ClientID:      "test-id",
		ClientSecret:  "test-secret",
		Username:      "tester",
		Password:      "hunter2",
		DisableJitter: true,
		FetchDelay:    time.Nanosecond,
		ActivityDelay: time.Nanosecond,
		BatchDelay:    time.Nanosecond,
	}
	cfg.defaults()

	tm := newTokenManager(cfg, ft)
	tm.token = accessToken{
		value:     "testtoken",
		tokenType: "bearer",
		expiresAt: time.Now().Add(time.Hour),
	}
	return &Client{
		transport: ft,
		tokens:    tm,
		trends:    newTrendsCache(cfg.CacheTTL),
		cfg:       cfg,
	}
}

// postListingJSON builds a minimal hot/new listing with the given titles,
// assigning descending scores so listing order is score order.
func postListingJSON(subreddit string, titles ...string) []byte {
	var children []string
	for i, title := range titles {
		children = append(children, `{"kind":"t3","data":{`+
			`"id":"`+subreddit+`_p`+string(rune('0'+i))+`",`+
			`"title":"`+title+`",`+
			`"author":"author`+string(rune('0'+i))+`",`+
			`"subreddit":"`+subreddit+`",`+
			`"score":`+strconv.Itoa(100-10*i)+`,`+
			`"num_comments":`+strconv.Itoa(5+i)+`,`+
			`"created_utc":1700000000,`+
			`"permalink":"/r/`+subreddit+`/comments/x/y/",`+
			`"selftext":""}}`)
	}
	return []byte(`{"kind":"Listing","data":{"children":[` + strings.Join(children, ",") + `]}}`)
}

func aboutJSON(name string, subscribers, active int) []byte {
	return []byte(`{"kind":"t5","data":{"display_name":"` + name + `",` +
		`"title":"` + name + ` community","public_description":"all about ` + name + `",` +
		`"subscribers":` + strconv.Itoa(subscribers) + `,"accounts_active":` + strconv.Itoa(active) + `,` +
		`"created_utc":1500000000,"over18":false}}`)
}

