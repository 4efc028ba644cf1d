package reddit

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	hotListingLimit     = 10
	activitySampleLimit = 10
	activityDescLen     = 100
	keywordPoolSize     = 50
	snapshotHotPosts    = 10
	aggregatedHotPosts  = 20
)

// canonicalKey derives the cache key for a subreddit set: lowercased,
// deduplicated, sorted, comma-joined. {"golang","rust"} and {"Rust",
// "golang"} share one entry.
func canonicalKey(subreddits []string) string {
	seen := make(map[string]struct{}, len(subreddits))
	names := make([]string, 0, len(subreddits))
	for _, s := range subreddits {
		name := strings.ToLower(strings.TrimSpace(s))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

type cacheEntry struct {
	snapshot *TrendsSnapshot
	expires  time.Time
}

type inflightCall struct {
	done     chan struct{}
	snapshot *TrendsSnapshot
	err      error
}

// trendsCache is a TTL cache of trend snapshots keyed by canonical subreddit
// set. Each key expires independently, and concurrent misses on the same key
// collapse into a single refresh; other keys refresh in parallel.
type trendsCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]cacheEntry
	inflight map[string]*inflightCall
}

func newTrendsCache(ttl time.Duration) *trendsCache {
	return &trendsCache{
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
		inflight: make(map[string]*inflightCall),
	}
}

// getOrRefresh returns the cached snapshot for key, or runs fetch to build
// one. Waiters for an in-flight refresh share its result without issuing
// their own fetch. A failed refresh caches nothing.
func (tc *trendsCache) getOrRefresh(ctx context.Context, key string, fetch func(context.Context) (*TrendsSnapshot, error)) (*TrendsSnapshot, error) {
	tc.mu.Lock()
	if entry, ok := tc.entries[key]; ok && time.Now().Before(entry.expires) {
		tc.mu.Unlock()
		slog.Debug("trends cache hit", slog.String("key", key))
		return entry.snapshot, nil
	}
	if call, ok := tc.inflight[key]; ok {
		tc.mu.Unlock()
		select {
		case <-call.done:
			return call.snapshot, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	tc.inflight[key] = call
	tc.mu.Unlock()

	snapshot, err := fetch(ctx)

	tc.mu.Lock()
	call.snapshot = snapshot
	call.err = err
	delete(tc.inflight, key)
	if err == nil {
		tc.entries[key] = cacheEntry{snapshot: snapshot, expires: time.Now().Add(tc.ttl)}
	}
	tc.mu.Unlock()
	close(call.done)
	return snapshot, err
}

// GetTrends returns the trend snapshot for the given subreddits, serving
// from cache while the entry is fresh and refreshing from the API otherwise.
// The returned snapshot is shared; callers must treat it as read-only.
func (c *Client) GetTrends(ctx context.Context, subreddits []string) (*TrendsSnapshot, error) {
	key := canonicalKey(subreddits)
	if key == "" {
		return nil, &ConfigError{Reason: "no subreddits given"}
	}
	return c.trends.getOrRefresh(ctx, key, func(ctx context.Context) (*TrendsSnapshot, error) {
		return c.refreshTrends(ctx, key, strings.Split(key, ","))
	})
}

// refreshTrends builds a fresh snapshot: hot listings per subreddit, keyword
// ranking over the score-ordered pool, then activity metrics. Fetch failures
// for individual subreddits degrade the snapshot; authentication failures
// abort it.
func (c *Client) refreshTrends(ctx context.Context, key string, subreddits []string) (*TrendsSnapshot, error) {
	if len(subreddits) > c.cfg.MaxTrendSubreddits {
		subreddits = subreddits[:c.cfg.MaxTrendSubreddits]
	}
	slog.Info("refreshing trends", slog.String("key", key), slog.Int("subreddits", len(subreddits)))

	var pool []Post
	postCounts := make(map[string]int, len(subreddits))
	for i, sub := range subreddits {
		posts, err := c.getHotPosts(ctx, sub, hotListingLimit)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) || ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("skipping subreddit in trends refresh", slog.String("subreddit", sub), slog.Any("error", err))
			postCounts[sub] = 0
			continue
		}
		postCounts[sub] = len(posts)
		pool = append(pool, posts...)

		if i < len(subreddits)-1 {
			if err := sleepCtx(ctx, c.cfg.FetchDelay); err != nil {
				return nil, err
			}
		}
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Score > pool[j].Score })
	if len(pool) > keywordPoolSize {
		pool = pool[:keywordPoolSize]
	}
	keywords := rankKeywords(pool)

	hot := pool
	if len(hot) > snapshotHotPosts {
		hot = hot[:snapshotHotPosts]
	}

	activity, err := c.getSubredditActivity(ctx, subreddits)
	if err != nil {
		return nil, err
	}

	snapshot := &TrendsSnapshot{
		Key:                 key,
		Timestamp:           time.Now().UTC(),
		TargetSubreddits:    subreddits,
		SubredditPostCounts: postCounts,
		HotPosts:            hot,
		Keywords:            keywords,
		Activity:            activity,
	}
	snapshot.Summary = summarize(snapshot)
	slog.Info("trends refreshed",
		slog.String("key", key),
		slog.Int("hot_posts", len(hot)),
		slog.Int("keywords", len(keywords)),
		slog.Int("active_subreddits", len(activity)))
	return snapshot, nil
}

// getSubredditActivity derives activity metrics for each subreddit from its
// about metadata and a small sample of newest posts. Subreddits whose about
// fetch fails are omitted; a failed sample leaves the post metrics at zero.
func (c *Client) getSubredditActivity(ctx context.Context, subreddits []string) (map[string]SubredditActivity, error) {
	if len(subreddits) > c.cfg.MaxActivitySubreddits {
		subreddits = subreddits[:c.cfg.MaxActivitySubreddits]
	}

	activity := make(map[string]SubredditActivity, len(subreddits))
	for i, sub := range subreddits {
		info, err := c.getSubredditAbout(ctx, sub)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) || ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("skipping subreddit in activity scan", slog.String("subreddit", sub), slog.Any("error", err))
			continue
		}

		entry := SubredditActivity{
			Name:        info.Name,
			Subscribers: info.Subscribers,
			ActiveUsers: info.ActiveUsers,
			CreatedAt:   info.CreatedAt,
			Description: excerpt(info.Description, activityDescLen),
		}
		if info.Subscribers > 0 {
			entry.ActivityRatio = float64(info.ActiveUsers) / float64(info.Subscribers)
		}

		recent, err := c.getNewPosts(ctx, sub, activitySampleLimit)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) || ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("activity sample failed", slog.String("subreddit", sub), slog.Any("error", err))
		} else {
			entry.RecentPostCount = len(recent)
			if len(recent) > 0 {
				total := 0
				for _, p := range recent {
					total += p.Score
				}
				entry.AvgRecentScore = float64(total) / float64(len(recent))
			}
		}

		activity[sub] = entry

		if i < len(subreddits)-1 {
			if err := sleepCtx(ctx, c.cfg.ActivityDelay); err != nil {
				return nil, err
			}
		}
	}
	return activity, nil
}

// countActive counts subreddits that contributed at least one post; failed
// fetches leave a zero entry and do not count as active.
func countActive(postCounts map[string]int) int {
	n := 0
	for _, count := range postCounts {
		if count > 0 {
			n++
		}
	}
	return n
}

// summarize computes the roll-up counters for one snapshot.
func summarize(s *TrendsSnapshot) TrendsSummary {
	summary := TrendsSummary{
		TotalHotPosts:       len(s.HotPosts),
		TargetSubreddits:    len(s.TargetSubreddits),
		ActiveSubreddits:    countActive(s.SubredditPostCounts),
		TotalKeywords:       len(s.Keywords),
		MonitoredSubreddits: len(s.Activity),
	}
	if len(s.HotPosts) > 0 {
		total := 0
		for _, p := range s.HotPosts {
			total += p.Score
		}
		summary.AvgHotPostScore = float64(total) / float64(len(s.HotPosts))
	}
	summary.TopKeyword = "N/A"
	if len(s.Keywords) > 0 {
		summary.TopKeyword = s.Keywords[0].Keyword
	}
	return summary
}

// GetAggregatedTrends unions the snapshots of several subreddit groups into
// one re-ranked view. Each group resolves through the cache independently, so
// fresh groups are served without refetching. Groups that fail to refresh are
// skipped; the result reports how many contributed.
func (c *Client) GetAggregatedTrends(ctx context.Context, groups [][]string) (*AggregatedTrends, error) {
	if len(groups) == 0 {
		return nil, &ConfigError{Reason: "no subreddit groups given"}
	}

	agg := &AggregatedTrends{
		Timestamp:           time.Now().UTC(),
		Groups:              len(groups),
		SubredditPostCounts: make(map[string]int),
		Activity:            make(map[string]SubredditActivity),
	}

	keywordCounts := make(map[string]int)
	var keywordOrder []string
	seenSubs := make(map[string]struct{})
	seenPosts := make(map[string]struct{})
	totalPosts := 0

	for _, group := range groups {
		snapshot, err := c.GetTrends(ctx, group)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) || ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("skipping group in aggregation", slog.String("key", canonicalKey(group)), slog.Any("error", err))
			continue
		}
		agg.GroupsProcessed++

		for _, sub := range snapshot.TargetSubreddits {
			if _, dup := seenSubs[sub]; dup {
				continue
			}
			seenSubs[sub] = struct{}{}
			agg.TargetSubreddits = append(agg.TargetSubreddits, sub)
		}
		for sub, n := range snapshot.SubredditPostCounts {
			agg.SubredditPostCounts[sub] += n
			totalPosts += n
		}
		for _, p := range snapshot.HotPosts {
			if _, dup := seenPosts[p.ID]; dup {
				continue
			}
			seenPosts[p.ID] = struct{}{}
			agg.HotPosts = append(agg.HotPosts, p)
		}
		for _, kc := range snapshot.Keywords {
			if keywordCounts[kc.Keyword] == 0 {
				keywordOrder = append(keywordOrder, kc.Keyword)
			}
			keywordCounts[kc.Keyword] += kc.Count
		}
		for sub, a := range snapshot.Activity {
			agg.Activity[sub] = a
		}
	}

	if agg.GroupsProcessed == 0 {
		return nil, &FetchError{Endpoint: epHot, Err: errors.New("all subreddit groups failed")}
	}

	sort.SliceStable(agg.HotPosts, func(i, j int) bool { return agg.HotPosts[i].Score > agg.HotPosts[j].Score })
	if len(agg.HotPosts) > aggregatedHotPosts {
		agg.HotPosts = agg.HotPosts[:aggregatedHotPosts]
	}

	sort.SliceStable(keywordOrder, func(i, j int) bool {
		return keywordCounts[keywordOrder[i]] > keywordCounts[keywordOrder[j]]
	})
	if len(keywordOrder) > maxKeywords {
		keywordOrder = keywordOrder[:maxKeywords]
	}
	for _, word := range keywordOrder {
		kc := KeywordCount{Keyword: word, Count: keywordCounts[word]}
		if totalPosts > 0 {
			kc.TrendScore = float64(keywordCounts[word]) / float64(totalPosts)
		}
		agg.Keywords = append(agg.Keywords, kc)
	}

	agg.Summary = TrendsSummary{
		TotalHotPosts:       len(agg.HotPosts),
		TargetSubreddits:    len(agg.TargetSubreddits),
		ActiveSubreddits:    countActive(agg.SubredditPostCounts),
		TotalKeywords:       len(agg.Keywords),
		MonitoredSubreddits: len(agg.Activity),
	}
	if len(agg.HotPosts) > 0 {
		total := 0
		for _, p := range agg.HotPosts {
			total += p.Score
		}
		agg.Summary.AvgHotPostScore = float64(total) / float64(len(agg.HotPosts))
	}
	agg.Summary.TopKeyword = "N/A"
	if len(agg.Keywords) > 0 {
		agg.Summary.TopKeyword = agg.Keywords[0].Keyword
	}
	return agg, nil
}
