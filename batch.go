package reddit

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// maxBatchSize bounds one batch run; larger requests are rejected rather
// than truncated so callers never silently lose posts.
const maxBatchSize = 20

// GetComments fetches one post's full nested comment tree.
func (c *Client) GetComments(ctx context.Context, postID string) (*PostThread, error) {
	if postID == "" {
		return nil, &ConfigError{Reason: "empty post id"}
	}
	body, err := c.doGET(ctx, epComments, c.commentsURL(postID))
	if err != nil {
		return nil, err
	}

	info, comments, err := parseComments(body)
	if err != nil {
		return nil, err
	}
	return &PostThread{
		PostID:   postID,
		PostInfo: info,
		Comments: comments,
		Stats: ThreadStats{
			TotalComments:    countNodes(comments),
			TopLevelComments: len(comments),
			HasPostInfo:      info != nil,
		},
	}, nil
}

// GetCommentsBatch fetches comment trees for up to maxBatchSize posts,
// sequentially with a pacing delay between requests. Individual failures are
// recorded and the run continues; an authentication failure aborts the run,
// since every remaining request would fail the same way.
func (c *Client) GetCommentsBatch(ctx context.Context, postIDs []string) (*BatchResult, error) {
	if len(postIDs) == 0 {
		return nil, &ConfigError{Reason: "no post ids given"}
	}
	if len(postIDs) > maxBatchSize {
		return nil, &ConfigError{Reason: "batch exceeds maximum of 20 posts"}
	}

	result := &BatchResult{
		RunID:        uuid.NewString(),
		RequestedIDs: postIDs,
		Timestamp:    time.Now().UTC(),
	}
	slog.Info("starting comments batch", slog.String("run_id", result.RunID), slog.Int("posts", len(postIDs)))

	for i, postID := range postIDs {
		thread, err := c.GetComments(ctx, postID)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) || ctx.Err() != nil {
				return nil, err
			}
			result.Failed = append(result.Failed, BatchFailure{ID: postID, Reason: err.Error()})
			slog.Warn("batch post failed", slog.String("run_id", result.RunID), slog.String("post_id", postID), slog.Any("error", err))
		} else {
			result.Succeeded = append(result.Succeeded, BatchItem{
				ID:            postID,
				PostInfo:      thread.PostInfo,
				Comments:      thread.Comments,
				TotalComments: thread.Stats.TotalComments,
			})
		}

		if i < len(postIDs)-1 {
			if err := sleepCtx(ctx, c.cfg.BatchDelay); err != nil {
				return nil, err
			}
		}
	}

	result.Stats = batchStats(len(postIDs), result.Succeeded)
	slog.Info("comments batch finished",
		slog.String("run_id", result.RunID),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)),
		slog.Int("total_comments", result.Stats.TotalComments))
	return result, nil
}

func batchStats(requested int, items []BatchItem) BatchStats {
	stats := BatchStats{
		Requested: requested,
		Processed: len(items),
	}
	for _, item := range items {
		stats.TotalComments += item.TotalComments
	}
	if requested > 0 {
		stats.SuccessRate = float64(len(items)) / float64(requested) * 100
	}
	if len(items) > 0 {
		stats.AvgCommentsPerPost = float64(stats.TotalComments) / float64(len(items))
	}
	return stats
}

// GetBrandTrends scans the hot listings of the given subreddits for posts
// mentioning any of the brands and aggregates them into a report. limit is
// the number of hot posts examined per subreddit. Subreddits that fail to
// fetch are skipped; authentication failures abort the scan.
func (c *Client) GetBrandTrends(ctx context.Context, brands, subreddits []string, limit int) (*BrandReport, error) {
	if len(brands) == 0 {
		return nil, &ConfigError{Reason: "no brands given"}
	}
	if len(subreddits) == 0 {
		return nil, &ConfigError{Reason: "no subreddits given"}
	}
	if limit <= 0 {
		limit = hotListingLimit
	}
	if limit > 100 {
		limit = 100
	}

	report := &BrandReport{
		Brands:           brands,
		TargetSubreddits: subreddits,
		SubredditTrends:  make(map[string]SubredditBrandTrend),
		Timestamp:        time.Now().UTC(),
	}

	mentionTotals := make(map[string]int)
	var brandPosts []Post
	processed := 0

	for i, sub := range subreddits {
		posts, err := c.getHotPosts(ctx, sub, limit)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) || ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("skipping subreddit in brand scan", slog.String("subreddit", sub), slog.Any("error", err))
			continue
		}
		processed++

		trend := SubredditBrandTrend{Mentions: make(map[string]int)}
		for _, p := range posts {
			matched := MatchBrands(p, brands)
			if len(matched) == 0 {
				continue
			}
			p.MentionedBrands = matched
			trend.Posts = append(trend.Posts, p)
			trend.TotalBrandPosts++
			for _, brand := range matched {
				trend.Mentions[brand]++
				mentionTotals[brand]++
				report.TotalMentions++
			}
			brandPosts = append(brandPosts, p)
		}
		if trend.TotalBrandPosts > 0 {
			report.SubredditTrends[sub] = trend
		}

		if i < len(subreddits)-1 {
			if err := sleepCtx(ctx, c.cfg.FetchDelay); err != nil {
				return nil, err
			}
		}
	}

	for _, brand := range brands {
		if mentionTotals[brand] > 0 {
			report.Popularity = append(report.Popularity, BrandMention{Brand: brand, Count: mentionTotals[brand]})
		}
	}
	sort.SliceStable(report.Popularity, func(i, j int) bool {
		return report.Popularity[i].Count > report.Popularity[j].Count
	})
	if len(report.Popularity) > 0 {
		report.MostPopularBrand = report.Popularity[0].Brand
	}
	report.Keywords = rankKeywords(brandPosts)
	report.Summary = BrandSummary{
		SubredditsWithBrandContent: len(report.SubredditTrends),
		TotalBrandPosts:            len(brandPosts),
		BrandsMentioned:            len(report.Popularity),
		SubredditsProcessed:        processed,
	}
	return report, nil
}

// GetBrandCommentsBatch composes a brand scan with a comments batch: it finds
// the brand-mentioning posts across the subreddits, ranks them by comment
// count, and fetches the comment trees of the top maxPosts posts. The rank of
// each fetched post is recorded in the result.
func (c *Client) GetBrandCommentsBatch(ctx context.Context, brands, subreddits []string, limit, maxPosts int) (*BrandReport, *BatchResult, error) {
	report, err := c.GetBrandTrends(ctx, brands, subreddits, limit)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{})
	var candidates []Post
	for _, trend := range report.SubredditTrends {
		for _, p := range trend.Posts {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			candidates = append(candidates, p)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].NumComments > candidates[j].NumComments
	})

	if maxPosts <= 0 || maxPosts > maxBatchSize {
		maxPosts = maxBatchSize
	}
	if len(candidates) > maxPosts {
		candidates = candidates[:maxPosts]
	}
	if len(candidates) == 0 {
		return report, &BatchResult{RunID: uuid.NewString(), Timestamp: time.Now().UTC()}, nil
	}

	ids := make([]string, len(candidates))
	for i, p := range candidates {
		ids[i] = p.ID
	}
	batch, err := c.GetCommentsBatch(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for i := range batch.Succeeded {
		for rank, id := range ids {
			if batch.Succeeded[i].ID == id {
				batch.Succeeded[i].Rank = rank + 1
				break
			}
		}
	}
	return report, batch, nil
}

// GetTrendingComments composes the trends cache with a comments batch: it
// takes the current snapshot's hottest posts and fetches their comment
// trees. The snapshot comes from cache when fresh, so repeated calls within
// the TTL only pay for the comment fetches.
func (c *Client) GetTrendingComments(ctx context.Context, subreddits []string, limit int) (*TrendsSnapshot, *BatchResult, error) {
	snapshot, err := c.GetTrends(ctx, subreddits)
	if err != nil {
		return nil, nil, err
	}

	if limit <= 0 || limit > snapshotHotPosts {
		limit = snapshotHotPosts
	}
	posts := snapshot.HotPosts
	if len(posts) > limit {
		posts = posts[:limit]
	}
	if len(posts) == 0 {
		return snapshot, &BatchResult{RunID: uuid.NewString(), Timestamp: time.Now().UTC()}, nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	batch, err := c.GetCommentsBatch(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for i := range batch.Succeeded {
		for rank, id := range ids {
			if batch.Succeeded[i].ID == id {
				batch.Succeeded[i].Rank = rank + 1
				break
			}
		}
	}
	return snapshot, batch, nil
}
