package reddit

import "time"

// Post is a ranked content item from a listing endpoint.
type Post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Subreddit       string    `json:"subreddit"`
	Score           int       `json:"score"`
	UpvoteRatio     float64   `json:"upvote_ratio"`
	NumComments     int       `json:"num_comments"`
	CreatedAt       time.Time `json:"created_utc"`
	URL             string    `json:"url"`
	Permalink       string    `json:"permalink"`
	SelftextExcerpt string    `json:"selftext"`
	Over18          bool      `json:"over_18"`
	Spoiler         bool      `json:"spoiler"`
	FlairText       string    `json:"flair_text,omitempty"`
	Domain          string    `json:"domain"`

	// MentionedBrands is filled by brand matching; empty elsewhere.
	MentionedBrands []string `json:"mentioned_brands,omitempty"`
}

// SubredditInfo describes a subreddit from the about/popular endpoints.
type SubredditInfo struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subscribers int       `json:"subscribers"`
	ActiveUsers int       `json:"active_users"`
	CreatedAt   time.Time `json:"created_utc"`
	Over18      bool      `json:"over18"`
	URL         string    `json:"url"`
}

// SubredditActivity holds the derived activity metrics for one subreddit.
type SubredditActivity struct {
	Name            string    `json:"name"`
	Subscribers     int       `json:"subscribers"`
	ActiveUsers     int       `json:"active_users"`
	ActivityRatio   float64   `json:"activity_ratio"`
	RecentPostCount int       `json:"recent_posts_count"`
	AvgRecentScore  float64   `json:"avg_recent_score"`
	CreatedAt       time.Time `json:"created_utc"`
	Description     string    `json:"description"`
}

// KeywordCount is one entry of a keyword ranking.
type KeywordCount struct {
	Keyword    string  `json:"keyword"`
	Count      int     `json:"count"`
	TrendScore float64 `json:"trend_score"`
}

// TrendsSummary carries the roll-up counters of a trends snapshot.
type TrendsSummary struct {
	TotalHotPosts       int     `json:"total_hot_posts"`
	TargetSubreddits    int     `json:"target_subreddits_count"`
	ActiveSubreddits    int     `json:"active_subreddits"`
	TotalKeywords       int     `json:"total_keywords"`
	MonitoredSubreddits int     `json:"monitored_subreddits"`
	AvgHotPostScore     float64 `json:"avg_hot_post_score"`
	TopKeyword          string  `json:"top_trending_keyword"`
}

// TrendsSnapshot is the immutable result of one trends refresh for a given
// canonical key. Cached copies are returned as-is; callers must not mutate.
type TrendsSnapshot struct {
	Key                 string                       `json:"cache_key"`
	Timestamp           time.Time                    `json:"timestamp"`
	TargetSubreddits    []string                     `json:"target_subreddits"`
	SubredditPostCounts map[string]int               `json:"subreddit_post_counts"`
	HotPosts            []Post                       `json:"hot_posts"`
	Keywords            []KeywordCount               `json:"trending_keywords"`
	Activity            map[string]SubredditActivity `json:"subreddit_activity"`
	Summary             TrendsSummary                `json:"summary"`
}

// AggregatedTrends is the union of several snapshots, re-ranked. It is a
// composition over the cache, not a cached object itself.
type AggregatedTrends struct {
	Timestamp           time.Time                    `json:"timestamp"`
	Groups              int                          `json:"aggregated_from_groups"`
	GroupsProcessed     int                          `json:"groups_processed"`
	TargetSubreddits    []string                     `json:"all_target_subreddits"`
	SubredditPostCounts map[string]int               `json:"subreddit_post_counts"`
	HotPosts            []Post                       `json:"hot_posts"`
	Keywords            []KeywordCount               `json:"trending_keywords"`
	Activity            map[string]SubredditActivity `json:"subreddit_activity"`
	Summary             TrendsSummary                `json:"summary"`
}

// BrandMention pairs a brand with its mention count, for popularity rankings.
type BrandMention struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// SubredditBrandTrend is the brand activity observed in one subreddit.
type SubredditBrandTrend struct {
	TotalBrandPosts int            `json:"total_brand_posts"`
	Mentions        map[string]int `json:"brand_mentions"`
	Posts           []Post         `json:"hot_posts"`
}

// BrandSummary carries the roll-up counters of a brand report.
type BrandSummary struct {
	SubredditsWithBrandContent int `json:"subreddits_with_brand_content"`
	TotalBrandPosts            int `json:"total_brand_posts"`
	BrandsMentioned            int `json:"brands_mentioned"`
	SubredditsProcessed        int `json:"total_subreddits_processed"`
}

// BrandReport aggregates brand mentions across the requested subreddits.
type BrandReport struct {
	Brands           []string                       `json:"brands"`
	TargetSubreddits []string                       `json:"target_subreddits"`
	TotalMentions    int                            `json:"total_brand_mentions"`
	Popularity       []BrandMention                 `json:"brand_popularity"`
	MostPopularBrand string                         `json:"most_popular_brand,omitempty"`
	SubredditTrends  map[string]SubredditBrandTrend `json:"subreddit_trends"`
	Keywords         []KeywordCount                 `json:"trending_keywords"`
	Summary          BrandSummary                   `json:"summary"`
	Timestamp        time.Time                      `json:"timestamp"`
}

// PostInfo is the full projection of a post from the comments endpoint.
type PostInfo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Subreddit     string    `json:"subreddit"`
	Score         int       `json:"score"`
	Ups           int       `json:"ups"`
	Downs         int       `json:"downs"`
	UpvoteRatio   float64   `json:"upvote_ratio"`
	NumComments   int       `json:"num_comments"`
	CreatedAt     time.Time `json:"created_utc"`
	URL           string    `json:"url"`
	Permalink     string    `json:"permalink"`
	Gilded        int       `json:"gilded"`
	TotalAwards   int       `json:"total_awards_received"`
	Locked        bool      `json:"locked"`
	Archived      bool      `json:"archived"`
	Stickied      bool      `json:"stickied"`
	Distinguished string    `json:"distinguished,omitempty"`
	Edited        bool      `json:"edited"`
}

// CommentNode is one comment in a discussion tree. The node owns its replies;
// trees are acyclic because the source listing is strictly hierarchical.
type CommentNode struct {
	ID               string         `json:"id"`
	Body             string         `json:"body"`
	BodyHTML         string         `json:"body_html"`
	Author           string         `json:"author"`
	Score            int            `json:"score"`
	Ups              int            `json:"ups"`
	Downs            int            `json:"downs"`
	CreatedAt        time.Time      `json:"created_utc"`
	Depth            int            `json:"depth"`
	Permalink        string         `json:"permalink"`
	ParentID         string         `json:"parent_id"`
	LinkID           string         `json:"link_id"`
	IsSubmitter      bool           `json:"is_submitter"`
	Distinguished    string         `json:"distinguished,omitempty"`
	Stickied         bool           `json:"stickied"`
	Gilded           int            `json:"gilded"`
	Controversiality int            `json:"controversiality"`
	Locked           bool           `json:"locked"`
	Archived         bool           `json:"archived"`
	Edited           bool           `json:"edited"`
	Replies          []*CommentNode `json:"replies"`
}

// ThreadStats summarizes one fetched discussion tree.
type ThreadStats struct {
	TotalComments    int  `json:"total_comments"`
	TopLevelComments int  `json:"top_level_comments"`
	HasPostInfo      bool `json:"has_post_info"`
}

// PostThread is the result of a single comments fetch: the post projection
// (nil when the post wrapper is absent) plus the full comment tree.
type PostThread struct {
	PostID   string         `json:"post_id"`
	PostInfo *PostInfo      `json:"post_info"`
	Comments []*CommentNode `json:"comments"`
	Stats    ThreadStats    `json:"stats"`
}

// BatchItem is one successfully fetched post in a batch run.
type BatchItem struct {
	ID            string         `json:"post_id"`
	Rank          int            `json:"rank,omitempty"`
	PostInfo      *PostInfo      `json:"post_info"`
	Comments      []*CommentNode `json:"comments"`
	TotalComments int            `json:"total_comments"`
}

// BatchFailure records one failed post in a batch run.
type BatchFailure struct {
	ID     string `json:"post_id"`
	Reason string `json:"error"`
}

// BatchStats carries the roll-up counters of a batch run.
type BatchStats struct {
	Requested          int     `json:"total_posts_requested"`
	Processed          int     `json:"total_posts_processed"`
	TotalComments      int     `json:"total_comments_fetched"`
	SuccessRate        float64 `json:"success_rate"`
	AvgCommentsPerPost float64 `json:"avg_comments_per_post"`
}

// BatchResult is the outcome of one sequential comment-tree batch run.
type BatchResult struct {
	RunID        string         `json:"run_id"`
	RequestedIDs []string       `json:"requested_post_ids"`
	Succeeded    []BatchItem    `json:"posts_data"`
	Failed       []BatchFailure `json:"failed_requests"`
	Stats        BatchStats     `json:"batch_stats"`
	Timestamp    time.Time      `json:"timestamp"`
}
