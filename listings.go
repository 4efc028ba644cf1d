package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// getHotPosts fetches the hot listing of one subreddit.
func (c *Client) getHotPosts(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	body, err := c.doGET(ctx, epHot, c.hotURL(subreddit, limit))
	if err != nil {
		return nil, err
	}
	return parsePostListing(body)
}

// getNewPosts fetches the newest posts of one subreddit.
func (c *Client) getNewPosts(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	body, err := c.doGET(ctx, epNew, c.newURL(subreddit, limit))
	if err != nil {
		return nil, err
	}
	return parsePostListing(body)
}

// getSubredditAbout fetches the about metadata of one subreddit.
func (c *Client) getSubredditAbout(ctx context.Context, subreddit string) (*SubredditInfo, error) {
	body, err := c.doGET(ctx, epAbout, c.aboutURL(subreddit))
	if err != nil {
		return nil, err
	}
	return parseSubredditAbout(body)
}

// GetPopularSubreddits returns the site-wide popular subreddit listing.
// The limit is clamped to Reddit's 100-per-page maximum.
func (c *Client) GetPopularSubreddits(ctx context.Context, limit int) ([]SubredditInfo, error) {
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	body, err := c.doGET(ctx, epPopular, c.popularURL(limit))
	if err != nil {
		return nil, err
	}
	return parsePopularSubreddits(body)
}

// TestAuthentication verifies the configured credentials by fetching the
// authenticated identity. It returns the account name on success.
func (c *Client) TestAuthentication(ctx context.Context) (string, error) {
	body, err := c.doGET(ctx, epMe, c.meURL())
	if err != nil {
		return "", err
	}

	var me struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return "", fmt.Errorf("unmarshal identity: %w", err)
	}
	if me.Name == "" {
		return "", fmt.Errorf("identity response missing name")
	}
	slog.Info("authentication verified", slog.String("account", me.Name))
	return me.Name, nil
}
