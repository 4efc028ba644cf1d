package reddit

import (
	"fmt"
	"net/url"
)

const (
	defaultOAuthURL = "https://oauth.reddit.com"
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
)

// Endpoint names used for rate limiting, metrics, and error reporting.
const (
	epToken    = "AccessToken"
	epMe       = "Me"
	epHot      = "HotListing"
	epNew      = "NewListing"
	epAbout    = "SubredditAbout"
	epPopular  = "PopularSubreddits"
	epComments = "Comments"
)

func (c *Client) hotURL(subreddit string, limit int) string {
	return fmt.Sprintf("%s/r/%s/hot?limit=%d", c.cfg.OAuthURL, url.PathEscape(subreddit), limit)
}

func (c *Client) newURL(subreddit string, limit int) string {
	return fmt.Sprintf("%s/r/%s/new?limit=%d", c.cfg.OAuthURL, url.PathEscape(subreddit), limit)
}

func (c *Client) aboutURL(subreddit string) string {
	return fmt.Sprintf("%s/r/%s/about", c.cfg.OAuthURL, url.PathEscape(subreddit))
}

func (c *Client) popularURL(limit int) string {
	return fmt.Sprintf("%s/subreddits/popular?limit=%d", c.cfg.OAuthURL, limit)
}

func (c *Client) commentsURL(postID string) string {
	return fmt.Sprintf("%s/comments/%s", c.cfg.OAuthURL, url.PathEscape(postID))
}

func (c *Client) meURL() string {
	return c.cfg.OAuthURL + "/api/v1/me"
}
