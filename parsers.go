package reddit

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// selftextExcerptLen caps the post body carried into analytics.
const selftextExcerptLen = 200

// --- Raw wire envelopes ---

// rawListing is Reddit's Listing envelope: {kind, data:{children:[...]}}.
type rawListing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []rawThing `json:"children"`
		After    string     `json:"after"`
	} `json:"data"`
}

// rawThing is one kind-tagged child. Data stays raw until the kind is known.
type rawThing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type rawPost struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Subreddit     string  `json:"subreddit"`
	Score         int     `json:"score"`
	Ups           int     `json:"ups"`
	Downs         int     `json:"downs"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	NumComments   int     `json:"num_comments"`
	CreatedUTC    float64 `json:"created_utc"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	Selftext      string  `json:"selftext"`
	Over18        bool    `json:"over_18"`
	Spoiler       bool    `json:"spoiler"`
	LinkFlairText string  `json:"link_flair_text"`
	Domain        string  `json:"domain"`
	Gilded        int     `json:"gilded"`
	TotalAwards   int     `json:"total_awards_received"`
	Locked        bool    `json:"locked"`
	Archived      bool    `json:"archived"`
	Stickied      bool    `json:"stickied"`
	Distinguished string  `json:"distinguished"`
	Edited        anyBool `json:"edited"`
}

type rawComment struct {
	ID               string          `json:"id"`
	Body             string          `json:"body"`
	BodyHTML         string          `json:"body_html"`
	Author           string          `json:"author"`
	Score            int             `json:"score"`
	Ups              int             `json:"ups"`
	Downs            int             `json:"downs"`
	CreatedUTC       float64         `json:"created_utc"`
	Permalink        string          `json:"permalink"`
	ParentID         string          `json:"parent_id"`
	LinkID           string          `json:"link_id"`
	IsSubmitter      bool            `json:"is_submitter"`
	Distinguished    string          `json:"distinguished"`
	Stickied         bool            `json:"stickied"`
	Gilded           int             `json:"gilded"`
	Controversiality int             `json:"controversiality"`
	Locked           bool            `json:"locked"`
	Archived         bool            `json:"archived"`
	Edited           anyBool         `json:"edited"`
	Replies          json.RawMessage `json:"replies"`
}

// anyBool tolerates Reddit's "edited" field, which is false or an edit
// timestamp. Any non-false value reads as true.
type anyBool bool

func (b *anyBool) UnmarshalJSON(data []byte) error {
	s := string(data)
	*b = anyBool(s != "false" && s != "null" && s != `""` && s != "0")
	return nil
}

// utcTime converts a created_utc epoch into time.Time; zero stays zero.
func utcTime(epoch float64) time.Time {
	if epoch <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(epoch), 0).UTC()
}

// excerpt returns s truncated to at most n bytes with a trailing ellipsis,
// backing off to a rune boundary so no multibyte sequence is cut.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// --- Listings ---

// parsePostListing projects a hot/new listing into Posts, in listing order.
// Entries that are not posts or fail to decode are skipped.
func parsePostListing(body []byte) ([]Post, error) {
	var listing rawListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("unmarshal post listing: %w", err)
	}

	posts := make([]Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var raw rawPost
		if err := json.Unmarshal(child.Data, &raw); err != nil {
			continue
		}
		posts = append(posts, Post{
			ID:              raw.ID,
			Title:           raw.Title,
			Author:          raw.Author,
			Subreddit:       raw.Subreddit,
			Score:           raw.Score,
			UpvoteRatio:     raw.UpvoteRatio,
			NumComments:     raw.NumComments,
			CreatedAt:       utcTime(raw.CreatedUTC),
			URL:             raw.URL,
			Permalink:       "https://reddit.com" + raw.Permalink,
			SelftextExcerpt: excerpt(raw.Selftext, selftextExcerptLen),
			Over18:          raw.Over18,
			Spoiler:         raw.Spoiler,
			FlairText:       raw.LinkFlairText,
			Domain:          raw.Domain,
		})
	}
	return posts, nil
}

// parseSubredditAbout projects an about response into SubredditInfo.
func parseSubredditAbout(body []byte) (*SubredditInfo, error) {
	var raw struct {
		Data struct {
			DisplayName       string  `json:"display_name"`
			Title             string  `json:"title"`
			PublicDescription string  `json:"public_description"`
			Subscribers       int     `json:"subscribers"`
			AccountsActive    int     `json:"accounts_active"`
			CreatedUTC        float64 `json:"created_utc"`
			Over18            bool    `json:"over18"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal subreddit about: %w", err)
	}
	if raw.Data.DisplayName == "" {
		return nil, fmt.Errorf("subreddit about missing display_name")
	}
	return &SubredditInfo{
		Name:        raw.Data.DisplayName,
		Title:       raw.Data.Title,
		Description: raw.Data.PublicDescription,
		Subscribers: raw.Data.Subscribers,
		ActiveUsers: raw.Data.AccountsActive,
		CreatedAt:   utcTime(raw.Data.CreatedUTC),
		Over18:      raw.Data.Over18,
		URL:         "https://reddit.com/r/" + raw.Data.DisplayName,
	}, nil
}

// parsePopularSubreddits projects the popular listing into SubredditInfos.
func parsePopularSubreddits(body []byte) ([]SubredditInfo, error) {
	var listing rawListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("unmarshal popular listing: %w", err)
	}

	subs := make([]SubredditInfo, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "t5" {
			continue
		}
		var raw struct {
			DisplayName       string  `json:"display_name"`
			Title             string  `json:"title"`
			PublicDescription string  `json:"public_description"`
			Subscribers       int     `json:"subscribers"`
			AccountsActive    int     `json:"accounts_active"`
			CreatedUTC        float64 `json:"created_utc"`
			Over18            bool    `json:"over18"`
		}
		if err := json.Unmarshal(child.Data, &raw); err != nil {
			continue
		}
		subs = append(subs, SubredditInfo{
			Name:        raw.DisplayName,
			Title:       raw.Title,
			Description: excerpt(raw.PublicDescription, selftextExcerptLen),
			Subscribers: raw.Subscribers,
			ActiveUsers: raw.AccountsActive,
			CreatedAt:   utcTime(raw.CreatedUTC),
			Over18:      raw.Over18,
			URL:         "https://reddit.com/r/" + raw.DisplayName,
		})
	}
	return subs, nil
}

// --- Comment trees ---

// parseComments projects the two-element comments response: element 0 wraps
// the post, element 1 holds the comment listing. A missing post wrapper
// yields a nil PostInfo without aborting comment extraction.
func parseComments(body []byte) (*PostInfo, []*CommentNode, error) {
	var envelope []rawListing
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("unmarshal comments response: %w", err)
	}

	var info *PostInfo
	if len(envelope) > 0 && len(envelope[0].Data.Children) > 0 {
		info = parsePostInfo(envelope[0].Data.Children[0])
	}

	var comments []*CommentNode
	if len(envelope) > 1 {
		comments = extractComments(envelope[1].Data.Children, 0)
	}
	return info, comments, nil
}

func parsePostInfo(thing rawThing) *PostInfo {
	if thing.Kind != "t3" {
		return nil
	}
	var raw rawPost
	if err := json.Unmarshal(thing.Data, &raw); err != nil {
		return nil
	}
	return &PostInfo{
		ID:            raw.ID,
		Title:         raw.Title,
		Author:        raw.Author,
		Subreddit:     raw.Subreddit,
		Score:         raw.Score,
		Ups:           raw.Ups,
		Downs:         raw.Downs,
		UpvoteRatio:   raw.UpvoteRatio,
		NumComments:   raw.NumComments,
		CreatedAt:     utcTime(raw.CreatedUTC),
		URL:           raw.URL,
		Permalink:     "https://reddit.com" + raw.Permalink,
		Gilded:        raw.Gilded,
		TotalAwards:   raw.TotalAwards,
		Locked:        raw.Locked,
		Archived:      raw.Archived,
		Stickied:      raw.Stickied,
		Distinguished: raw.Distinguished,
		Edited:        bool(raw.Edited),
	}
}

// extractComments walks a comment listing depth-first, in original order.
// Pagination placeholders (kind != "t1") and empty bodies are skipped; the
// nested replies listing, when present, produces the node's children at
// depth+1. Reddit sends replies as "" when a comment has none, which fails
// the listing unmarshal and correctly ends the recursion.
func extractComments(children []rawThing, depth int) []*CommentNode {
	var nodes []*CommentNode
	for _, child := range children {
		if child.Kind != "t1" {
			continue
		}
		var raw rawComment
		if err := json.Unmarshal(child.Data, &raw); err != nil {
			continue
		}
		if raw.Body == "" {
			continue
		}

		node := &CommentNode{
			ID:               raw.ID,
			Body:             raw.Body,
			BodyHTML:         raw.BodyHTML,
			Author:           raw.Author,
			Score:            raw.Score,
			Ups:              raw.Ups,
			Downs:            raw.Downs,
			CreatedAt:        utcTime(raw.CreatedUTC),
			Depth:            depth,
			Permalink:        "https://reddit.com" + raw.Permalink,
			ParentID:         raw.ParentID,
			LinkID:           raw.LinkID,
			IsSubmitter:      raw.IsSubmitter,
			Distinguished:    raw.Distinguished,
			Stickied:         raw.Stickied,
			Gilded:           raw.Gilded,
			Controversiality: raw.Controversiality,
			Locked:           raw.Locked,
			Archived:         raw.Archived,
			Edited:           bool(raw.Edited),
		}

		if len(raw.Replies) > 0 {
			var replies rawListing
			if err := json.Unmarshal(raw.Replies, &replies); err == nil && len(replies.Data.Children) > 0 {
				node.Replies = extractComments(replies.Data.Children, depth+1)
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// countNodes returns the total node count across all depths of the trees.
func countNodes(nodes []*CommentNode) int {
	count := len(nodes)
	for _, n := range nodes {
		count += countNodes(n.Replies)
	}
	return count
}
