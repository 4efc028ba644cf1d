package reddit

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParsePostListing(t *testing.T) {
	body := []byte(`{"kind":"Listing","data":{"children":[
		{"kind":"t3","data":{"id":"abc","title":"New sofa line announced","author":"alice","subreddit":"furniture","score":420,"upvote_ratio":0.97,"num_comments":37,"created_utc":1700000000,"url":"https://example.com/sofa","permalink":"/r/furniture/comments/abc/new_sofa/","selftext":"Pretty excited about this.","over_18":false,"domain":"example.com"}},
		{"kind":"more","data":{"count":12}},
		{"kind":"t3","data":{"id":"def","title":"Second post","author":"bob","subreddit":"furniture","score":10,"created_utc":0,"permalink":"/r/furniture/comments/def/second/"}}
	]}}`)

	posts, err := parsePostListing(body)
	if err != nil {
		t.Fatalf("parsePostListing: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	p := posts[0]
	if p.ID != "abc" || p.Title != "New sofa line announced" || p.Score != 420 {
		t.Errorf("unexpected first post: %+v", p)
	}
	if p.Permalink != "https://reddit.com/r/furniture/comments/abc/new_sofa/" {
		t.Errorf("permalink not absolute: %q", p.Permalink)
	}
	if p.CreatedAt.Unix() != 1700000000 {
		t.Errorf("created_utc: got %v", p.CreatedAt)
	}
	if !posts[1].CreatedAt.IsZero() {
		t.Errorf("zero created_utc should stay zero, got %v", posts[1].CreatedAt)
	}
}

func TestParsePostListingTruncatesSelftext(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	body := []byte(`{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"x","title":"t","selftext":"` + string(long) + `"}}]}}`)

	posts, err := parsePostListing(body)
	if err != nil {
		t.Fatalf("parsePostListing: %v", err)
	}
	if got := len(posts[0].SelftextExcerpt); got != selftextExcerptLen+3 {
		t.Errorf("excerpt length: got %d, want %d", got, selftextExcerptLen+3)
	}
	if posts[0].SelftextExcerpt[selftextExcerptLen:] != "..." {
		t.Errorf("excerpt missing ellipsis: %q", posts[0].SelftextExcerpt[selftextExcerptLen:])
	}
}

func TestExcerptKeepsRuneBoundaries(t *testing.T) {
	// A two-byte rune straddling the cut must be dropped whole, never split.
	s := strings.Repeat("a", selftextExcerptLen-1) + "é rest of the text"
	got := excerpt(s, selftextExcerptLen)
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "a...") {
		t.Errorf("partial rune not dropped: %q", got[len(got)-6:])
	}

	// A rune ending exactly at the cut is kept.
	s = strings.Repeat("a", selftextExcerptLen-2) + "é tail"
	got = excerpt(s, selftextExcerptLen)
	if !utf8.ValidString(got) || !strings.HasSuffix(got, "é...") {
		t.Errorf("complete rune at the boundary should be kept: %q", got)
	}
}

func TestParsePostListingMalformed(t *testing.T) {
	if _, err := parsePostListing([]byte(`{"kind":`)); err == nil {
		t.Fatal("expected error for malformed listing")
	}
}

func TestParseComments(t *testing.T) {
	body := []byte(`[
		{"kind":"Listing","data":{"children":[
			{"kind":"t3","data":{"id":"post1","title":"Discussion","author":"op","subreddit":"golang","score":99,"ups":101,"downs":2,"num_comments":3,"created_utc":1700000000,"permalink":"/r/golang/comments/post1/discussion/","gilded":1,"total_awards_received":2,"edited":1700000500}}
		]}},
		{"kind":"Listing","data":{"children":[
			{"kind":"t1","data":{"id":"c1","body":"top level","author":"alice","score":12,"created_utc":1700000100,"parent_id":"t3_post1","link_id":"t3_post1","replies":{"kind":"Listing","data":{"children":[
				{"kind":"t1","data":{"id":"c2","body":"nested reply","author":"bob","score":4,"parent_id":"t1_c1","link_id":"t3_post1","replies":""}}
			]}}}},
			{"kind":"t1","data":{"id":"c3","body":"","author":"deleted","replies":""}},
			{"kind":"more","data":{"count":50,"children":["c4","c5"]}},
			{"kind":"t1","data":{"id":"c6","body":"another top level","author":"carol","replies":""}}
		]}}
	]`)

	info, comments, err := parseComments(body)
	if err != nil {
		t.Fatalf("parseComments: %v", err)
	}
	if info == nil {
		t.Fatal("expected post info")
	}
	if info.ID != "post1" || info.Gilded != 1 || info.TotalAwards != 2 {
		t.Errorf("unexpected post info: %+v", info)
	}
	if !info.Edited {
		t.Error("numeric edited timestamp should read as edited")
	}

	if len(comments) != 2 {
		t.Fatalf("expected 2 top-level comments, got %d", len(comments))
	}
	c1 := comments[0]
	if c1.ID != "c1" || c1.Depth != 0 {
		t.Errorf("unexpected first comment: %+v", c1)
	}
	if len(c1.Replies) != 1 {
		t.Fatalf("expected 1 nested reply, got %d", len(c1.Replies))
	}
	if c1.Replies[0].ID != "c2" || c1.Replies[0].Depth != 1 {
		t.Errorf("unexpected nested reply: %+v", c1.Replies[0])
	}
	if len(c1.Replies[0].Replies) != 0 {
		t.Errorf("empty-string replies should end recursion, got %d children", len(c1.Replies[0].Replies))
	}

	if got := countNodes(comments); got != 3 {
		t.Errorf("countNodes: got %d, want 3", got)
	}
}

func TestParseCommentsMissingPostWrapper(t *testing.T) {
	body := []byte(`[
		{"kind":"Listing","data":{"children":[]}},
		{"kind":"Listing","data":{"children":[{"kind":"t1","data":{"id":"c1","body":"hello","replies":""}}]}}
	]`)

	info, comments, err := parseComments(body)
	if err != nil {
		t.Fatalf("parseComments: %v", err)
	}
	if info != nil {
		t.Errorf("expected nil post info, got %+v", info)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}
}

func TestParseCommentsDeepNesting(t *testing.T) {
	// Five levels, each with one child.
	body := []byte(`[
		{"kind":"Listing","data":{"children":[]}},
		{"kind":"Listing","data":{"children":[
			{"kind":"t1","data":{"id":"d0","body":"l0","replies":{"kind":"Listing","data":{"children":[
				{"kind":"t1","data":{"id":"d1","body":"l1","replies":{"kind":"Listing","data":{"children":[
					{"kind":"t1","data":{"id":"d2","body":"l2","replies":{"kind":"Listing","data":{"children":[
						{"kind":"t1","data":{"id":"d3","body":"l3","replies":{"kind":"Listing","data":{"children":[
							{"kind":"t1","data":{"id":"d4","body":"l4","replies":""}}
						]}}}}
					]}}}}
				]}}}}
			]}}}}
		]}}
	]`)

	_, comments, err := parseComments(body)
	if err != nil {
		t.Fatalf("parseComments: %v", err)
	}
	if got := countNodes(comments); got != 5 {
		t.Fatalf("countNodes: got %d, want 5", got)
	}
	node := comments[0]
	for depth := 0; depth < 5; depth++ {
		if node.Depth != depth {
			t.Errorf("depth mismatch at %s: got %d, want %d", node.ID, node.Depth, depth)
		}
		if depth < 4 {
			node = node.Replies[0]
		}
	}
}

func TestParseSubredditAbout(t *testing.T) {
	info, err := parseSubredditAbout(aboutJSON("golang", 250000, 1200))
	if err != nil {
		t.Fatalf("parseSubredditAbout: %v", err)
	}
	if info.Name != "golang" || info.Subscribers != 250000 || info.ActiveUsers != 1200 {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.URL != "https://reddit.com/r/golang" {
		t.Errorf("url: %q", info.URL)
	}
}

func TestParseSubredditAboutMissingName(t *testing.T) {
	if _, err := parseSubredditAbout([]byte(`{"kind":"t5","data":{}}`)); err == nil {
		t.Fatal("expected error for missing display_name")
	}
}

func TestParsePopularSubreddits(t *testing.T) {
	body := []byte(`{"kind":"Listing","data":{"children":[
		{"kind":"t5","data":{"display_name":"funny","title":"funny","subscribers":40000000,"accounts_active":80000,"created_utc":1200000000}},
		{"kind":"t3","data":{"id":"not-a-sub"}},
		{"kind":"t5","data":{"display_name":"AskReddit","subscribers":45000000}}
	]}}`)

	subs, err := parsePopularSubreddits(body)
	if err != nil {
		t.Fatalf("parsePopularSubreddits: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subreddits, got %d", len(subs))
	}
	if subs[0].Name != "funny" || subs[1].Name != "AskReddit" {
		t.Errorf("unexpected names: %q, %q", subs[0].Name, subs[1].Name)
	}
}
