package reddit

import (
	"regexp"
	"sort"
	"strings"
)

const maxKeywords = 20

// wordPattern matches candidate keywords: lowercase runs of at least three
// letters, so numerals and short glue words never rank.
var wordPattern = regexp.MustCompile(`[a-z]{3,}`)

// stopwords are excluded from keyword rankings. The set covers common English
// function words plus platform vocabulary that would otherwise dominate
// every ranking.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "its": {}, "may": {}, "new": {},
	"now": {}, "old": {}, "see": {}, "two": {}, "way": {}, "who": {},
	"did": {}, "yes": {}, "she": {}, "use": {}, "will": {}, "with": {},
	"this": {}, "that": {}, "have": {}, "from": {}, "they": {},
	"been": {}, "said": {}, "each": {}, "which": {}, "their": {},
	"time": {}, "would": {}, "there": {}, "what": {}, "about": {},
	"when": {}, "make": {}, "like": {}, "into": {}, "them": {},
	"could": {}, "then": {}, "than": {}, "other": {}, "more": {},
	"very": {}, "some": {}, "just": {}, "over": {}, "such": {},
	"only": {}, "your": {}, "after": {}, "first": {}, "well": {},
	"also": {}, "where": {}, "much": {}, "before": {}, "these": {},
	"here": {}, "should": {}, "because": {}, "does": {}, "most": {},
	"even": {}, "being": {}, "were": {}, "while": {}, "still": {},
	"anyone": {}, "really": {}, "think": {}, "know": {}, "people": {},
	"reddit": {}, "post": {}, "posts": {}, "comment": {}, "comments": {},
	"thread": {}, "subreddit": {}, "upvote": {}, "karma": {},
}

// rankKeywords extracts and ranks keywords from post titles and body
// excerpts. Ties keep first-appearance order, so rankings are deterministic
// for a given post sequence. TrendScore is mentions per post.
func rankKeywords(posts []Post) []KeywordCount {
	counts := make(map[string]int)
	var order []string

	for _, p := range posts {
		text := strings.ToLower(p.Title + " " + p.SelftextExcerpt)
		for _, word := range wordPattern.FindAllString(text, -1) {
			if _, skip := stopwords[word]; skip {
				continue
			}
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	ranked := make([]KeywordCount, 0, len(order))
	for _, word := range order {
		kc := KeywordCount{Keyword: word, Count: counts[word]}
		if len(posts) > 0 {
			kc.TrendScore = float64(counts[word]) / float64(len(posts))
		}
		ranked = append(ranked, kc)
	}
	return ranked
}
