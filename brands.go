package reddit

import "strings"

// MatchBrands returns the brands mentioned in the post's title or body
// excerpt, preserving the caller's brand order. Matching is case-insensitive
// raw substring containment: "Ika" matches inside "Furnika". Callers who
// need word boundaries should pre-space their brand terms.
func MatchBrands(p Post, brands []string) []string {
	text := strings.ToLower(p.Title + " " + p.SelftextExcerpt)
	var matched []string
	for _, brand := range brands {
		if brand == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(brand)) {
			matched = append(matched, brand)
		}
	}
	return matched
}
