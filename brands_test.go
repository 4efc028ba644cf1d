package reddit

import (
	"reflect"
	"testing"
)

func TestMatchBrands(t *testing.T) {
	p := Post{
		Title:           "IKEA vs Wayfair: which is worth it?",
		SelftextExcerpt: "I also looked at west elm but it was too expensive.",
	}
	brands := []string{"Ikea", "West Elm", "Article", "Wayfair"}

	got := MatchBrands(p, brands)
	want := []string{"Ikea", "West Elm", "Wayfair"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MatchBrands: got %v, want %v", got, want)
	}
}

func TestMatchBrandsSubstringContainment(t *testing.T) {
	p := Post{Title: "Just assembled my Furnika bookshelf"}

	if got := MatchBrands(p, []string{"Ika"}); len(got) != 1 {
		t.Fatalf("substring match inside a longer word: got %v", got)
	}
}

func TestMatchBrandsNoMatch(t *testing.T) {
	p := Post{Title: "Weekly discussion thread"}

	if got := MatchBrands(p, []string{"Ikea", ""}); got != nil {
		t.Fatalf("expected no matches, got %v", got)
	}
}
