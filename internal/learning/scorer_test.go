package learning

import (
	"reflect"
	"testing"
	"time"

	"github.com/khanglvm/city-hub/internal/storage"
)

func ev(eventType, category string) storage.UserEvent {
	return storage.UserEvent{EventType: eventType, Category: category, CreatedAt: time.Now()}
}

func search(query string) storage.UserEvent {
	return storage.UserEvent{EventType: EventSearch, Metadata: map[string]string{MetaQuery: query}}
}

func TestBuildContext_Empty(t *testing.T) {
	rc := BuildContext(nil, ContextOptions{})

	if !rc.Empty() {
		t.Errorf("expected empty context, got %+v", rc)
	}
	if rc.TopCategories == nil || rc.TopSearchTerms == nil {
		t.Error("expected non-nil slices")
	}
}

func TestBuildContext_CategoryWeights(t *testing.T) {
	events := []storage.UserEvent{
		ev(EventView, "cafes"),
		ev(EventContact, "restaurants"),
		ev(EventView, "cafes"),
		ev(EventShare, "cafes"),
		ev(EventFavorite, "market_vehicles"),
		ev(EventView, ""), // no category, ignored
	}

	rc := BuildContext(events, ContextOptions{})

	want := map[string]float64{"cafes": 5, "restaurants": 5, "market_vehicles": 5}
	if !reflect.DeepEqual(rc.CategoryScores, want) {
		t.Errorf("scores = %v, want %v", rc.CategoryScores, want)
	}
}

func TestBuildContext_TopCategoriesTieBreakByFirstSeen(t *testing.T) {
	events := []storage.UserEvent{
		ev(EventView, "parks"),       // 2
		ev(EventView, "museums"),     // 2
		ev(EventContact, "hotels"),   // 5
		ev(EventView, "bars"),        // 2
		ev(EventView, "attractions"), // 2
	}

	rc := BuildContext(events, ContextOptions{})

	want := []string{"hotels", "parks", "museums"}
	if !reflect.DeepEqual(rc.TopCategories, want) {
		t.Errorf("top = %v, want %v", rc.TopCategories, want)
	}
}

func TestBuildContext_SearchTerms(t *testing.T) {
	events := []storage.UserEvent{
		search("  Pho   Bo "),
		search("ok"),           // too short
		search("pho bo"),       // duplicate, case-insensitive
		search("100% (cheap)"), // sanitised to "100 cheap"
		search("%%"),           // empty after sanitising
		search("honda"),
		search("apartment"), // beyond the first three
	}

	rc := BuildContext(events, ContextOptions{})

	want := []string{"Pho Bo", "100 cheap", "honda"}
	if !reflect.DeepEqual(rc.TopSearchTerms, want) {
		t.Errorf("terms = %v, want %v", rc.TopSearchTerms, want)
	}
}

func TestBuildContext_CustomOptions(t *testing.T) {
	events := []storage.UserEvent{
		ev(EventView, "a"),
		ev("custom", "b"),
		search("abcd"),
	}

	rc := BuildContext(events, ContextOptions{
		Weights:        map[string]float64{"custom": 10},
		TopCategories:  1,
		TopSearchTerms: 1,
		MinTermLength:  5,
	})

	if !reflect.DeepEqual(rc.TopCategories, []string{"b"}) {
		t.Errorf("top = %v, want [b]", rc.TopCategories)
	}
	if rc.CategoryScores["a"] != DefaultWeight {
		t.Errorf("view missing from custom table should weigh %v, got %v", DefaultWeight, rc.CategoryScores["a"])
	}
	if len(rc.TopSearchTerms) != 0 {
		t.Errorf("expected 4-rune term to be dropped, got %v", rc.TopSearchTerms)
	}
}

func TestSanitizeTerm(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"  a  b  ", "a b"},
		{`x,y(z)"w'`, "x y z w"},
		{`back\slash;`, "back slash"},
		{"phở gà", "phở gà"},
		{"*", ""},
	}

	for _, tt := range tests {
		if got := SanitizeTerm(tt.in); got != tt.want {
			t.Errorf("SanitizeTerm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWeight(t *testing.T) {
	weights := DefaultWeights()

	if Weight(weights, EventContact) != 5 || Weight(weights, EventFavorite) != 5 || Weight(weights, EventView) != 2 {
		t.Errorf("unexpected default weights: %v", weights)
	}
	if Weight(weights, EventSearch) != 1 {
		t.Error("expected unlisted types to weigh 1")
	}
}
