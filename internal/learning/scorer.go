package learning

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/khanglvm/city-hub/internal/storage"
)

const (
	// defaultTopCategories is how many categories feed the specialised query.
	defaultTopCategories = 3

	// defaultTopSearchTerms is how many recent search terms are kept.
	defaultTopSearchTerms = 3

	// defaultMinTermLength is the shortest sanitised term, in runes, that is
	// worth a text match.
	defaultMinTermLength = 3
)

// ContextOptions tunes BuildContext. Zero values select the defaults.
type ContextOptions struct {
	Weights        map[string]float64
	TopCategories  int
	TopSearchTerms int
	MinTermLength  int
}

// RecommendationContext is the per-request summary of a user's recent
// behaviour. It is computed once and not persisted.
type RecommendationContext struct {
	// CategoryScores maps category to its weighted event score.
	CategoryScores map[string]float64 `json:"category_scores"`

	// TopCategories is ordered by score, ties by first appearance.
	TopCategories []string `json:"top_categories"`

	// TopSearchTerms are sanitised, distinct, most recent first.
	TopSearchTerms []string `json:"top_search_terms"`
}

// Empty reports whether the context offers nothing to personalise on.
func (c RecommendationContext) Empty() bool {
	return len(c.TopCategories) == 0 && len(c.TopSearchTerms) == 0
}

// BuildContext scores categories and extracts search terms from events,
// which must be ordered newest first.
//
// Events carrying a category add Weight(type) to that category. Search
// events contribute their MetaQuery value as a search term.
func BuildContext(events []storage.UserEvent, opts ContextOptions) RecommendationContext {
	if opts.Weights == nil {
		opts.Weights = DefaultWeights()
	}
	if opts.TopCategories <= 0 {
		opts.TopCategories = defaultTopCategories
	}
	if opts.TopSearchTerms <= 0 {
		opts.TopSearchTerms = defaultTopSearchTerms
	}
	if opts.MinTermLength <= 0 {
		opts.MinTermLength = defaultMinTermLength
	}

	rc := RecommendationContext{
		CategoryScores: make(map[string]float64),
		TopCategories:  []string{},
		TopSearchTerms: []string{},
	}

	var order []string
	seenTerms := make(map[string]bool)

	for _, e := range events {
		if e.Category != "" {
			if _, ok := rc.CategoryScores[e.Category]; !ok {
				order = append(order, e.Category)
			}
			rc.CategoryScores[e.Category] += Weight(opts.Weights, e.EventType)
		}

		if e.EventType != EventSearch || len(rc.TopSearchTerms) >= opts.TopSearchTerms {
			continue
		}
		term := SanitizeTerm(e.Metadata[MetaQuery])
		if utf8.RuneCountInString(term) < opts.MinTermLength {
			continue
		}
		key := strings.ToLower(term)
		if seenTerms[key] {
			continue
		}
		seenTerms[key] = true
		rc.TopSearchTerms = append(rc.TopSearchTerms, term)
	}

	// Stable sort keeps first-seen order among equal scores
	sort.SliceStable(order, func(i, j int) bool {
		return rc.CategoryScores[order[i]] > rc.CategoryScores[order[j]]
	})
	if len(order) > opts.TopCategories {
		order = order[:opts.TopCategories]
	}
	rc.TopCategories = append(rc.TopCategories, order...)

	return rc
}

// termMetachars are stripped from search terms before they reach a filter.
var termMetachars = strings.NewReplacer(
	"%", " ", "*", " ", ",", " ", "(", " ", ")", " ",
	`"`, " ", "'", " ", `\`, " ", ";", " ",
)

// SanitizeTerm strips filter metacharacters and collapses whitespace.
func SanitizeTerm(raw string) string {
	return strings.Join(strings.Fields(termMetachars.Replace(raw)), " ")
}
