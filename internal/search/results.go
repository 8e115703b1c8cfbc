/*
Package search implements full-text search over the catalog.

Items are indexed in a Bleve index (title, description and category). The
Catalog wraps the index, hydrates hits from storage and records each query
as a search event, which is how search terms reach the recommendation
composer.
*/
package search

// Hit is a single index match with its relevance score.
type Hit struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// itemDocument is an item as stored in the search index.
type itemDocument struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
