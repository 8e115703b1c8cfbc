package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const defaultLimit = 10

// Search performs BM25 keyword search over titles and descriptions.
func (i *Indexer) Search(text string, limit int) ([]Hit, error) {
	if strings.TrimSpace(text) == "" {
		return []Hit{}, nil
	}
	return i.run(buildMatchQuery(text), limit)
}

// SearchInCategory is Search restricted to one category.
func (i *Indexer) SearchInCategory(text, category string, limit int) ([]Hit, error) {
	if strings.TrimSpace(text) == "" {
		return []Hit{}, nil
	}

	categoryQuery := bleve.NewTermQuery(category)
	categoryQuery.SetField("category")

	return i.run(bleve.NewConjunctionQuery(buildMatchQuery(text), categoryQuery), limit)
}

func (i *Indexer) run(q query.Query, limit int) ([]Hit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = defaultLimit
	}

	searchRequest := bleve.NewSearchRequestOptions(q, limit, 0, false)
	searchRequest.Fields = []string{"category"}

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}
	return convertBleveResults(results), nil
}

// convertBleveResults converts Bleve hits, keeping relevance order.
func convertBleveResults(results *bleve.SearchResult) []Hit {
	hits := make([]Hit, 0, len(results.Hits))
	for _, h := range results.Hits {
		category, _ := h.Fields["category"].(string)
		hits = append(hits, Hit{
			ID:       h.ID,
			Category: category,
			Score:    h.Score,
		})
	}
	return hits
}
