package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/storage"
)

// Indexer manages the full-text index of catalog items.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
	indexPath  string
}

// NewIndexer creates a new search indexer with in-memory Bleve index.
func NewIndexer() (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Indexer{bleveIndex: index}, nil
}

// NewIndexerWithPath opens or creates a persistent scorch index at indexPath.
func NewIndexerWithPath(indexPath string) (*Indexer, error) {
	if indexPath == "" {
		return NewIndexer()
	}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	index, err := bleve.NewUsing(indexPath, buildIndexMapping(), scorch.Name, scorch.Name, nil)
	if err != nil {
		// If index exists, open it
		index, err = bleve.Open(indexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open/create index: %w", err)
		}
	}

	return &Indexer{
		bleveIndex: index,
		indexPath:  indexPath,
	}, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	itemMapping := bleve.NewDocumentMapping()

	itemMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	itemMapping.AddFieldMappingsAt("description", bleve.NewTextFieldMapping())

	// Category: exact-match keyword, stored for hit results
	categoryMapping := bleve.NewKeywordFieldMapping()
	categoryMapping.Store = true
	itemMapping.AddFieldMappingsAt("category", categoryMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = itemMapping

	return indexMapping
}

// IndexItems adds or replaces items in one batch.
func (i *Indexer) IndexItems(items []storage.Item) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for _, item := range items {
		doc := itemDocument{
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
		}
		if err := batch.Index(item.ID, doc); err != nil {
			logging.Warn().Err(err).Str("item_id", item.ID).Msg("failed to index item")
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index items: %w", err)
	}
	return nil
}

// RemoveItem deletes an item from the index.
func (i *Indexer) RemoveItem(id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.bleveIndex.Delete(id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}

// Count returns the total number of indexed items.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return docCount, nil
}

// Path returns the on-disk location, or "" for an in-memory index.
func (i *Indexer) Path() string {
	return i.indexPath
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}
	return nil
}

// buildMatchQuery matches text against title and description.
func buildMatchQuery(text string) query.Query {
	title := bleve.NewMatchQuery(text)
	title.SetField("title")
	title.SetBoost(2)

	desc := bleve.NewMatchQuery(text)
	desc.SetField("description")

	return bleve.NewDisjunctionQuery(title, desc)
}
