package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/khanglvm/city-hub/internal/config"
	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/khanglvm/city-hub/internal/tags"
	"github.com/khanglvm/city-hub/internal/validation"
	"github.com/spf13/cobra"
)

// demoPlaceCategories are the directory categories used by --demo.
var demoPlaceCategories = []string{
	"restaurants", "cafes", "bars", "nightlife", "museums", "galleries",
	"parks", "beaches", "hotels", "hiking",
}

// demoAttributeValues are the sub-type values used by --demo, per type key.
var demoAttributeValues = map[string][]string{
	"vehicle_type":    {"car", "motorbike", "bicycle", "van"},
	"property_type":   {"apartment", "house", "studio", "office"},
	"device_type":     {"phone", "laptop", "tablet", "camera"},
	"item_type":       {"furniture", "kitchen", "garden", "decor"},
	"gender":          {"women", "men", "kids"},
	"employment_type": {"full-time", "part-time", "contract"},
}

var demoAdjectives = []string{"Cozy", "Sunny", "Hidden", "Classic", "Modern", "Family", "Riverside", "Old Town"}

// NewSeedCmd creates the 'seed' command for loading catalog items.
func NewSeedCmd() *cobra.Command {
	var demo int
	var seed int64
	var owner string

	cmd := &cobra.Command{
		Use:   "seed [items.json]",
		Short: "Load catalog items from a file or generate demo data",
		Long: `Upsert catalog items into the database and the search index.

The file is a JSON array of items:

  [{"id": "p1", "title": "Pho 24", "category": "restaurants",
    "attributes": {"district": "1"}, "status": "active"}]

Items without an id get a generated one; items without a status are active.
With --demo N, N random places and marketplace listings are generated
instead.`,
		Example: `  # Load items from a file
  city-hub seed ./items.json

  # Generate 200 demo items, reproducibly
  city-hub seed --demo 200 --seed 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if demo <= 0 && len(args) == 0 {
				return fmt.Errorf("provide an items file or --demo N")
			}
			if demo > 0 && len(args) > 0 {
				return fmt.Errorf("--demo cannot be combined with an items file")
			}
			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			return runSeed(cmd.OutOrStdout(), file, demo, seed, owner)
		},
	}

	cmd.Flags().IntVarP(&demo, "demo", "d", 0, "Generate N demo items")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for --demo (0 = clock)")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner id assigned to generated listings")

	return cmd
}

// runSeed loads or generates items, then stores and indexes them.
func runSeed(out io.Writer, file string, demo int, seed int64, owner string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var items []storage.Item
	if demo > 0 {
		items = demoItems(a.cfg.Showcase.Categories, demo, seed, owner, time.Now())
	} else {
		items, err = readItems(file)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	if err := a.store.UpsertItems(ctx, items); err != nil {
		return fmt.Errorf("failed to store items: %w", err)
	}
	fmt.Fprintf(out, "✓ Stored %d items\n", len(items))

	if a.cfg.Storage.IndexPath != "" {
		cat, err := a.catalog(ctx)
		if err != nil {
			return err
		}
		if err := cat.Index().IndexItems(items); err != nil {
			return fmt.Errorf("failed to index items: %w", err)
		}
		fmt.Fprintf(out, "✓ Indexed %d items into %s\n", len(items), a.cfg.Storage.IndexPath)
	}

	return nil
}

// readItems decodes and validates an items file.
func readItems(path string) ([]storage.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	var items []storage.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	now := time.Now()
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if items[i].Status == "" {
			items[i].Status = storage.StatusActive
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
		if err := validation.ValidateStruct(items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return items, nil
}

// demoItems generates n items, roughly half places and half listings
// spread over the showcase categories.
func demoItems(categories []config.ShowcaseCategory, n int, seed int64, owner string, now time.Time) []storage.Item {
	rng := learning.NewShuffler(seed)
	items := make([]storage.Item, 0, n)

	for i := 0; i < n; i++ {
		adjective := demoAdjectives[rng.Intn(len(demoAdjectives))]
		item := storage.Item{
			ID:        uuid.NewString(),
			OwnerID:   owner,
			Status:    storage.StatusActive,
			CreatedAt: now.Add(-time.Duration(rng.Intn(30*24)) * time.Hour),
		}

		if i%2 == 0 || len(categories) == 0 {
			item.Category = demoPlaceCategories[rng.Intn(len(demoPlaceCategories))]
			item.Title = fmt.Sprintf("%s %s #%d", adjective, singular(tags.Label(item.Category)), i+1)
			item.Description = fmt.Sprintf("A %s spot among the city's %s.",
				strings.ToLower(adjective), strings.ToLower(tags.Label(item.Category)))
		} else {
			c := categories[rng.Intn(len(categories))]
			item.Category = c.Category
			item.Title = fmt.Sprintf("%s %s listing #%d", adjective, tags.Label(c.Category), i+1)
			item.Description = fmt.Sprintf("%s for sale in the marketplace.", tags.Label(c.Category))

			if values := demoAttributeValues[c.TypeKey]; len(values) > 0 {
				v := values[rng.Intn(len(values))]
				item.Attributes = map[string]string{c.TypeKey: v}
				item.Title = fmt.Sprintf("%s %s #%d", adjective, v, i+1)
			}

			expires := now.Add(time.Duration(7+rng.Intn(60)) * 24 * time.Hour)
			item.ExpiresAt = &expires
		}

		items = append(items, item)
	}
	return items
}

// singular is good enough for the demo category labels.
func singular(label string) string {
	switch {
	case strings.HasSuffix(label, "ies"):
		return strings.TrimSuffix(label, "ies") + "y"
	case strings.HasSuffix(label, "ches"):
		return strings.TrimSuffix(label, "es")
	case strings.HasSuffix(label, "s"):
		return strings.TrimSuffix(label, "s")
	default:
		return label
	}
}
