package profile

import "sort"

// DefaultArchetypeThreshold is the summed score an archetype must exceed.
const DefaultArchetypeThreshold = 10.0

// DefaultArchetypes maps persona labels to the tags whose scores feed them.
func DefaultArchetypes() map[string][]string {
	return map[string][]string{
		"foodie":   {"restaurants", "cafes", "bakeries", "bars"},
		"explorer": {"attractions", "museums", "parks", "hotels"},
		"trader":   {"market_vehicles", "market_real_estate", "market_electronics"},
		"family":   {"schools", "kindergartens", "pharmacies", "playgrounds"},
	}
}

// DeriveArchetypes returns, sorted, every archetype whose tags' summed
// scores exceed threshold.
func DeriveArchetypes(interests map[string]InterestRecord, table map[string][]string, threshold float64) []string {
	out := []string{}
	for name, tags := range table {
		sum := 0.0
		for _, tag := range tags {
			sum += interests[tag].Score
		}
		if sum > threshold {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
