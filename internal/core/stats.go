package core

import "sort"

// DefaultTopN is the number of regions shown in the ranked list.
const DefaultTopN = 5

// Aggregate computes the summary with the default top-N of 5.
func Aggregate(t *ProviderTable) StatsSummary {
	return AggregateTopN(t, DefaultTopN)
}

// AggregateTopN computes total, distinct region count and the n most
// frequent regions. Regions are compared exactly (case-sensitive). Ties are
// broken by first occurrence in table order. n <= 0 means DefaultTopN.
func AggregateTopN(t *ProviderTable, n int) StatsSummary {
	if n <= 0 {
		n = DefaultTopN
	}

	counts := make(map[string]int)
	var order []string // regions in first-occurrence order
	for i := 0; i < t.Len(); i++ {
		region := t.records[i].State
		if _, seen := counts[region]; !seen {
			order = append(order, region)
		}
		counts[region]++
	}

	ranked := make([]RegionCount, len(order))
	for i, region := range order {
		ranked[i] = RegionCount{Region: region, Count: counts[region]}
	}
	// Stable keeps first-occurrence order among equal counts.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	return StatsSummary{
		TotalProviders:  t.Len(),
		DistinctRegions: len(order),
		TopRegions:      ranked,
	}
}
