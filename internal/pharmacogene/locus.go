package pharmacogene

import "sort"

// LocusIndex answers "which genes contain chrom:pos" with a sorted-slice
// interval search per chromosome. Built once and never modified.
type LocusIndex struct {
	byChrom map[string]*intervals
}

type intervals struct {
	items  []locus
	maxEnd []int64 // maxEnd[i] = max(end) for items[:i+1]
}

type locus struct {
	start, end int64
	symbol     string
}

// BuildLocusIndex creates an index over the given genes' coordinates.
func BuildLocusIndex(genes []GeneDefinition) *LocusIndex {
	grouped := make(map[string][]locus)
	for _, g := range genes {
		if g.End < g.Start {
			continue
		}
		grouped[g.Chromosome] = append(grouped[g.Chromosome], locus{start: g.Start, end: g.End, symbol: g.Symbol})
	}

	idx := &LocusIndex{byChrom: make(map[string]*intervals, len(grouped))}
	for chrom, items := range grouped {
		sort.Slice(items, func(i, j int) bool {
			return items[i].start < items[j].start
		})

		// Prefix max, so a right-to-left scan can stop once nothing to
		// the left reaches pos.
		maxEnd := make([]int64, len(items))
		maxEnd[0] = items[0].end
		for i := 1; i < len(items); i++ {
			maxEnd[i] = max(maxEnd[i-1], items[i].end)
		}
		idx.byChrom[chrom] = &intervals{items: items, maxEnd: maxEnd}
	}
	return idx
}

// Find returns the symbols of all genes whose [Start, End] contains pos,
// ordered by gene start.
func (x *LocusIndex) Find(chrom string, pos int64) []string {
	iv, ok := x.byChrom[chrom]
	if !ok {
		return nil
	}

	// hi is the first index with start > pos; candidates are [0, hi).
	hi := sort.Search(len(iv.items), func(i int) bool {
		return iv.items[i].start > pos
	})

	var result []string
	for i := hi - 1; i >= 0; i-- {
		// No interval in items[0..i] can reach pos.
		if iv.maxEnd[i] < pos {
			break
		}
		if iv.items[i].end >= pos {
			result = append(result, iv.items[i].symbol)
		}
	}

	// Scanned right to left; report in start order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}
