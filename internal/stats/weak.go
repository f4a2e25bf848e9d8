package stats

import (
	"sort"

	"github.com/verte-zerg/dmt/internal/model"
)

// SelectWeakWords picks the top most-misread words and returns their misread
// rates. Words that were never misread are not weak.
func SelectWeakWords(aggs []model.WordAggregate, top int) map[string]float64 {
	weak := map[string]float64{}
	candidates := make([]model.WordAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Misread > 0 && agg.Presented > 0 {
			candidates = append(candidates, agg)
		}
	}
	sortByMisread(candidates)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, agg := range candidates[:top] {
		weak[agg.Word] = MisreadRate(agg)
	}
	return weak
}

// MisreadRate returns the share of presentations that were misread.
func MisreadRate(agg model.WordAggregate) float64 {
	if agg.Presented == 0 {
		return 0
	}
	return float64(agg.Misread) / float64(agg.Presented)
}

// sortByMisread orders by misread rate, then misread count, then word.
func sortByMisread(aggs []model.WordAggregate) {
	sort.Slice(aggs, func(i, j int) bool {
		ri, rj := MisreadRate(aggs[i]), MisreadRate(aggs[j])
		if ri != rj {
			return ri > rj
		}
		if aggs[i].Misread != aggs[j].Misread {
			return aggs[i].Misread > aggs[j].Misread
		}
		return aggs[i].Word < aggs[j].Word
	})
}
