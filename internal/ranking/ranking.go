// File path: internal/ranking/ranking.go
package ranking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// WorstFactors returns every factor tied at the highest issue count. An
// all-zero mapping means no problems were detected and yields an empty
// result. order fixes the output sequence; factors absent from order follow
// in name order.
func WorstFactors(counts map[string]int, order []string) []string {
	max := 0
	for _, count := range counts {
		if count > max {
			max = count
		}
	}
	if max == 0 {
		return []string{}
	}
	seen := make(map[string]bool, len(counts))
	worst := make([]string, 0, 1)
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true
		if count, ok := counts[name]; ok && count == max {
			worst = append(worst, name)
		}
	}
	var rest []string
	for name, count := range counts {
		if !seen[name] && count == max {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(worst, rest...)
}

// Validate rejects negative issue counts, which can only come from a caller
// bug.
func Validate(counts map[string]int) error {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if counts[name] < 0 {
			return fmt.Errorf("ranking: factor %q has negative issue count %d", name, counts[name])
		}
	}
	return nil
}

// DimensionRank is one entry of an ascending dimension ranking.
type DimensionRank struct {
	Position  int     `json:"position"`
	Dimension string  `json:"dimension"`
	Score     float64 `json:"score"`
}

// RankDimensions orders dimensions from lowest to highest mean score. Equal
// scores keep name order.
func RankDimensions(means map[string]float64) []DimensionRank {
	ranks := make([]DimensionRank, 0, len(means))
	for name, score := range means {
		ranks = append(ranks, DimensionRank{Dimension: name, Score: score})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Score != ranks[j].Score {
			return ranks[i].Score < ranks[j].Score
		}
		return ranks[i].Dimension < ranks[j].Dimension
	})
	for i := range ranks {
		ranks[i].Position = i + 1
	}
	return ranks
}

// FormatRanking renders one "1. Comfort (0.9)" line per entry.
func FormatRanking(ranks []DimensionRank) string {
	lines := make([]string, 0, len(ranks))
	for _, rank := range ranks {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", rank.Position, rank.Dimension, strconv.FormatFloat(rank.Score, 'f', -1, 64)))
	}
	return strings.Join(lines, "\n")
}

// Lowest returns the first ranked dimension, if any.
func Lowest(ranks []DimensionRank) (DimensionRank, bool) {
	if len(ranks) == 0 {
		return DimensionRank{}, false
	}
	return ranks[0], true
}
