// File path: internal/metrics/scale.go
package metrics

import (
	"math"
	"strconv"
)

// Band is a satisfaction classification.
type Band int

const (
	Dissatisfied Band = iota
	Neutral
	Satisfied
)

func (b Band) String() string {
	switch b {
	case Satisfied:
		return "satisfied"
	case Neutral:
		return "neutral"
	default:
		return "dissatisfied"
	}
}

// Scale classifies scores by two lower bounds. The overall wellbeing score and
// the per-factor dimension scores use different scales and must not share
// thresholds.
type Scale struct {
	Name string
	// NeutralFrom is the lowest neutral score; anything below is dissatisfied.
	NeutralFrom float64
	// SatisfiedFrom is the lowest satisfied score.
	SatisfiedFrom float64
}

const (
	FactorNeutralFrom      = 0.66
	FactorSatisfiedFrom    = 1.33
	WellbeingNeutralFrom   = 2.0
	WellbeingSatisfiedFrom = 4.0
)

var (
	// FactorScale applies to comfort, delight and social factor scores (0-2).
	FactorScale = Scale{Name: "factor", NeutralFrom: FactorNeutralFrom, SatisfiedFrom: FactorSatisfiedFrom}
	// WellbeingScale applies to the overall wellbeing satisfaction score.
	WellbeingScale = Scale{Name: "wellbeing", NeutralFrom: WellbeingNeutralFrom, SatisfiedFrom: WellbeingSatisfiedFrom}
)

func (s Scale) Classify(score float64) Band {
	switch {
	case score >= s.SatisfiedFrom:
		return Satisfied
	case score >= s.NeutralFrom:
		return Neutral
	default:
		return Dissatisfied
	}
}

// IsIssue reports whether the score is strictly below the neutral bound.
func (s Scale) IsIssue(score float64) bool {
	return score < s.NeutralFrom
}

type BandCounts struct {
	Satisfied    int `json:"satisfied"`
	Neutral      int `json:"neutral"`
	Dissatisfied int `json:"dissatisfied"`
}

func (s Scale) Count(scores []float64) BandCounts {
	var counts BandCounts
	for _, score := range scores {
		switch s.Classify(score) {
		case Satisfied:
			counts.Satisfied++
		case Neutral:
			counts.Neutral++
		default:
			counts.Dissatisfied++
		}
	}
	return counts
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return roundTo(v, 2)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// FormatScore rounds to two decimals and prints the shortest form, so 0.40
// prints as 0.4 and 3.00 as 3.
func FormatScore(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', -1, 64)
}

// Mean returns the arithmetic mean rounded to two decimals, or zero for an
// empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Round2(sum / float64(len(values)))
}
