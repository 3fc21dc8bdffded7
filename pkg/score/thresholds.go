package score

import (
	"errors"
	"sort"
)

const (
	CategoryLow    = "Low"
	CategoryMedium = "Medium"
	CategoryHigh   = "High"

	lowQuantile    = 0.33
	mediumQuantile = 0.66
)

// ErrNoScores is returned when a computation requiring at least one
// score is invoked on an empty population.
var ErrNoScores = errors.New("no scores available")

// Thresholds holds the tertile cut points over the full score
// population. A score at or below Low is a Low-risk score, at or below
// Medium a Medium-risk one, anything above is High.
type Thresholds struct {
	Low    float64 `json:"low" yaml:"low"`
	Medium float64 `json:"medium" yaml:"medium"`
}

// ComputeThresholds derives the 33rd and 66th percentile cut points
// from the score population. The input is not modified.
func ComputeThresholds(scores []float64) (Thresholds, error) {
	n := len(scores)
	if n == 0 {
		return Thresholds{}, ErrNoScores
	}

	sorted := make([]float64, n)
	copy(sorted, scores)
	sort.Float64s(sorted)

	return Thresholds{
		Low:    sorted[quantileIndex(lowQuantile, n)],
		Medium: sorted[quantileIndex(mediumQuantile, n)],
	}, nil
}

// Categorize classifies a single score by value against the cut
// points. Equal-valued scores always land in the same category; when
// every score in the population is identical both thresholds equal
// that value and everything classifies as Low.
func (t Thresholds) Categorize(s float64) string {
	switch {
	case s <= t.Low:
		return CategoryLow
	case s <= t.Medium:
		return CategoryMedium
	default:
		return CategoryHigh
	}
}

func quantileIndex(q float64, n int) int {
	i := int(q * float64(n))
	if i > n-1 {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
