package score

import "fmt"

// DefaultHistogramBins is the bin count used when the caller does not
// specify one.
const DefaultHistogramBins = 30

// Bin is a single histogram bucket. Category classifies the bin by its
// center value for presentation grouping; it does not affect
// per-record categorization.
type Bin struct {
	Range    string `json:"range" yaml:"range"`
	Count    int    `json:"count" yaml:"count"`
	Category string `json:"category" yaml:"category"`
}

// BuildHistogram partitions [0, max(scores)] into numBins contiguous
// intervals and counts score membership per interval. Boundaries are
// quadratically compressed, boundary[i] = (i/numBins)^2 * max, so the
// low end of a right-skewed distribution gets narrow bins and the tail
// wide ones. Intervals are half-open except the last, which also
// admits the maximum value.
func BuildHistogram(scores []float64, th Thresholds, numBins int) ([]Bin, error) {
	if len(scores) == 0 {
		return nil, ErrNoScores
	}
	if numBins < 1 {
		numBins = DefaultHistogramBins
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	// All-zero population: every boundary collapses to 0, so define a
	// single [0,0] bin holding every record instead of dividing into
	// zero-width intervals.
	if maxScore == 0 {
		return []Bin{{
			Range:    formatRange(0, 0),
			Count:    len(scores),
			Category: th.Categorize(0),
		}}, nil
	}

	bounds := make([]float64, numBins+1)
	for i := 0; i <= numBins; i++ {
		f := float64(i) / float64(numBins)
		bounds[i] = f * f * maxScore
	}

	counts := make([]int, numBins)
	for _, s := range scores {
		counts[binIndex(bounds, s)]++
	}

	bins := make([]Bin, numBins)
	for i := 0; i < numBins; i++ {
		center := (bounds[i] + bounds[i+1]) / 2
		bins[i] = Bin{
			Range:    formatRange(bounds[i], bounds[i+1]),
			Count:    counts[i],
			Category: th.Categorize(center),
		}
	}

	return bins, nil
}

// binIndex locates s in the boundary slice: the bin i with
// bounds[i] <= s < bounds[i+1], with the top bin closed so the maximum
// score is not dropped.
func binIndex(bounds []float64, s float64) int {
	last := len(bounds) - 2
	for i := 0; i < last; i++ {
		if s < bounds[i+1] {
			return i
		}
	}
	return last
}

func formatRange(lo, hi float64) string {
	return fmt.Sprintf("%.3f-%.3f", lo, hi)
}
