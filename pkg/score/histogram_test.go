package score

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHistogram(t *testing.T) {
	scores := []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 0.9, 1.0}
	th, err := ComputeThresholds(scores)
	require.NoError(t, err)

	bins, err := BuildHistogram(scores, th, DefaultHistogramBins)
	require.NoError(t, err)
	assert.Len(t, bins, DefaultHistogramBins)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, len(scores), total)

	assert.True(t, strings.HasPrefix(bins[0].Range, "0.000-"))
	assert.True(t, strings.HasSuffix(bins[len(bins)-1].Range, "-1.000"))
}

func TestBuildHistogram_MaxScoreIncluded(t *testing.T) {
	scores := []float64{0.5, 1.0, 1.0}
	th, err := ComputeThresholds(scores)
	require.NoError(t, err)

	bins, err := BuildHistogram(scores, th, 10)
	require.NoError(t, err)

	// both max-valued scores land in the top bin
	assert.Equal(t, 2, bins[len(bins)-1].Count)
}

func TestBuildHistogram_Empty(t *testing.T) {
	_, err := BuildHistogram(nil, Thresholds{}, 30)
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestBuildHistogram_AllZero(t *testing.T) {
	scores := []float64{0, 0, 0, 0}
	th, err := ComputeThresholds(scores)
	require.NoError(t, err)

	bins, err := BuildHistogram(scores, th, 30)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, 4, bins[0].Count)
	assert.Equal(t, "0.000-0.000", bins[0].Range)
	assert.Equal(t, CategoryLow, bins[0].Category)
}

func TestBuildHistogram_DefaultBins(t *testing.T) {
	scores := []float64{0.1, 0.9}
	th, err := ComputeThresholds(scores)
	require.NoError(t, err)

	bins, err := BuildHistogram(scores, th, 0)
	require.NoError(t, err)
	assert.Len(t, bins, DefaultHistogramBins)
}

func TestBuildHistogram_BinCategories(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	th, err := ComputeThresholds(scores)
	require.NoError(t, err)

	bins, err := BuildHistogram(scores, th, 30)
	require.NoError(t, err)

	// bins near zero classify Low, the top bin High
	assert.Equal(t, CategoryLow, bins[0].Category)
	assert.Equal(t, CategoryHigh, bins[len(bins)-1].Category)
}

func TestBinIndex(t *testing.T) {
	bounds := []float64{0, 0.25, 0.5, 0.75, 1.0}
	assert.Equal(t, 0, binIndex(bounds, 0))
	assert.Equal(t, 0, binIndex(bounds, 0.24))
	assert.Equal(t, 1, binIndex(bounds, 0.25))
	assert.Equal(t, 3, binIndex(bounds, 0.99))
	assert.Equal(t, 3, binIndex(bounds, 1.0))
}
