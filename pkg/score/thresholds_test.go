package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeThresholds(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	th, err := ComputeThresholds(scores)
	require.NoError(t, err)
	assert.Equal(t, 0.4, th.Low)
	assert.Equal(t, 0.7, th.Medium)
}

func TestComputeThresholds_Empty(t *testing.T) {
	_, err := ComputeThresholds(nil)
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestComputeThresholds_Single(t *testing.T) {
	th, err := ComputeThresholds([]float64{0.7})
	require.NoError(t, err)
	assert.Equal(t, 0.7, th.Low)
	assert.Equal(t, 0.7, th.Medium)
}

func TestComputeThresholds_AllEqual(t *testing.T) {
	scores := []float64{0.5, 0.5, 0.5, 0.5, 0.5}
	th, err := ComputeThresholds(scores)
	require.NoError(t, err)
	assert.Equal(t, 0.5, th.Low)
	assert.Equal(t, 0.5, th.Medium)

	for _, s := range scores {
		assert.Equal(t, CategoryLow, th.Categorize(s))
	}
}

func TestComputeThresholds_Ordering(t *testing.T) {
	seqs := [][]float64{
		{0.9, 0.1, 0.5},
		{0.01, 0.02, 0.03, 0.5, 0.99},
		{1, 1, 1, 0},
		{0.42},
	}
	for _, scores := range seqs {
		th, err := ComputeThresholds(scores)
		require.NoError(t, err)
		assert.LessOrEqual(t, th.Low, th.Medium)
	}
}

func TestComputeThresholds_InputUnchanged(t *testing.T) {
	scores := []float64{0.9, 0.1, 0.5}
	_, err := ComputeThresholds(scores)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.1, 0.5}, scores)
}

func TestCategorize(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	th, err := ComputeThresholds(scores)
	require.NoError(t, err)

	assert.Equal(t, CategoryLow, th.Categorize(0.4))
	assert.Equal(t, CategoryMedium, th.Categorize(0.45))
	assert.Equal(t, CategoryMedium, th.Categorize(0.7))
	assert.Equal(t, CategoryHigh, th.Categorize(0.71))
	assert.Equal(t, CategoryHigh, th.Categorize(1.0))
}
