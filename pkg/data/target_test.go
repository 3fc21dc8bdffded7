package data

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drugsafe/dilictl/pkg/score"
)

func testScoreRecords() []score.Record {
	return []score.Record{
		{
			Symbol: "CYP3A4", DrugCount: 3, TotalDILIWeight: 5.0, HighRiskDrugCount: 2,
			DILIRiskRatio: 0.667, AvgDILIWeight: 1.667, NetworkScore: 2,
			RiskScore: 1.0, Category: score.CategoryHigh,
		},
		{
			Symbol: "PTGS2", DrugCount: 2, TotalDILIWeight: 1.0, HighRiskDrugCount: 0,
			DILIRiskRatio: 0, AvgDILIWeight: 0.5, NetworkScore: 1,
			RiskScore: 0.178, Category: score.CategoryMedium,
		},
		{
			Symbol: "ALB", DrugCount: 1, TotalDILIWeight: 0, HighRiskDrugCount: 0,
			DILIRiskRatio: 0, AvgDILIWeight: 0, NetworkScore: 0,
			RiskScore: 0, Category: score.CategoryLow,
		},
	}
}

func TestSaveGetTargetScores(t *testing.T) {
	db := setupTestDB(t)

	records := testScoreRecords()
	require.NoError(t, SaveTargetScores(db, records))

	got, err := GetTargetScores(db)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// insert order preserved
	assert.Equal(t, "CYP3A4", got[0].Symbol)
	assert.Equal(t, "PTGS2", got[1].Symbol)
	assert.Equal(t, "ALB", got[2].Symbol)
	assert.Equal(t, records[0], got[0])
}

func TestSaveTargetScoresReplaces(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SaveTargetScores(db, testScoreRecords()))
	require.NoError(t, SaveTargetScores(db, testScoreRecords()[:1]))

	got, err := GetTargetScores(db)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CYP3A4", got[0].Symbol)
}

func TestGetTargetScoresEmpty(t *testing.T) {
	db := setupTestDB(t)

	got, err := GetTargetScores(db)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExportTargetScores(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SaveTargetScores(db, testScoreRecords()))

	path := filepath.Join(t.TempDir(), "data.json")
	n, err := ExportTargetScores(db, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []score.Record
	require.NoError(t, json.Unmarshal(b, &records))
	require.Len(t, records, 3)
	assert.Equal(t, "CYP3A4", records[0].Symbol)
	assert.Equal(t, score.CategoryHigh, records[0].Category)
}
