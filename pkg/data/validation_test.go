package data

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearsonCorrelation(t *testing.T) {
	assert.InDelta(t, 1.0, PearsonCorrelation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, -1.0, PearsonCorrelation([]float64{1, 2, 3}, []float64{6, 4, 2}), 1e-9)

	// degenerate inputs
	assert.Equal(t, 0.0, PearsonCorrelation([]float64{1, 1, 1}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, PearsonCorrelation([]float64{1}, []float64{1}))
	assert.Equal(t, 0.0, PearsonCorrelation([]float64{1, 2}, []float64{1}))
}

func TestValidateScores(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SaveTargetScores(db, testScoreRecords()))
	rows := []DrugTargetRow{
		{FDADrugName: "ticrynafen", TargetSymbol: "CYP3A4", SeverityWeight: 2.0, ApprovalStatus: StatusWithdrawn, Withdrawn: true},
		{FDADrugName: "isoniazid", TargetSymbol: "CYP3A4", SeverityWeight: 2.0, ApprovalStatus: StatusApproved},
		{FDADrugName: "aspirin", TargetSymbol: "PTGS2", SeverityWeight: 0, ApprovalStatus: StatusApproved},
	}
	require.NoError(t, SaveDrugTargets(db, rows))

	summary, err := ValidateScores(db)
	require.NoError(t, err)
	require.NotNil(t, summary)
	require.Len(t, summary.Rows, 3)

	byTarget := make(map[string]ValidationRow)
	for _, row := range summary.Rows {
		byTarget[row.Symbol] = row
	}

	cyp := byTarget["CYP3A4"]
	assert.Equal(t, 2, cyp.TotalDrugs)
	assert.Equal(t, 1, cyp.ApprovedDrugs)
	assert.InDelta(t, 0.5, cyp.ApprovalRate, 1e-9)
	assert.Equal(t, 1, cyp.WithdrawnDrugs)
	assert.InDelta(t, 0.5, cyp.WithdrawalRate, 1e-9)

	ptgs := byTarget["PTGS2"]
	assert.Equal(t, 1, ptgs.TotalDrugs)
	assert.InDelta(t, 1.0, ptgs.ApprovalRate, 1e-9)
	assert.Zero(t, ptgs.WithdrawnDrugs)

	// ALB has a score row but no drugs
	alb := byTarget["ALB"]
	assert.Zero(t, alb.TotalDrugs)
	assert.Zero(t, alb.ApprovalRate)

	assert.InDelta(t, 0.5, summary.HighRiskMeanWithdrawn, 1e-9)
	assert.False(t, math.IsNaN(summary.ScoreWithdrawalCorr))

	// rows persisted
	stored, err := GetValidationRows(db)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "CYP3A4", stored[0].Symbol)
}

func TestWriteValidationReport(t *testing.T) {
	summary := summarizeValidation([]ValidationRow{
		{Symbol: "CYP3A4", RiskScore: 1.0, Category: "High", TotalDrugs: 2, WithdrawnDrugs: 1, WithdrawalRate: 0.5, ApprovalRate: 0.5},
		{Symbol: "ALB", RiskScore: 0, Category: "Low", TotalDrugs: 1, ApprovalRate: 1.0},
	})

	var sb strings.Builder
	require.NoError(t, WriteValidationReport(&sb, summary))

	out := sb.String()
	assert.Contains(t, out, "targets scored:               2")
	assert.Contains(t, out, "CYP3A4")
	assert.Contains(t, out, "score=1.000")

	assert.Error(t, WriteValidationReport(&sb, nil))
}
