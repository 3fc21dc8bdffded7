package data

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/drugsafe/dilictl/pkg/score"
)

const (
	insertValidationSQL = `INSERT INTO validation (
			target_symbol, dili_risk_score, risk_category, total_drugs,
			approved_drugs, approval_rate, withdrawn_drugs, withdrawal_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (target_symbol) DO UPDATE SET
			dili_risk_score = excluded.dili_risk_score,
			risk_category = excluded.risk_category,
			total_drugs = excluded.total_drugs,
			approved_drugs = excluded.approved_drugs,
			approval_rate = excluded.approval_rate,
			withdrawn_drugs = excluded.withdrawn_drugs,
			withdrawal_rate = excluded.withdrawal_rate
	`

	selectValidationSQL = `SELECT v.target_symbol, v.dili_risk_score, v.risk_category,
			v.total_drugs, v.approved_drugs, v.approval_rate,
			v.withdrawn_drugs, v.withdrawal_rate
		FROM validation v
		ORDER BY v.dili_risk_score DESC, v.target_symbol
	`

	selectDrugStatusByTargetSQL = `SELECT s.target_symbol, s.dili_risk_score, s.risk_category,
			COUNT(d.fda_drug_name),
			COALESCE(SUM(CASE WHEN d.approval_status = 'approved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN d.withdrawn = 1 THEN 1 ELSE 0 END), 0)
		FROM target_score s
		LEFT JOIN drug_target d ON d.target_symbol = s.target_symbol
		GROUP BY s.target_symbol, s.dili_risk_score, s.risk_category
		ORDER BY s.dili_risk_score DESC, s.target_symbol
	`
)

// ValidationRow summarizes the regulatory outcomes of the drugs behind
// one scored target.
type ValidationRow struct {
	Symbol         string  `json:"target_symbol" yaml:"target_symbol"`
	RiskScore      float64 `json:"dili_risk_score" yaml:"dili_risk_score"`
	Category       string  `json:"risk_category" yaml:"risk_category"`
	TotalDrugs     int     `json:"total_drugs" yaml:"total_drugs"`
	ApprovedDrugs  int     `json:"approved_drugs" yaml:"approved_drugs"`
	ApprovalRate   float64 `json:"approval_rate" yaml:"approval_rate"`
	WithdrawnDrugs int     `json:"withdrawn_drugs" yaml:"withdrawn_drugs"`
	WithdrawalRate float64 `json:"withdrawal_rate" yaml:"withdrawal_rate"`
}

// ValidationSummary is the whole-run validation result: per-target rows
// plus the correlation between risk score and withdrawal rate.
type ValidationSummary struct {
	Rows                  []ValidationRow `json:"rows" yaml:"rows"`
	ScoreWithdrawalCorr   float64         `json:"score_withdrawal_correlation" yaml:"score_withdrawal_correlation"`
	MeanApprovalRate      float64         `json:"mean_approval_rate" yaml:"mean_approval_rate"`
	MeanWithdrawalRate    float64         `json:"mean_withdrawal_rate" yaml:"mean_withdrawal_rate"`
	HighRiskMeanWithdrawn float64         `json:"high_risk_mean_withdrawal_rate" yaml:"high_risk_mean_withdrawal_rate"`
}

// ValidateScores aggregates approval and withdrawal outcomes per scored
// target, computes the score-to-withdrawal correlation, and persists
// the per-target rows.
func ValidateScores(db *sql.DB) (*ValidationSummary, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectDrugStatusByTargetSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query drug statuses per target: %w", err)
	}
	defer rows.Close()

	list := make([]ValidationRow, 0)
	for rows.Next() {
		var row ValidationRow
		if err := rows.Scan(
			&row.Symbol, &row.RiskScore, &row.Category,
			&row.TotalDrugs, &row.ApprovedDrugs, &row.WithdrawnDrugs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan validation row: %w", err)
		}
		if row.TotalDrugs > 0 {
			row.ApprovalRate = float64(row.ApprovedDrugs) / float64(row.TotalDrugs)
			row.WithdrawalRate = float64(row.WithdrawnDrugs) / float64(row.TotalDrugs)
		}
		list = append(list, row)
	}

	summary := summarizeValidation(list)
	if err := saveValidationRows(db, list); err != nil {
		return nil, err
	}

	return summary, nil
}

func summarizeValidation(list []ValidationRow) *ValidationSummary {
	summary := &ValidationSummary{Rows: list}
	if len(list) == 0 {
		return summary
	}

	scores := make([]float64, len(list))
	withdrawals := make([]float64, len(list))
	highRiskSum, highRiskCount := 0.0, 0
	for i, row := range list {
		scores[i] = row.RiskScore
		withdrawals[i] = row.WithdrawalRate
		summary.MeanApprovalRate += row.ApprovalRate
		summary.MeanWithdrawalRate += row.WithdrawalRate
		if row.Category == score.CategoryHigh {
			highRiskSum += row.WithdrawalRate
			highRiskCount++
		}
	}
	summary.MeanApprovalRate /= float64(len(list))
	summary.MeanWithdrawalRate /= float64(len(list))
	if highRiskCount > 0 {
		summary.HighRiskMeanWithdrawn = highRiskSum / float64(highRiskCount)
	}
	summary.ScoreWithdrawalCorr = PearsonCorrelation(scores, withdrawals)

	return summary
}

// PearsonCorrelation computes the linear correlation of two equal-length
// series. Degenerate inputs (length mismatch, fewer than two points, or
// zero variance) report 0.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}

	n := float64(len(x))
	meanX, meanY := 0.0, 0.0
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	cov, varX, varY := 0.0, 0.0, 0.0
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}

	return cov / math.Sqrt(varX*varY)
}

func saveValidationRows(db *sql.DB, list []ValidationRow) error {
	stmt, err := db.Prepare(insertValidationSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare validation insert statement: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, row := range list {
		if _, err := tx.Stmt(stmt).Exec(
			row.Symbol, row.RiskScore, row.Category, row.TotalDrugs,
			row.ApprovedDrugs, row.ApprovalRate, row.WithdrawnDrugs, row.WithdrawalRate,
		); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting validation row %s: %w", row.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetValidationRows returns stored validation rows, highest score first.
func GetValidationRows(db *sql.DB) ([]ValidationRow, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectValidationSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query validation rows: %w", err)
	}
	defer rows.Close()

	list := make([]ValidationRow, 0)
	for rows.Next() {
		var row ValidationRow
		if err := rows.Scan(
			&row.Symbol, &row.RiskScore, &row.Category,
			&row.TotalDrugs, &row.ApprovedDrugs, &row.ApprovalRate,
			&row.WithdrawnDrugs, &row.WithdrawalRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan validation row: %w", err)
		}
		list = append(list, row)
	}

	return list, nil
}

// WriteValidationReport renders the summary as a plain text report.
func WriteValidationReport(w io.Writer, summary *ValidationSummary) error {
	if summary == nil {
		return errors.New("nil validation summary")
	}

	fmt.Fprintln(w, "DILI target score validation")
	fmt.Fprintln(w, "============================")
	fmt.Fprintf(w, "targets scored:               %d\n", len(summary.Rows))
	fmt.Fprintf(w, "mean approval rate:           %.3f\n", summary.MeanApprovalRate)
	fmt.Fprintf(w, "mean withdrawal rate:         %.3f\n", summary.MeanWithdrawalRate)
	fmt.Fprintf(w, "high risk withdrawal rate:    %.3f\n", summary.HighRiskMeanWithdrawn)
	fmt.Fprintf(w, "score/withdrawal correlation: %.3f\n", summary.ScoreWithdrawalCorr)
	fmt.Fprintln(w)

	top := summary.Rows
	if len(top) > 10 {
		top = top[:10]
	}
	sorted := make([]ValidationRow, len(top))
	copy(sorted, top)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RiskScore > sorted[j].RiskScore })

	fmt.Fprintln(w, "top targets by risk score:")
	for _, row := range sorted {
		fmt.Fprintf(w, "  %-12s score=%.3f category=%-6s drugs=%d withdrawn=%d\n",
			row.Symbol, row.RiskScore, row.Category, row.TotalDrugs, row.WithdrawnDrugs)
	}

	return nil
}
