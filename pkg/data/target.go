package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/drugsafe/dilictl/pkg/score"
)

const (
	insertTargetScoreSQL = `INSERT INTO target_score (
			target_symbol, drug_count, total_dili_weight, high_risk_drug_count,
			dili_risk_ratio, avg_dili_weight, network_dili_score,
			dili_risk_score, risk_category
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectTargetScoreSQL = `SELECT target_symbol, drug_count, total_dili_weight,
			high_risk_drug_count, dili_risk_ratio, avg_dili_weight,
			network_dili_score, dili_risk_score, risk_category
		FROM target_score
		ORDER BY id
	`

	deleteTargetScoreSQL = `DELETE FROM target_score`
)

// SaveTargetScores replaces the stored score set in one transaction,
// preserving the order of the given records.
func SaveTargetScores(db *sql.DB, records []score.Record) error {
	if db == nil {
		return errDBNotInitialized
	}

	stmt, err := db.Prepare(insertTargetScoreSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare target_score insert statement: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(deleteTargetScoreSQL); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("error clearing target_score table: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.Stmt(stmt).Exec(
			rec.Symbol, rec.DrugCount, rec.TotalDILIWeight, rec.HighRiskDrugCount,
			rec.DILIRiskRatio, rec.AvgDILIWeight, rec.NetworkScore,
			rec.RiskScore, rec.Category,
		); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting target score %s: %w", rec.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetTargetScores returns the stored score records in insert order.
func GetTargetScores(db *sql.DB) ([]score.Record, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectTargetScoreSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query target scores: %w", err)
	}
	defer rows.Close()

	list := make([]score.Record, 0)
	for rows.Next() {
		var rec score.Record
		if err := rows.Scan(
			&rec.Symbol, &rec.DrugCount, &rec.TotalDILIWeight, &rec.HighRiskDrugCount,
			&rec.DILIRiskRatio, &rec.AvgDILIWeight, &rec.NetworkScore,
			&rec.RiskScore, &rec.Category,
		); err != nil {
			return nil, fmt.Errorf("failed to scan target score row: %w", err)
		}
		list = append(list, rec)
	}

	return list, nil
}
