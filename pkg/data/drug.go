package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/drugsafe/dilictl/pkg/score"
)

const (
	insertDrugTargetSQL = `INSERT INTO drug_target (
			fda_drug_name, target_symbol, dili_concern, severity_class,
			severity_weight, approval_status, withdrawn
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fda_drug_name, target_symbol) DO NOTHING
	`

	selectDrugTargetSQL = `SELECT fda_drug_name, target_symbol, dili_concern,
			severity_class, severity_weight, approval_status, withdrawn
		FROM drug_target
		ORDER BY fda_drug_name, target_symbol
	`

	deleteDrugTargetSQL = `DELETE FROM drug_target`
)

// DrugTargetMapping is one entry of the drug to target mapping file:
// a drug and the gene symbols of its known protein targets.
type DrugTargetMapping struct {
	DrugName string   `json:"drug_name" yaml:"drug_name"`
	Targets  []string `json:"targets" yaml:"targets"`
}

// DrugTargetRow is one row of the drug_target evidence table: a
// DILIrank drug joined to one of its targets with its DILI concern and
// regulatory status.
type DrugTargetRow struct {
	FDADrugName    string  `json:"fda_drug_name" yaml:"fda_drug_name"`
	TargetSymbol   string  `json:"target_symbol" yaml:"target_symbol"`
	Concern        string  `json:"dili_concern" yaml:"dili_concern"`
	SeverityClass  string  `json:"severity_class" yaml:"severity_class"`
	SeverityWeight float64 `json:"severity_weight" yaml:"severity_weight"`
	ApprovalStatus string  `json:"approval_status" yaml:"approval_status"`
	Withdrawn      bool    `json:"withdrawn" yaml:"withdrawn"`
}

// LoadDrugTargetMapping reads a drug to target mapping JSON file.
func LoadDrugTargetMapping(path string) ([]DrugTargetMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening mapping file %s: %w", path, err)
	}
	defer f.Close()

	var mapping []DrugTargetMapping
	if err := json.NewDecoder(f).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("error decoding mapping file %s: %w", path, err)
	}

	return mapping, nil
}

// BuildDrugTargets joins the mapping entries against the DILIrank
// compounds and the openFDA status map into evidence rows. Mapping
// drugs that do not match any DILIrank compound are skipped; duplicate
// (drug, target) pairs keep the first occurrence.
func BuildDrugTargets(mapping []DrugTargetMapping, dilirank []DILIRankRecord, statuses map[string]string) []DrugTargetRow {
	compounds := make([]string, 0, len(dilirank))
	byCompound := make(map[string]DILIRankRecord, len(dilirank))
	for _, rec := range dilirank {
		compounds = append(compounds, rec.CompoundName)
		byCompound[rec.CompoundName] = rec
	}

	seen := make(map[string]bool)
	rows := make([]DrugTargetRow, 0, len(mapping))
	unmatched := 0
	for _, entry := range mapping {
		compound, ok := MatchDrugName(entry.DrugName, compounds)
		if !ok {
			unmatched++
			continue
		}
		rec := byCompound[compound]
		status := MatchApprovalStatus(rec.CompoundName, statuses)

		for _, target := range entry.Targets {
			symbol := strings.ToUpper(strings.TrimSpace(target))
			if symbol == "" {
				continue
			}
			key := rec.CompoundName + "\t" + symbol
			if seen[key] {
				continue
			}
			seen[key] = true
			rows = append(rows, DrugTargetRow{
				FDADrugName:    rec.CompoundName,
				TargetSymbol:   symbol,
				Concern:        rec.Concern,
				SeverityClass:  rec.SeverityClass,
				SeverityWeight: score.SeverityWeight(rec.Concern),
				ApprovalStatus: status,
				Withdrawn:      status == StatusWithdrawn,
			})
		}
	}

	if unmatched > 0 {
		slog.Debug("mapping drugs without DILIrank match", "count", unmatched)
	}

	return rows
}

// SaveDrugTargets replaces the drug_target table content in one
// transaction.
func SaveDrugTargets(db *sql.DB, rows []DrugTargetRow) error {
	if db == nil {
		return errDBNotInitialized
	}

	stmt, err := db.Prepare(insertDrugTargetSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare drug_target insert statement: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(deleteDrugTargetSQL); err != nil {
		rollbackTransaction(tx)
		return fmt.Errorf("error clearing drug_target table: %w", err)
	}

	for _, row := range rows {
		if _, err := tx.Stmt(stmt).Exec(
			row.FDADrugName, row.TargetSymbol, row.Concern, row.SeverityClass,
			row.SeverityWeight, row.ApprovalStatus, row.Withdrawn,
		); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting drug_target row %s/%s: %w", row.FDADrugName, row.TargetSymbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetDrugTargets returns all stored drug_target rows.
func GetDrugTargets(db *sql.DB) ([]DrugTargetRow, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectDrugTargetSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query drug_target rows: %w", err)
	}
	defer rows.Close()

	list := make([]DrugTargetRow, 0)
	for rows.Next() {
		var row DrugTargetRow
		if err := rows.Scan(
			&row.FDADrugName, &row.TargetSymbol, &row.Concern, &row.SeverityClass,
			&row.SeverityWeight, &row.ApprovalStatus, &row.Withdrawn,
		); err != nil {
			return nil, fmt.Errorf("failed to scan drug_target row: %w", err)
		}
		list = append(list, row)
	}

	return list, nil
}

// ScorePairs converts evidence rows to the pair form the scoring
// package consumes.
func ScorePairs(rows []DrugTargetRow) []score.DrugTarget {
	pairs := make([]score.DrugTarget, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, score.DrugTarget{
			DrugName:       row.FDADrugName,
			Target:         row.TargetSymbol,
			Concern:        row.Concern,
			SeverityWeight: row.SeverityWeight,
		})
	}
	return pairs
}
