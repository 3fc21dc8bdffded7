package data

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/drugsafe/dilictl/pkg/score"
)

// ExportTargetScores writes the stored score records to a JSON file in
// the snapshot format the query commands and HTTP server read back.
func ExportTargetScores(db *sql.DB, path string) (int, error) {
	records, err := GetTargetScores(db)
	if err != nil {
		return 0, fmt.Errorf("failed to load target scores for export: %w", err)
	}

	if err := WriteTargetScores(path, records); err != nil {
		return 0, err
	}

	return len(records), nil
}

// WriteTargetScores writes score records to a JSON file.
func WriteTargetScores(path string, records []score.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating export file %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("error encoding export file %s: %w", path, err)
	}

	return nil
}
