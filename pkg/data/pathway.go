package data

import (
	"bufio"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/drugsafe/dilictl/pkg/net"
	"github.com/drugsafe/dilictl/pkg/score"
)

const (
	insertNetworkSQL = `INSERT INTO target_network (target_symbol, risk_targets, n_risk_targets)
		VALUES (?, ?, ?)
		ON CONFLICT (target_symbol) DO UPDATE SET
			risk_targets = excluded.risk_targets,
			n_risk_targets = excluded.n_risk_targets
	`

	selectNetworkSQL = `SELECT target_symbol, risk_targets, n_risk_targets
		FROM target_network
		ORDER BY target_symbol
	`

	// riskTargetSeparator joins neighbor symbols in the risk_targets column.
	riskTargetSeparator = ";"
)

// DownloadPathwayFile fetches the Pathway Commons SIF export to a local
// file unless it is already cached there.
func DownloadPathwayFile(url, path string) error {
	if _, err := os.Stat(path); err == nil {
		slog.Debug("using cached pathway file", "path", path)
		return nil
	}
	if err := net.Download(url, path); err != nil {
		return fmt.Errorf("error downloading pathway file: %w", err)
	}
	return nil
}

// ImportPathwayFile parses a local Pathway Commons SIF export, builds
// the risk-neighbor rows for the given risk targets, and persists them.
func ImportPathwayFile(db *sql.DB, path string, riskTargets []string) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("error opening pathway file %s: %w", path, err)
	}
	defer f.Close()

	adjacency, err := ParseSIF(f)
	if err != nil {
		return 0, fmt.Errorf("error parsing pathway network: %w", err)
	}

	rows := BuildNetworkRows(adjacency, riskTargets)
	if err := SaveNetworkRows(db, rows); err != nil {
		return 0, fmt.Errorf("failed to save network rows: %w", err)
	}

	slog.Info("imported pathway network", "interactions", len(adjacency), "rows", len(rows))
	return len(rows), nil
}

// ParseSIF reads a gzipped SIF interaction file (source, relation,
// target per tab-separated line) into an undirected adjacency map.
func ParseSIF(r io.Reader) (map[string][]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("error opening gzip stream: %w", err)
	}
	defer gz.Close()

	adjacency := make(map[string][]string)
	seen := make(map[string]bool)
	addEdge := func(a, b string) {
		key := a + "\t" + b
		if seen[key] {
			return
		}
		seen[key] = true
		adjacency[a] = append(adjacency[a], b)
	}

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 3 {
			continue
		}
		src := strings.TrimSpace(fields[0])
		dst := strings.TrimSpace(fields[2])
		if src == "" || dst == "" || src == dst {
			continue
		}
		addEdge(src, dst)
		addEdge(dst, src)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SIF lines: %w", err)
	}

	return adjacency, nil
}

// BuildNetworkRows computes, for every target in the adjacency map, the
// sorted subset of its neighbors that are themselves risk targets.
// Targets with no risk neighbors still get a row with a zero count so
// network scoring sees every mapped target.
func BuildNetworkRows(adjacency map[string][]string, riskTargets []string) []score.NetworkRow {
	risk := make(map[string]bool, len(riskTargets))
	for _, t := range riskTargets {
		risk[strings.ToUpper(t)] = true
	}

	symbols := make([]string, 0, len(adjacency))
	for symbol := range adjacency {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	rows := make([]score.NetworkRow, 0, len(symbols))
	for _, symbol := range symbols {
		neighbors := make([]string, 0)
		for _, n := range adjacency[symbol] {
			if risk[strings.ToUpper(n)] {
				neighbors = append(neighbors, n)
			}
		}
		sort.Strings(neighbors)
		rows = append(rows, score.NetworkRow{
			Target:          symbol,
			RiskTargets:     neighbors,
			RiskTargetCount: len(neighbors),
		})
	}

	return rows
}

// SaveNetworkRows upserts network rows in one transaction.
func SaveNetworkRows(db *sql.DB, rows []score.NetworkRow) error {
	if db == nil {
		return errDBNotInitialized
	}

	stmt, err := db.Prepare(insertNetworkSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare network insert statement: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, row := range rows {
		joined := strings.Join(row.RiskTargets, riskTargetSeparator)
		if _, err := tx.Stmt(stmt).Exec(row.Target, joined, row.RiskTargetCount); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting network row %s: %w", row.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetNetworkRows returns all stored network rows.
func GetNetworkRows(db *sql.DB) ([]score.NetworkRow, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectNetworkSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query network rows: %w", err)
	}
	defer rows.Close()

	list := make([]score.NetworkRow, 0)
	for rows.Next() {
		var row score.NetworkRow
		var joined string
		if err := rows.Scan(&row.Target, &joined, &row.RiskTargetCount); err != nil {
			return nil, fmt.Errorf("failed to scan network row: %w", err)
		}
		if joined != "" {
			row.RiskTargets = strings.Split(joined, riskTargetSeparator)
		} else {
			row.RiskTargets = []string{}
		}
		list = append(list, row)
	}

	return list, nil
}
