package data

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/drugsafe/dilictl/pkg/net"
)

const (
	insertDILIRankSQL = `INSERT INTO dilirank (ltkb_id, compound_name, severity_class, dili_concern)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ltkb_id) DO UPDATE SET
			compound_name = excluded.compound_name,
			severity_class = excluded.severity_class,
			dili_concern = excluded.dili_concern
	`

	selectDILIRankSQL = `SELECT ltkb_id, compound_name, severity_class, dili_concern
		FROM dilirank
		ORDER BY ltkb_id
	`
)

// dilirankKeywords identify the DILIrank table among the other tables
// on the FDA page.
var dilirankKeywords = []string{"ltkbid", "compound", "dili", "concern"}

// DILIRankRecord is one row of the FDA DILIrank table: a compound and
// its clinical DILI concern classification.
type DILIRankRecord struct {
	LTKBID        string `json:"ltkb_id" yaml:"ltkb_id"`
	CompoundName  string `json:"compound_name" yaml:"compound_name"`
	SeverityClass string `json:"severity_class" yaml:"severity_class"`
	Concern       string `json:"dili_concern" yaml:"dili_concern"`
}

// ImportDILIRank fetches the FDA DILIrank page, parses the compound
// table, and persists it. Any fetch or parse failure falls back to the
// embedded seed compounds so downstream steps always have DILI
// classifications to work with.
func ImportDILIRank(db *sql.DB, url string) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	records, err := fetchDILIRank(url)
	if err != nil {
		slog.Warn("failed to fetch FDA DILIrank, using fallback data", "url", url, "error", err)
		records = fallbackDILIRank()
	}

	if err := SaveDILIRank(db, records); err != nil {
		return 0, fmt.Errorf("failed to save DILIrank records: %w", err)
	}

	slog.Info("imported DILIrank records", "count", len(records))
	return len(records), nil
}

func fetchDILIRank(url string) ([]DILIRankRecord, error) {
	body, err := net.GetBody(url)
	if err != nil {
		return nil, fmt.Errorf("error fetching DILIrank page: %w", err)
	}
	defer body.Close()

	return ParseDILIRankHTML(body)
}

// ParseDILIRankHTML extracts DILIrank rows from the FDA page. The page
// carries several tables; the right one is located by keyword match on
// its text and its columns by header name.
func ParseDILIRankHTML(r io.Reader) ([]DILIRankRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing DILIrank HTML: %w", err)
	}

	for _, table := range findNodes(doc, "table") {
		if !containsKeywords(nodeText(table), dilirankKeywords) {
			continue
		}
		records := parseDILIRankTable(table)
		if len(records) > 0 {
			return records, nil
		}
	}

	return nil, errors.New("no DILIrank table found in HTML")
}

func parseDILIRankTable(table *html.Node) []DILIRankRecord {
	rows := findNodes(table, "tr")
	if len(rows) < 2 {
		return nil
	}

	// header row establishes column positions
	cols := map[string]int{}
	for i, cell := range rowCells(rows[0]) {
		switch normalizeHeader(cell) {
		case "ltkbid":
			cols["id"] = i
		case "compoundname":
			cols["name"] = i
		case "severityclass":
			cols["severity"] = i
		case "vdiliconcern":
			cols["concern"] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil
	}

	records := make([]DILIRankRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := rowCells(row)
		rec := DILIRankRecord{
			LTKBID:        cellAt(cells, cols, "id"),
			CompoundName:  cellAt(cells, cols, "name"),
			SeverityClass: cellAt(cells, cols, "severity"),
			Concern:       cellAt(cells, cols, "concern"),
		}
		if rec.CompoundName == "" {
			continue
		}
		records = append(records, rec)
	}

	return records
}

func cellAt(cells []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func normalizeHeader(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func rowCells(row *html.Node) []string {
	cells := make([]string, 0, 6)
	for _, cell := range findNodes(row, "td", "th") {
		cells = append(cells, strings.TrimSpace(nodeText(cell)))
	}
	return cells
}

func findNodes(n *html.Node, names ...string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			for _, name := range names {
				if node.Data == name {
					out = append(out, node)
					return
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func containsKeywords(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// fallbackDILIRank returns a small seed of well-characterized DILIrank
// compounds used when the FDA page cannot be reached.
func fallbackDILIRank() []DILIRankRecord {
	return []DILIRankRecord{
		{LTKBID: "LT00003", CompoundName: "mercaptopurine", SeverityClass: "8", Concern: "Most-DILI-Concern"},
		{LTKBID: "LT00004", CompoundName: "acetaminophen", SeverityClass: "5", Concern: "Most-DILI-Concern"},
		{LTKBID: "LT00006", CompoundName: "azathioprine", SeverityClass: "5", Concern: "Most-DILI-Concern"},
		{LTKBID: "LT00009", CompoundName: "chlorpheniramine", SeverityClass: "0", Concern: "No-DILI-Concern"},
		{LTKBID: "LT00011", CompoundName: "clofibrate", SeverityClass: "3", Concern: "Less-DILI-Concern"},
		{LTKBID: "LT00012", CompoundName: "isoniazid", SeverityClass: "8", Concern: "Most-DILI-Concern"},
		{LTKBID: "LT00013", CompoundName: "amoxicillin", SeverityClass: "0", Concern: "No-DILI-Concern"},
		{LTKBID: "LT00014", CompoundName: "aspirin", SeverityClass: "0", Concern: "No-DILI-Concern"},
	}
}

// SaveDILIRank upserts the given DILIrank records in one transaction.
func SaveDILIRank(db *sql.DB, records []DILIRankRecord) error {
	if db == nil {
		return errDBNotInitialized
	}

	stmt, err := db.Prepare(insertDILIRankSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare DILIrank insert statement: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, rec := range records {
		if _, err := tx.Stmt(stmt).Exec(rec.LTKBID, rec.CompoundName, rec.SeverityClass, rec.Concern); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting DILIrank record %s: %w", rec.LTKBID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetDILIRank returns all stored DILIrank records.
func GetDILIRank(db *sql.DB) ([]DILIRankRecord, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectDILIRankSQL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query DILIrank records: %w", err)
	}
	defer rows.Close()

	list := make([]DILIRankRecord, 0)
	for rows.Next() {
		var rec DILIRankRecord
		if err := rows.Scan(&rec.LTKBID, &rec.CompoundName, &rec.SeverityClass, &rec.Concern); err != nil {
			return nil, fmt.Errorf("failed to scan DILIrank row: %w", err)
		}
		list = append(list, rec)
	}

	return list, nil
}
