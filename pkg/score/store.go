package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const suggestLimit = 10

var (
	// ErrNotFound is returned by FindExact when no target matches.
	ErrNotFound = errors.New("target not found")

	// ErrMalformedRecord is returned when a record in a bulk load is
	// missing a required field. The entire load is rejected.
	ErrMalformedRecord = errors.New("malformed target record")
)

// Record holds the scored result for a single drug target.
type Record struct {
	Symbol            string  `json:"target_symbol" yaml:"target_symbol"`
	DrugCount         int     `json:"drug_count" yaml:"drug_count"`
	TotalDILIWeight   float64 `json:"total_dili_weight" yaml:"total_dili_weight"`
	HighRiskDrugCount int     `json:"high_risk_drug_count" yaml:"high_risk_drug_count"`
	DILIRiskRatio     float64 `json:"dili_risk_ratio" yaml:"dili_risk_ratio"`
	AvgDILIWeight     float64 `json:"avg_dili_weight" yaml:"avg_dili_weight"`
	NetworkScore      float64 `json:"network_dili_score" yaml:"network_dili_score"`
	RiskScore         float64 `json:"dili_risk_score" yaml:"dili_risk_score"`
	Category          string  `json:"risk_category" yaml:"risk_category"`
}

// rawRecord mirrors Record with pointer fields so that a missing
// numeric field is detectable instead of silently decoding to zero.
type rawRecord struct {
	Symbol            *string  `json:"target_symbol"`
	DrugCount         *int     `json:"drug_count"`
	TotalDILIWeight   *float64 `json:"total_dili_weight"`
	HighRiskDrugCount *int     `json:"high_risk_drug_count"`
	DILIRiskRatio     *float64 `json:"dili_risk_ratio"`
	AvgDILIWeight     *float64 `json:"avg_dili_weight"`
	NetworkScore      *float64 `json:"network_dili_score"`
	RiskScore         *float64 `json:"dili_risk_score"`
	Category          string   `json:"risk_category"`
}

func (r *rawRecord) validate() error {
	if r.Symbol == nil || *r.Symbol == "" {
		return fmt.Errorf("%w: missing target_symbol", ErrMalformedRecord)
	}
	switch {
	case r.RiskScore == nil:
		return fmt.Errorf("%w: %s missing dili_risk_score", ErrMalformedRecord, *r.Symbol)
	case r.DrugCount == nil:
		return fmt.Errorf("%w: %s missing drug_count", ErrMalformedRecord, *r.Symbol)
	case r.HighRiskDrugCount == nil:
		return fmt.Errorf("%w: %s missing high_risk_drug_count", ErrMalformedRecord, *r.Symbol)
	case r.DILIRiskRatio == nil:
		return fmt.Errorf("%w: %s missing dili_risk_ratio", ErrMalformedRecord, *r.Symbol)
	case r.NetworkScore == nil:
		return fmt.Errorf("%w: %s missing network_dili_score", ErrMalformedRecord, *r.Symbol)
	}
	return nil
}

func (r *rawRecord) toRecord() Record {
	rec := Record{
		Symbol:            *r.Symbol,
		DrugCount:         *r.DrugCount,
		HighRiskDrugCount: *r.HighRiskDrugCount,
		DILIRiskRatio:     *r.DILIRiskRatio,
		NetworkScore:      *r.NetworkScore,
		RiskScore:         *r.RiskScore,
		Category:          r.Category,
	}
	if r.TotalDILIWeight != nil {
		rec.TotalDILIWeight = *r.TotalDILIWeight
	}
	if r.AvgDILIWeight != nil {
		rec.AvgDILIWeight = *r.AvgDILIWeight
	}
	return rec
}

// DecodeRecords reads a JSON array of target records. A record missing
// a required field fails the whole decode so placeholder zeros never
// leak into threshold or histogram computation.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var raw []rawRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode target records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i := range raw {
		if err := raw[i].validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, raw[i].toRecord())
	}

	return records, nil
}

// Store is a read-only, in-memory snapshot of scored targets. It is
// populated by a single bulk load and never mutated afterwards, so all
// query methods are safe for concurrent use.
type Store struct {
	records []Record
}

// NewStore returns a store holding a copy of the given records.
// A subsequent load replaces the entire collection.
func NewStore(records []Record) *Store {
	s := &Store{}
	s.Load(records)
	return s
}

// Load replaces the store contents with a copy of the given records.
func (s *Store) Load(records []Record) {
	s.records = make([]Record, len(records))
	copy(s.records, records)
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns the stored records in load order.
func (s *Store) Records() []Record {
	return s.records
}

// Scores returns the raw risk scores in load order.
func (s *Store) Scores() []float64 {
	scores := make([]float64, len(s.records))
	for i := range s.records {
		scores[i] = s.records[i].RiskScore
	}
	return scores
}

// FindExact returns the first record whose symbol matches the query
// case-insensitively, or ErrNotFound. Symbols are expected to be
// unique; on duplicates the first in load order wins.
func (s *Store) FindExact(symbol string) (*Record, error) {
	for i := range s.records {
		if strings.EqualFold(s.records[i].Symbol, symbol) {
			return &s.records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
}

// Suggest returns up to 10 records whose symbol contains the query as
// a case-insensitive substring, in load order. An empty query yields
// no suggestions.
func (s *Store) Suggest(query string) []Record {
	list := make([]Record, 0, suggestLimit)
	if query == "" {
		return list
	}

	q := strings.ToUpper(query)
	for i := range s.records {
		if strings.Contains(strings.ToUpper(s.records[i].Symbol), q) {
			list = append(list, s.records[i])
			if len(list) == suggestLimit {
				break
			}
		}
	}
	return list
}
