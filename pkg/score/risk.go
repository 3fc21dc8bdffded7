package score

import "fmt"

// DefaultAlpha is the default weight given to network
// guilt-by-association evidence in the final risk score.
const DefaultAlpha = 0.5

// Calculator combines direct and network DILI evidence into final
// normalized risk scores and tertile categories.
type Calculator struct {
	alpha float64
}

// NewCalculator returns a calculator with the given network evidence
// weight. Alpha is clamped to [0,1].
func NewCalculator(alpha float64) *Calculator {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return &Calculator{alpha: alpha}
}

// Alpha returns the configured network evidence weight.
func (c *Calculator) Alpha() float64 {
	return c.alpha
}

// Score computes the final risk score for every target:
// direct evidence and network evidence are min-max normalized by their
// column max, combined as direct + alpha*network, renormalized to
// [0,1], then categorized against the population tertile thresholds.
func (c *Calculator) Score(evidence []Evidence) ([]Record, error) {
	if len(evidence) == 0 {
		return nil, ErrNoScores
	}

	var maxWeight, maxNetwork float64
	for _, e := range evidence {
		if e.TotalDILIWeight > maxWeight {
			maxWeight = e.TotalDILIWeight
		}
		if e.NetworkScore > maxNetwork {
			maxNetwork = e.NetworkScore
		}
	}

	scores := make([]float64, len(evidence))
	var maxScore float64
	for i, e := range evidence {
		var direct, network float64
		if maxWeight > 0 {
			direct = e.TotalDILIWeight / maxWeight
		}
		if maxNetwork > 0 {
			network = e.NetworkScore / maxNetwork
		}
		scores[i] = direct + c.alpha*network
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}

	if maxScore > 0 {
		for i := range scores {
			scores[i] /= maxScore
		}
	}

	th, err := ComputeThresholds(scores)
	if err != nil {
		return nil, fmt.Errorf("failed to compute risk thresholds: %w", err)
	}

	records := make([]Record, len(evidence))
	for i, e := range evidence {
		records[i] = Record{
			Symbol:            e.Symbol,
			DrugCount:         e.DrugCount,
			TotalDILIWeight:   e.TotalDILIWeight,
			HighRiskDrugCount: e.HighRiskDrugCount,
			DILIRiskRatio:     e.DILIRiskRatio,
			AvgDILIWeight:     e.AvgDILIWeight,
			NetworkScore:      e.NetworkScore,
			RiskScore:         scores[i],
			Category:          th.Categorize(scores[i]),
		}
	}

	return records, nil
}
