package score

// DILIrank concern classes as published by the FDA.
const (
	ConcernMost      = "Most-DILI-Concern"
	ConcernLess      = "Less-DILI-Concern"
	ConcernNo        = "No-DILI-Concern"
	ConcernAmbiguous = "Ambiguous-DILI-Concern"
)

// SeverityWeight maps a DILIrank concern class to its evidence weight.
// Unknown classes carry no weight.
func SeverityWeight(concern string) float64 {
	switch concern {
	case ConcernMost:
		return 2.0
	case ConcernLess:
		return 1.0
	case ConcernAmbiguous:
		return 0.5
	default:
		return 0
	}
}

// DrugTarget is a single drug to target association annotated with the
// drug's DILIrank concern class.
type DrugTarget struct {
	DrugName       string
	Target         string
	Concern        string
	SeverityWeight float64
}

// Evidence aggregates the DILI evidence for one target.
type Evidence struct {
	Symbol            string
	DrugCount         int
	TotalDILIWeight   float64
	HighRiskDrugCount int
	DILIRiskRatio     float64
	AvgDILIWeight     float64
	NetworkScore      float64
}

// DirectEvidence groups drug-target associations by target and
// aggregates per-target drug counts, severity weight sums, and the
// count of Most-DILI-Concern drugs. Targets come back in first-seen
// order.
func DirectEvidence(pairs []DrugTarget) []Evidence {
	index := make(map[string]int, len(pairs))
	evidence := make([]Evidence, 0, len(pairs))

	for _, p := range pairs {
		i, ok := index[p.Target]
		if !ok {
			i = len(evidence)
			index[p.Target] = i
			evidence = append(evidence, Evidence{Symbol: p.Target})
		}

		e := &evidence[i]
		e.DrugCount++
		e.TotalDILIWeight += p.SeverityWeight
		if p.Concern == ConcernMost {
			e.HighRiskDrugCount++
		}
	}

	for i := range evidence {
		e := &evidence[i]
		if e.DrugCount > 0 {
			e.DILIRiskRatio = float64(e.HighRiskDrugCount) / float64(e.DrugCount)
			e.AvgDILIWeight = e.TotalDILIWeight / float64(e.DrugCount)
		}
	}

	return evidence
}
