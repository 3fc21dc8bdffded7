package score

// NetworkRow links one target to the risk targets it interacts with in
// the biological network.
type NetworkRow struct {
	Target          string
	RiskTargets     []string
	RiskTargetCount int
}

// ApplyNetworkScores fills in the guilt-by-association score for each
// evidence entry: the total count of risk targets connected to it in
// the network. Targets without network rows, or an empty network,
// score zero.
func ApplyNetworkScores(evidence []Evidence, network []NetworkRow) {
	if len(network) == 0 {
		return
	}

	neighbors := make(map[string]float64, len(network))
	for _, row := range network {
		neighbors[row.Target] += float64(row.RiskTargetCount)
	}

	for i := range evidence {
		evidence[i].NetworkScore = neighbors[evidence[i].Symbol]
	}
}
