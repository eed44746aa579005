package graph

import "math"

// LinkageBreakdown shows the sub-scores of the linkage formula
type LinkageBreakdown struct {
	Clustered float64 `json:"clustered"` // share of patients in any cluster
	Density   float64 `json:"density"`   // mean internal weight across clusters
	Fragility float64 `json:"fragility"` // 1 = no bridging cases
}

// StructureReport is the structural analysis of one graph run
type StructureReport struct {
	LinkageScore     float64          `json:"linkage_score"`
	LinkageBreakdown LinkageBreakdown `json:"linkage_breakdown"`
	Topology         *TopologyReport  `json:"topology"`
	Bridges          *BridgeReport    `json:"bridges"`
}

// AnalyzeStructure runs topology and bridge analysis and folds them into a
// single linkage score in [0,1]: how strongly the population is tied together
func AnalyzeStructure(g *Graph, clusters []Cluster, cfg *Config) *StructureReport {
	snap := NewSnapshot(g)
	topology := ComputeTopology(snap, clusters, cfg.HubThreshold, cfg.TopN)
	bridges := ComputeBridges(snap)

	total := float64(topology.TotalNodes)

	var clustered, density, fragility float64
	if total > 0 {
		clustered = clamp(1.0-float64(topology.IsolatedCount)/total, 0, 1)
		fragility = clamp(1.0-math.Min(float64(bridges.PatientCount)/total, 0.2)*5.0, 0, 1)
	}
	if len(clusters) > 0 {
		var sum float64
		for _, c := range clusters {
			sum += c.AverageWeight()
		}
		density = clamp(sum/float64(len(clusters)), 0, 1)
	}

	return &StructureReport{
		LinkageScore: 0.40*clustered + 0.40*density + 0.20*fragility,
		LinkageBreakdown: LinkageBreakdown{
			Clustered: clustered,
			Density:   density,
			Fragility: fragility,
		},
		Topology: topology,
		Bridges:  bridges,
	}
}

func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
