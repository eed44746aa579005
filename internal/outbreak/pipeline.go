package outbreak

import (
	"github.com/HenryLodge/viro-sub000/internal/graph"
	"github.com/HenryLodge/viro-sub000/internal/patient"
)

// Result is the output of one graph pipeline run
type Result struct {
	Nodes         []graph.Node           `json:"nodes"`
	Edges         []graph.Edge           `json:"edges"`
	Clusters      []Cluster              `json:"clusters"`
	ClusterAlerts []Alert                `json:"clusterAlerts"`
	Structure     *graph.StructureReport `json:"structure,omitempty"`
}

// Run builds the linkage graph over the eligible patients, detects and
// enriches clusters, and derives alerts. It holds no state between calls.
func Run(patients []*patient.Node, gcfg *graph.Config, cfg *Config) *Result {
	g := graph.Build(patients, gcfg)
	raw := graph.DetectClusters(g.NodeIDs(), g.Edges)

	lookup := make(map[string]*patient.Node, len(patients))
	for _, p := range patients {
		if p != nil && p.Eligible() {
			if _, dup := lookup[p.ID]; !dup {
				lookup[p.ID] = p
			}
		}
	}

	clusters := Enrich(raw, lookup, cfg)
	return &Result{
		Nodes:         g.Nodes,
		Edges:         g.Edges,
		Clusters:      clusters,
		ClusterAlerts: GenerateAlerts(clusters, cfg),
		Structure:     graph.AnalyzeStructure(g, raw, gcfg),
	}
}
