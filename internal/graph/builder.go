package graph

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/HenryLodge/viro-sub000/internal/patient"
)

// Node is a patient as displayed in the linkage graph
type Node struct {
	ID          string       `json:"id"`
	Tier        patient.Tier `json:"tier"`
	Connections int          `json:"connections"`
	Label       string       `json:"label"`
	Age         *int         `json:"age"`
	Symptoms    []string     `json:"symptoms"`
	Location    *string      `json:"location"`
}

// Edge links two patients. Source is the patient that appears first in the
// input; the pair is unordered.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Reason string  `json:"reason"`
}

// Graph is the filtered patient linkage graph
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build scores every unordered pair of eligible patients and keeps the pairs
// that clear cfg.MinEdgeWeight. Patients that are not eligible are dropped.
func Build(patients []*patient.Node, cfg *Config) *Graph {
	eligible := dedupe(patient.FilterEligible(patients))
	if len(eligible) == 0 {
		return &Graph{Nodes: []Node{}, Edges: []Edge{}}
	}

	profiles := make([]*profile, len(eligible))
	for i, p := range eligible {
		profiles[i] = newProfile(p, cfg)
	}

	// Each row i holds the edges (i, j>i); rows are merged in order so the
	// output does not depend on the worker count.
	rows := make([][]Edge, len(profiles))
	scoreRow := func(i int) {
		for j := i + 1; j < len(profiles); j++ {
			sim, ok := scoreProfiles(profiles[i], profiles[j], cfg)
			if !ok {
				continue
			}
			rows[i] = append(rows[i], Edge{
				Source: profiles[i].node.ID,
				Target: profiles[j].node.ID,
				Weight: sim.Weight,
				Reason: sim.Reason,
			})
		}
	}

	if cfg.Workers <= 1 {
		for i := range profiles {
			scoreRow(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(cfg.Workers)
		for i := range profiles {
			g.Go(func() error {
				scoreRow(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	edges := make([]Edge, 0)
	degree := make(map[string]int, len(profiles))
	for _, row := range rows {
		for _, e := range row {
			edges = append(edges, e)
			degree[e.Source]++
			degree[e.Target]++
		}
	}

	loc := cfg.locator()
	nodes := make([]Node, 0, len(eligible))
	for _, p := range eligible {
		symptoms := p.Symptoms
		if symptoms == nil {
			symptoms = []string{}
		}
		var location *string
		if pt, ok := p.Location(); ok {
			if name, ok := loc.Locate(pt); ok {
				location = &name
			}
		}
		nodes = append(nodes, Node{
			ID:          p.ID,
			Tier:        p.Tier,
			Connections: degree[p.ID],
			Label:       nodeLabel(p),
			Age:         p.Age,
			Symptoms:    symptoms,
			Location:    location,
		})
	}

	return &Graph{Nodes: nodes, Edges: edges}
}

// NodeIDs returns node ids in graph order
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// dedupe keeps the first record per patient id
func dedupe(nodes []*patient.Node) []*patient.Node {
	seen := make(map[string]bool, len(nodes))
	out := nodes[:0:0]
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

func nodeLabel(p *patient.Node) string {
	var parts []string
	if p.Age != nil {
		parts = append(parts, fmt.Sprintf("%dy", *p.Age))
	}
	if len(p.Symptoms) > 0 {
		top := p.Symptoms
		if len(top) > 3 {
			top = top[:3]
		}
		parts = append(parts, strings.Join(top, ", "))
	}
	if p.Tier != patient.TierPending {
		parts = append(parts, string(p.Tier))
	}
	if len(parts) == 0 {
		return "Unknown patient"
	}
	return strings.Join(parts, " · ")
}
