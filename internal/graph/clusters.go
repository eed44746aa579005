package graph

import "fmt"

// Cluster is a connected component of two or more linked patients
type Cluster struct {
	ID          string   `json:"id"`
	Members     []string `json:"members"`
	TotalWeight float64  `json:"total_weight"`
	EdgeCount   int      `json:"edge_count"`
}

// AverageWeight is the mean weight of the cluster's internal edges
func (c Cluster) AverageWeight() float64 {
	if c.EdgeCount == 0 {
		return 0
	}
	return c.TotalWeight / float64(c.EdgeCount)
}

type halfEdge struct {
	to     string
	weight float64
}

// DetectClusters finds connected components by breadth-first traversal,
// starting from ids in the given order. Components of size 1 are dropped.
// Each edge contributes to its component's totals once, counted from the
// lexicographically smaller endpoint. Runs in O(V+E).
func DetectClusters(ids []string, edges []Edge) []Cluster {
	known := make(map[string]bool, len(ids))
	adj := make(map[string][]halfEdge, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	for _, e := range edges {
		if e.Source == e.Target || !known[e.Source] || !known[e.Target] {
			continue
		}
		adj[e.Source] = append(adj[e.Source], halfEdge{to: e.Target, weight: e.Weight})
		adj[e.Target] = append(adj[e.Target], halfEdge{to: e.Source, weight: e.Weight})
	}

	visited := make(map[string]bool, len(ids))
	clusters := make([]Cluster, 0)

	for _, start := range ids {
		if visited[start] {
			continue
		}
		visited[start] = true

		var members []string
		var total float64
		count := 0

		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)

			for _, he := range adj[cur] {
				if cur < he.to {
					total += he.weight
					count++
				}
				if !visited[he.to] {
					visited[he.to] = true
					queue = append(queue, he.to)
				}
			}
		}

		if len(members) < 2 {
			continue
		}
		clusters = append(clusters, Cluster{
			ID:          fmt.Sprintf("cluster-%d", len(clusters)+1),
			Members:     members,
			TotalWeight: total,
			EdgeCount:   count,
		})
	}

	return clusters
}
