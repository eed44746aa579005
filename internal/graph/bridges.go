package graph

import "sort"

// BridgePatient is a patient whose removal splits a cluster apart; in
// outbreak terms a likely bridging case between sub-groups
type BridgePatient struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Connections int    `json:"connections"`
}

// BridgeEdge is a link whose removal splits a cluster apart
type BridgeEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// CrossMetroLink counts links between patients located in different metros
type CrossMetroLink struct {
	MetroA string `json:"metro_a"`
	MetroB string `json:"metro_b"`
	Links  int    `json:"links"`
}

// BridgeReport contains bridge analysis results
type BridgeReport struct {
	BridgePatients  []BridgePatient  `json:"bridge_patients"`
	BridgeEdges     []BridgeEdge     `json:"bridge_edges"`
	CrossMetroLinks []CrossMetroLink `json:"cross_metro_links"`
	PatientCount    int              `json:"patient_count"`
	EdgeCount       int              `json:"edge_count"`
}

// ComputeBridges finds articulation points, bridge edges, and links that
// cross metro boundaries
func ComputeBridges(snap *Snapshot) *BridgeReport {
	if len(snap.Nodes) == 0 {
		return &BridgeReport{}
	}

	nodeIDs := snap.IDs
	idToIdx := make(map[string]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idToIdx[id] = i
	}
	n := len(nodeIDs)

	// Deduplicated undirected adjacency (as indices)
	adjIdx := make([][]int, n)
	type edgePair struct{ u, v int }
	weights := make(map[edgePair]float64)

	for _, e := range snap.Edges {
		u, okU := idToIdx[e.Source]
		v, okV := idToIdx[e.Target]
		if !okU || !okV || u == v {
			continue
		}
		key := edgePair{u, v}
		if u > v {
			key = edgePair{v, u}
		}
		if _, seen := weights[key]; !seen {
			weights[key] = e.Weight
			adjIdx[u] = append(adjIdx[u], v)
			adjIdx[v] = append(adjIdx[v], u)
		}
	}

	disc := make([]int, n)
	low := make([]int, n)
	visited := make([]bool, n)
	isAP := make([]bool, n)
	var bridgePairs [][2]int
	counter := 1

	const noParent = -1

	// Iterative Tarjan per component
	type frame struct {
		node, parent, ni int
	}

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}

		visited[start] = true
		disc[start] = counter
		low[start] = counter
		counter++

		stack := []frame{{start, noParent, 0}}
		rootChildren := 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := top.node
			parent := top.parent

			if top.ni < len(adjIdx[node]) {
				child := adjIdx[node][top.ni]
				top.ni++

				if child == parent {
					continue
				}

				if visited[child] {
					if disc[child] < low[node] {
						low[node] = disc[child]
					}
				} else {
					visited[child] = true
					disc[child] = counter
					low[child] = counter
					counter++

					if node == start {
						rootChildren++
					}

					stack = append(stack, frame{child, node, 0})
				}
			} else {
				stack = stack[:len(stack)-1]

				if len(stack) > 0 {
					pn := stack[len(stack)-1].node

					if low[node] < low[pn] {
						low[pn] = low[node]
					}
					if low[node] > disc[pn] {
						bridgePairs = append(bridgePairs, [2]int{pn, node})
					}
					if pn != start && low[node] >= disc[pn] {
						isAP[pn] = true
					}
				}
			}
		}

		if rootChildren >= 2 {
			isAP[start] = true
		}
	}

	var patients []BridgePatient
	for i := 0; i < n; i++ {
		if isAP[i] {
			id := nodeIDs[i]
			patients = append(patients, BridgePatient{
				ID:          id,
				Label:       snap.label(id),
				Connections: len(adjIdx[i]),
			})
		}
	}
	sort.SliceStable(patients, func(i, j int) bool {
		return patients[i].Connections > patients[j].Connections
	})

	var bridges []BridgeEdge
	for _, pair := range bridgePairs {
		key := edgePair{pair[0], pair[1]}
		if key.u > key.v {
			key = edgePair{key.v, key.u}
		}
		bridges = append(bridges, BridgeEdge{
			Source: nodeIDs[pair[0]],
			Target: nodeIDs[pair[1]],
			Weight: weights[key],
		})
	}

	type metroPair struct{ a, b string }
	pairCounts := make(map[metroPair]int)
	for _, e := range snap.Edges {
		ma := snap.location(e.Source)
		mb := snap.location(e.Target)
		if ma == mb {
			continue
		}
		key := metroPair{ma, mb}
		if ma > mb {
			key = metroPair{mb, ma}
		}
		pairCounts[key]++
	}

	var cross []CrossMetroLink
	for pair, count := range pairCounts {
		cross = append(cross, CrossMetroLink{
			MetroA: pair.a,
			MetroB: pair.b,
			Links:  count,
		})
	}
	sort.Slice(cross, func(i, j int) bool {
		if cross[i].Links != cross[j].Links {
			return cross[i].Links > cross[j].Links
		}
		if cross[i].MetroA != cross[j].MetroA {
			return cross[i].MetroA < cross[j].MetroA
		}
		return cross[i].MetroB < cross[j].MetroB
	})

	return &BridgeReport{
		BridgePatients:  patients,
		BridgeEdges:     bridges,
		CrossMetroLinks: cross,
		PatientCount:    len(patients),
		EdgeCount:       len(bridges),
	}
}
