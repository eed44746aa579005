package graph

import "sort"

// HubNode is a patient with unusually many links
type HubNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Connections int    `json:"connections"`
}

// DegreeBucket is one bucket in the degree histogram
type DegreeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopologyReport summarizes the shape of the linkage graph
type TopologyReport struct {
	TotalNodes      int            `json:"total_nodes"`
	TotalEdges      int            `json:"total_edges"`
	NumClusters     int            `json:"num_clusters"`
	LargestCluster  int            `json:"largest_cluster"`
	SmallestCluster int            `json:"smallest_cluster"`
	IsolatedCount   int            `json:"isolated_count"`
	IsolatedIDs     []string       `json:"isolated_ids"`
	DegreeHistogram []DegreeBucket `json:"degree_histogram"`
	Hubs            []HubNode      `json:"hubs"`
}

// ComputeTopology reports cluster sizes, isolated patients, the degree
// distribution and hub patients (connections > hubThreshold)
func ComputeTopology(snap *Snapshot, clusters []Cluster, hubThreshold, topN int) *TopologyReport {
	totalNodes := len(snap.Nodes)
	if totalNodes == 0 {
		return &TopologyReport{
			DegreeHistogram: defaultHistogram(),
		}
	}

	largest, smallest := 0, 0
	for i, c := range clusters {
		size := len(c.Members)
		if size > largest {
			largest = size
		}
		if i == 0 || size < smallest {
			smallest = size
		}
	}

	var isolated []string
	for _, id := range snap.IDs {
		if len(snap.Adj[id]) == 0 {
			isolated = append(isolated, id)
		}
	}
	isolatedCount := len(isolated)
	sort.Strings(isolated)
	if len(isolated) > topN {
		isolated = isolated[:topN]
	}

	buckets := [7]int{}
	for _, id := range snap.IDs {
		buckets[degreeBucket(len(snap.Adj[id]))]++
	}
	histogram := defaultHistogram()
	for i := range histogram {
		histogram[i].Count = buckets[i]
	}

	var hubs []HubNode
	for _, id := range snap.IDs {
		degree := len(snap.Adj[id])
		if degree > hubThreshold {
			hubs = append(hubs, HubNode{
				ID:          id,
				Label:       snap.label(id),
				Connections: degree,
			})
		}
	}
	sort.SliceStable(hubs, func(i, j int) bool { return hubs[i].Connections > hubs[j].Connections })
	if len(hubs) > topN {
		hubs = hubs[:topN]
	}

	return &TopologyReport{
		TotalNodes:      totalNodes,
		TotalEdges:      len(snap.Edges),
		NumClusters:     len(clusters),
		LargestCluster:  largest,
		SmallestCluster: smallest,
		IsolatedCount:   isolatedCount,
		IsolatedIDs:     isolated,
		DegreeHistogram: histogram,
		Hubs:            hubs,
	}
}

func defaultHistogram() []DegreeBucket {
	return []DegreeBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2-3"},
		{Label: "4-7"}, {Label: "8-15"}, {Label: "16-31"}, {Label: "32+"},
	}
}

func degreeBucket(degree int) int {
	switch {
	case degree == 0:
		return 0
	case degree == 1:
		return 1
	case degree <= 3:
		return 2
	case degree <= 7:
		return 3
	case degree <= 15:
		return 4
	case degree <= 31:
		return 5
	default:
		return 6
	}
}
