package graph

// Snapshot holds a built graph with precomputed adjacency lists
type Snapshot struct {
	Nodes map[string]*Node
	Edges []Edge
	Adj   map[string][]string // undirected
	IDs   []string            // graph order
}

// NewSnapshot indexes g for structural analysis. Edges whose endpoints are
// not graph nodes are ignored.
func NewSnapshot(g *Graph) *Snapshot {
	nodeMap := make(map[string]*Node, len(g.Nodes))
	adj := make(map[string][]string, len(g.Nodes))
	ids := make([]string, 0, len(g.Nodes))

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if _, dup := nodeMap[n.ID]; dup {
			continue
		}
		nodeMap[n.ID] = n
		adj[n.ID] = nil // ensure entry exists
		ids = append(ids, n.ID)
	}

	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if _, ok := nodeMap[e.Source]; !ok {
			continue
		}
		if _, ok := nodeMap[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
		edges = append(edges, e)
	}

	return &Snapshot{
		Nodes: nodeMap,
		Edges: edges,
		Adj:   adj,
		IDs:   ids,
	}
}

func (s *Snapshot) label(id string) string {
	if n := s.Nodes[id]; n != nil {
		return n.Label
	}
	return ""
}

func (s *Snapshot) location(id string) string {
	if n := s.Nodes[id]; n != nil && n.Location != nil {
		return *n.Location
	}
	return "unlocated"
}
