package graph

// Export is a JSON-serializable dump of one user's graph, shaped like the
// node-link format commonly used by graph tooling. Producing it has no write
// side effects.
type Export struct {
	Directed   bool   `json:"directed"`
	Multigraph bool   `json:"multigraph"`
	Nodes      []Node `json:"nodes"`
	Links      []Edge `json:"links"`
}

// ExportUser returns the full node/edge dump for one user. The second return
// is false when the user has no graph.
func (s *Store) ExportUser(userID string) (Export, bool) {
	s.mu.RLock()
	g, ok := s.graphs[userID]
	s.mu.RUnlock()
	if !ok {
		return Export{}, false
	}
	return g.export(), true
}

// ExportAll returns every user's graph keyed by user ID.
func (s *Store) ExportAll() map[string]Export {
	s.mu.RLock()
	ids := make([]string, 0, len(s.graphs))
	for id := range s.graphs {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	out := make(map[string]Export, len(ids))
	for _, id := range ids {
		if exp, ok := s.ExportUser(id); ok {
			out[id] = exp
		}
	}
	return out
}

func (g *userGraph) export() Export {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	links := make([]Edge, len(g.edges))
	copy(links, g.edges)

	return Export{
		Directed:   true,
		Multigraph: true,
		Nodes:      nodes,
		Links:      links,
	}
}
