package aggregates

import (
	"errors"
	"sort"

	"simkernel/domain/config"
	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"
)

// Graph is the committed mutable graph for a session.
// It ensures consistency boundaries for the node and edge sets: the
// root node is always present and no edge may dangle after a mutation.
type Graph struct {
	rootID string
	nodes  map[string]entities.Node
	edges  map[string]entities.Edge
}

// NewGraph creates a graph seeded with the protected root node
func NewGraph(cfg *config.DomainConfig) *Graph {
	g := &Graph{
		rootID: cfg.RootNodeID,
		nodes:  make(map[string]entities.Node),
		edges:  make(map[string]entities.Edge),
	}
	g.nodes[cfg.RootNodeID] = entities.Node{
		ID:      cfg.RootNodeID,
		Mass:    cfg.DefaultNodeMass,
		Sigma:   cfg.DefaultNodeSigma,
		Density: cfg.DefaultNodeDensity,
		Type:    cfg.RootNodeType,
	}
	return g
}

// RootID returns the id of the protected root node
func (g *Graph) RootID() string {
	return g.rootID
}

// HasNode checks if a node exists in the graph
func (g *Graph) HasNode(nodeID string) bool {
	_, exists := g.nodes[nodeID]
	return exists
}

// GetNode retrieves a node by id
func (g *Graph) GetNode(nodeID string) (entities.Node, bool) {
	node, exists := g.nodes[nodeID]
	return node, exists
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// SortedNodes returns all nodes ordered by id. The root node sits in
// its natural lexicographic position. Sorted iteration is mandatory for
// measure and hash determinism.
func (g *Graph) SortedNodes() []entities.Node {
	nodes := make([]entities.Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// SortedEdges returns all edges ordered by (a, b)
func (g *Graph) SortedEdges() []entities.Edge {
	edges := make([]entities.Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}

// Apply executes a single mutation command against the graph. The
// switch is exhaustive over the closed NodeOp union; ops referencing
// absent nodes degrade to no-ops where the command defines one, so a
// replayed batch never errors on stale ids.
func (g *Graph) Apply(op valueobjects.NodeOp) {
	switch v := op.(type) {
	case valueobjects.NodeCreate:
		g.nodes[v.NodeID] = entities.Node{
			ID:      v.NodeID,
			Mass:    v.Mass,
			Sigma:   v.Sigma,
			Density: v.Density,
			Type:    v.NodeType,
		}

	case valueobjects.NodeDelete:
		g.removeNode(v.NodeID)

	case valueobjects.NodeMassScale:
		node, exists := g.nodes[v.NodeID]
		if !exists {
			return
		}
		node.Mass *= v.Scale
		g.nodes[v.NodeID] = node

	case valueobjects.EdgeWeightSet:
		edge := entities.Edge{A: v.A, B: v.B, Flow: v.Flow}
		g.edges[edge.EdgeKey()] = edge
	}
}

// removeNode deletes a node unless it is the protected root, and
// cascade-removes every edge referencing it
func (g *Graph) removeNode(nodeID string) {
	if nodeID == g.rootID {
		return
	}
	if _, exists := g.nodes[nodeID]; !exists {
		return
	}

	delete(g.nodes, nodeID)

	for key, edge := range g.edges {
		if edge.References(nodeID) {
			delete(g.edges, key)
		}
	}
}

// PruneDanglingEdges removes edges whose endpoints no longer exist.
// Endpoint deletion already cascades, so this is a commit-time
// consistency backstop rather than the primary cleanup path.
func (g *Graph) PruneDanglingEdges() int {
	pruned := 0
	for key, edge := range g.edges {
		if !g.HasNode(edge.A) || !g.HasNode(edge.B) {
			delete(g.edges, key)
			pruned++
		}
	}
	return pruned
}

// ComputeMeasures folds the sorted node and edge sets into aggregate
// scalars. massMod scales the effective mass; volumeOverride, when
// committed, replaces the derived volume.
func (g *Graph) ComputeMeasures(massMod float64, volumeOverride *float64) valueobjects.Measures {
	m := valueobjects.Measures{
		NodeCount: len(g.nodes),
		EdgeCount: len(g.edges),
	}

	var weightedSigma, densitySum float64
	for _, node := range g.SortedNodes() {
		m.TotalMass += node.Mass
		weightedSigma += node.Mass * node.Sigma
		densitySum += node.Density
	}

	if m.TotalMass != 0 {
		m.Dispersion = weightedSigma / m.TotalMass
	}
	if m.NodeCount > 0 {
		m.MeanDensity = densitySum / float64(m.NodeCount)
	}

	for _, edge := range g.SortedEdges() {
		m.FlowTotal += edge.Flow
	}

	m.EffectiveMass = m.TotalMass * (1 + massMod)

	switch {
	case volumeOverride != nil:
		m.Volume = *volumeOverride
	case m.MeanDensity != 0:
		m.Volume = m.TotalMass / m.MeanDensity
	}

	return m
}

// Validate ensures graph invariants
func (g *Graph) Validate() error {
	if _, exists := g.nodes[g.rootID]; !exists {
		return errors.New("root node missing from graph")
	}
	for _, edge := range g.edges {
		if !g.HasNode(edge.A) {
			return errors.New("edge references non-existent source node")
		}
		if !g.HasNode(edge.B) {
			return errors.New("edge references non-existent target node")
		}
	}
	return nil
}
