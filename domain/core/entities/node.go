package entities

// Node is a graph vertex carrying the scalar attributes the measure
// fold and the state hash consume.
type Node struct {
	ID      string  `json:"id"`
	Mass    float64 `json:"mass"`
	Sigma   float64 `json:"sigma"`
	Density float64 `json:"density"`
	Type    string  `json:"type"`
}

// Edge is a directed connection between two nodes, unique by (A, B).
// Re-setting an existing pair replaces its flow value.
type Edge struct {
	A    string  `json:"a"`
	B    string  `json:"b"`
	Flow float64 `json:"flow"`
}

// EdgeKey returns the map key identifying the (A, B) pair. The NUL
// separator keeps pairs like ("x->", "y") and ("x", "->y") distinct.
func (e Edge) EdgeKey() string {
	return e.A + "\x00" + e.B
}

// References reports whether the edge touches the given node id
func (e Edge) References(nodeID string) bool {
	return e.A == nodeID || e.B == nodeID
}
