package valueobjects

import "sort"

// OpType discriminates the four graph mutation commands
type OpType string

const (
	OpTypeNodeCreate    OpType = "NODE_CREATE"
	OpTypeNodeDelete    OpType = "NODE_DELETE"
	OpTypeNodeMassScale OpType = "NODE_MASS_SCALE"
	OpTypeEdgeWeightSet OpType = "EDGE_WEIGHT_SET"
)

// NodeOp is a closed sum type over the four graph mutation commands.
// Untrusted input is mapped onto a variant at the validation boundary;
// past that point an unknown op type cannot exist.
type NodeOp interface {
	OpID() string
	TMillis() int64
	Type() OpType

	isNodeOp()
}

// OpMeta carries the fields every op shares: the idempotency key and
// the submission timestamp used as a deterministic sort input.
type OpMeta struct {
	ID  string `json:"op_id"`
	TMs int64  `json:"t_ms"`
}

// OpID returns the op's idempotency key
func (m OpMeta) OpID() string { return m.ID }

// TMillis returns the op's submission timestamp in milliseconds
func (m OpMeta) TMillis() int64 { return m.TMs }

// NodeCreate inserts or overwrites a node
type NodeCreate struct {
	OpMeta
	NodeID   string  `json:"node_id"`
	Mass     float64 `json:"mass"`
	Sigma    float64 `json:"sigma"`
	Density  float64 `json:"density"`
	NodeType string  `json:"node_type"`
}

// Type returns the op discriminator
func (NodeCreate) Type() OpType { return OpTypeNodeCreate }
func (NodeCreate) isNodeOp()    {}

// NodeDelete removes a node and cascades edge removal.
// Deleting the root node is a defined no-op.
type NodeDelete struct {
	OpMeta
	NodeID string `json:"node_id"`
}

// Type returns the op discriminator
func (NodeDelete) Type() OpType { return OpTypeNodeDelete }
func (NodeDelete) isNodeOp()    {}

// NodeMassScale multiplies an existing node's mass; no-op if the node
// is absent.
type NodeMassScale struct {
	OpMeta
	NodeID string  `json:"node_id"`
	Scale  float64 `json:"scale"`
}

// Type returns the op discriminator
func (NodeMassScale) Type() OpType { return OpTypeNodeMassScale }
func (NodeMassScale) isNodeOp()    {}

// EdgeWeightSet upserts the flow value of a directed edge
type EdgeWeightSet struct {
	OpMeta
	A    string  `json:"a"`
	B    string  `json:"b"`
	Flow float64 `json:"flow"`
}

// Type returns the op discriminator
func (EdgeWeightSet) Type() OpType { return OpTypeEdgeWeightSet }
func (EdgeWeightSet) isNodeOp()    {}

// SortOpsCanonical orders ops ascending by (t_ms, op_id), op_id compared
// lexicographically. Every commit applies ops in this order, which is
// what makes the persisted state independent of submission order.
func SortOpsCanonical(ops []NodeOp) {
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].TMillis() != ops[j].TMillis() {
			return ops[i].TMillis() < ops[j].TMillis()
		}
		return ops[i].OpID() < ops[j].OpID()
	})
}
