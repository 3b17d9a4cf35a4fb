package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"simkernel/domain/config"
	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"
)

// StateHasher computes the content hash checkpointed by replay markers.
//
// The hash must be identical for identical committed state regardless
// of submission order or platform, so callers hand in pre-sorted node
// and edge sets and every float is rendered in fixed decimal notation
// with a configured digit count. The canonical document is JSON with
// struct-declared field order; floats travel as strings so the encoder
// cannot introduce shortest-representation drift.
type StateHasher struct {
	digits int
}

// NewStateHasher creates a hasher with the configured float precision
func NewStateHasher(cfg *config.DomainConfig) *StateHasher {
	return &StateHasher{digits: cfg.HashDecimalDigits}
}

type canonicalNode struct {
	ID      string `json:"id"`
	Mass    string `json:"mass"`
	Sigma   string `json:"sigma"`
	Density string `json:"density"`
	Type    string `json:"type"`
}

type canonicalEdge struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Flow string `json:"flow"`
}

type canonicalAllocation struct {
	Direction string `json:"direction"`
	Weight    string `json:"weight"`
}

type canonicalModifiers struct {
	MassMod        string  `json:"mass_mod"`
	VolumeOverride *string `json:"volume_override"`
}

type canonicalMeasures struct {
	NodeCount     int    `json:"node_count"`
	EdgeCount     int    `json:"edge_count"`
	TotalMass     string `json:"total_mass"`
	EffectiveMass string `json:"effective_mass"`
	Dispersion    string `json:"dispersion"`
	MeanDensity   string `json:"mean_density"`
	FlowTotal     string `json:"flow_total"`
	Volume        string `json:"volume"`
}

type canonicalDocument struct {
	Nodes       []canonicalNode       `json:"nodes"`
	Edges       []canonicalEdge       `json:"edges"`
	Allocations []canonicalAllocation `json:"allocations"`
	Modifiers   canonicalModifiers    `json:"modifiers"`
	Measures    canonicalMeasures     `json:"measures"`
}

// HashState computes the hex-encoded sha256 of the canonical state
// document. nodes must be sorted by id and edges by (a, b); the graph
// aggregate's sorted accessors provide exactly that.
func (h *StateHasher) HashState(
	nodes []entities.Node,
	edges []entities.Edge,
	allocations valueobjects.Allocations,
	massMod float64,
	volumeOverride *float64,
	measures valueobjects.Measures,
) (string, error) {
	doc := canonicalDocument{
		Nodes:       make([]canonicalNode, 0, len(nodes)),
		Edges:       make([]canonicalEdge, 0, len(edges)),
		Allocations: make([]canonicalAllocation, 0, 8),
	}

	for _, node := range nodes {
		doc.Nodes = append(doc.Nodes, canonicalNode{
			ID:      node.ID,
			Mass:    h.fixed(node.Mass),
			Sigma:   h.fixed(node.Sigma),
			Density: h.fixed(node.Density),
			Type:    node.Type,
		})
	}

	for _, edge := range edges {
		doc.Edges = append(doc.Edges, canonicalEdge{
			A:    edge.A,
			B:    edge.B,
			Flow: h.fixed(edge.Flow),
		})
	}

	for _, d := range valueobjects.Directions() {
		doc.Allocations = append(doc.Allocations, canonicalAllocation{
			Direction: string(d),
			Weight:    h.fixed(allocations[d]),
		})
	}

	doc.Modifiers = canonicalModifiers{MassMod: h.fixed(massMod)}
	if volumeOverride != nil {
		v := h.fixed(*volumeOverride)
		doc.Modifiers.VolumeOverride = &v
	}

	doc.Measures = canonicalMeasures{
		NodeCount:     measures.NodeCount,
		EdgeCount:     measures.EdgeCount,
		TotalMass:     h.fixed(measures.TotalMass),
		EffectiveMass: h.fixed(measures.EffectiveMass),
		Dispersion:    h.fixed(measures.Dispersion),
		MeanDensity:   h.fixed(measures.MeanDensity),
		FlowTotal:     h.fixed(measures.FlowTotal),
		Volume:        h.fixed(measures.Volume),
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal canonical state: %w", err)
	}

	hash := sha256.Sum256(jsonData)
	return hex.EncodeToString(hash[:]), nil
}

// fixed renders a float in fixed decimal notation. Negative zero (and
// negatives that round to zero) normalize to the positive form.
func (h *StateHasher) fixed(f float64) string {
	s := strconv.FormatFloat(f, 'f', h.digits, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		s = s[1:]
	}
	return s
}
