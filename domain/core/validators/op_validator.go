package validators

import (
	"fmt"

	"simkernel/domain/config"
	"simkernel/domain/core/valueobjects"
	pkgerrors "simkernel/pkg/errors"
)

// RawNodeOp is the untrusted wire shape of a graph mutation command.
// Numeric fields are pointers so an omitted field is distinguishable
// from an explicit zero and can take its declared default.
type RawNodeOp struct {
	Type     string   `json:"type"`
	OpID     string   `json:"op_id"`
	TMs      int64    `json:"t_ms"`
	NodeID   string   `json:"node_id,omitempty"`
	Mass     *float64 `json:"mass,omitempty"`
	Sigma    *float64 `json:"sigma,omitempty"`
	Density  *float64 `json:"density,omitempty"`
	NodeType string   `json:"node_type,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	A        string   `json:"a,omitempty"`
	B        string   `json:"b,omitempty"`
	Flow     *float64 `json:"flow,omitempty"`
}

// OpValidator maps raw op batches onto the closed NodeOp union and
// enforces the draft capacity bound. All rejection happens here, at
// staging time; commit never fails on data this validator accepted.
type OpValidator struct {
	cfg *config.DomainConfig
}

// NewOpValidator creates an op validator
func NewOpValidator(cfg *config.DomainConfig) *OpValidator {
	return &OpValidator{cfg: cfg}
}

// ParseOp type-checks a single raw record and returns its NodeOp variant
func (v *OpValidator) ParseOp(raw RawNodeOp) (valueobjects.NodeOp, error) {
	if raw.OpID == "" {
		return nil, pkgerrors.NewValidationError("op_id is required")
	}

	meta := valueobjects.OpMeta{ID: raw.OpID, TMs: raw.TMs}

	switch valueobjects.OpType(raw.Type) {
	case valueobjects.OpTypeNodeCreate:
		if raw.NodeID == "" {
			return nil, pkgerrors.NewValidationError("node_id is required for NODE_CREATE")
		}
		nodeType := raw.NodeType
		if nodeType == "" {
			nodeType = v.cfg.DefaultNodeType
		}
		return valueobjects.NodeCreate{
			OpMeta:   meta,
			NodeID:   raw.NodeID,
			Mass:     floatOrDefault(raw.Mass, v.cfg.DefaultNodeMass),
			Sigma:    floatOrDefault(raw.Sigma, v.cfg.DefaultNodeSigma),
			Density:  floatOrDefault(raw.Density, v.cfg.DefaultNodeDensity),
			NodeType: nodeType,
		}, nil

	case valueobjects.OpTypeNodeDelete:
		if raw.NodeID == "" {
			return nil, pkgerrors.NewValidationError("node_id is required for NODE_DELETE")
		}
		return valueobjects.NodeDelete{OpMeta: meta, NodeID: raw.NodeID}, nil

	case valueobjects.OpTypeNodeMassScale:
		if raw.NodeID == "" {
			return nil, pkgerrors.NewValidationError("node_id is required for NODE_MASS_SCALE")
		}
		return valueobjects.NodeMassScale{
			OpMeta: meta,
			NodeID: raw.NodeID,
			Scale:  floatOrDefault(raw.Scale, 1.0),
		}, nil

	case valueobjects.OpTypeEdgeWeightSet:
		if raw.A == "" || raw.B == "" {
			return nil, pkgerrors.NewValidationError("a and b are required for EDGE_WEIGHT_SET")
		}
		return valueobjects.EdgeWeightSet{
			OpMeta: meta,
			A:      raw.A,
			B:      raw.B,
			Flow:   floatOrDefault(raw.Flow, 0),
		}, nil
	}

	return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown op type %q", raw.Type)).
		WithCode(pkgerrors.CodeInvalidEnum)
}

// NormalizeBatch validates a raw batch against the ops already staged
// for the session and returns the ops to append to the draft.
//
// The whole batch is rejected if any record fails to parse or if the
// running total of distinct op_ids would exceed the capacity bound; a
// rejected batch has no partial effect. Records whose op_id is already
// staged (or repeated within the batch) are discarded, first write wins.
func (v *OpValidator) NormalizeBatch(staged map[string]valueobjects.NodeOp, raw []RawNodeOp) ([]valueobjects.NodeOp, error) {
	accepted := make([]valueobjects.NodeOp, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, record := range raw {
		op, err := v.ParseOp(record)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[op.OpID()]; dup {
			continue
		}
		seen[op.OpID()] = struct{}{}
		if _, dup := staged[op.OpID()]; dup {
			continue
		}
		accepted = append(accepted, op)
	}

	if len(staged)+len(accepted) > v.cfg.MaxOpsPerCommit {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("draft would hold %d ops, limit is %d", len(staged)+len(accepted), v.cfg.MaxOpsPerCommit)).
			WithCode(pkgerrors.CodeTooManyOps)
	}

	return accepted, nil
}

// ClampMassMod clamps a page-1 mass modifier into its declared range
func (v *OpValidator) ClampMassMod(massMod float64) float64 {
	if massMod < v.cfg.MassModMin {
		return v.cfg.MassModMin
	}
	if massMod > v.cfg.MassModMax {
		return v.cfg.MassModMax
	}
	return massMod
}

func floatOrDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
