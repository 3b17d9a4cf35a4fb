package aggregates

import (
	"fmt"
	"time"

	"simkernel/domain/config"
	"simkernel/domain/core/entities"
	"simkernel/domain/core/validators"
	"simkernel/domain/core/valueobjects"
	"simkernel/domain/events"
	"simkernel/domain/versioning"
)

// Mode indicates whether a session carries uncommitted draft state
type Mode string

const (
	// ModeSim means the session holds staged, not-yet-committed mutations
	ModeSim Mode = "SIM"
	// ModeLive means the session reflects its last commit
	ModeLive Mode = "LIVE"
)

// Session is the aggregate root for the commit kernel. It owns exactly
// one draft buffer and one graph, plus the committed allocation record
// and scalar modifiers the commit pipeline maintains.
//
// A session is single-writer: callers must serialize operations on one
// session relative to each other. The registry enforces that; the
// aggregate itself holds no lock.
type Session struct {
	id        valueobjects.SessionID
	cfg       *config.DomainConfig
	validator *validators.OpValidator
	hasher    *versioning.StateHasher

	mode  Mode
	draft draftBuffer
	graph *Graph

	allocations    valueobjects.Allocations
	massMod        float64
	volumeOverride *float64
	measures       valueobjects.Measures
	stateHash      string

	events []events.DomainEvent
}

// draftBuffer holds the three independent pending pages. All pages are
// cleared together, only by a successful commit.
type draftBuffer struct {
	massMod        *float64
	volumeOverride *float64
	ops            map[string]valueobjects.NodeOp
	allocations    valueobjects.Allocations
}

func newDraftBuffer() draftBuffer {
	return draftBuffer{ops: make(map[string]valueobjects.NodeOp)}
}

func (d draftBuffer) empty() bool {
	return d.massMod == nil && d.volumeOverride == nil && len(d.ops) == 0 && d.allocations == nil
}

// CommitResult describes the outcome of a commit
type CommitResult struct {
	StateHash       string   `json:"state_hash"`
	ProcessingSteps []string `json:"processing_steps"`
	Mode            Mode     `json:"mode"`
}

// ScalarsView is the pending page-1 state returned to callers
type ScalarsView struct {
	MassMod        *float64 `json:"mass_mod,omitempty"`
	VolumeOverride *float64 `json:"volume_override,omitempty"`
}

// OpView is the pending page-2 representation returned to callers
type OpView struct {
	Type     string  `json:"type"`
	OpID     string  `json:"op_id"`
	TMs      int64   `json:"t_ms"`
	NodeID   string  `json:"node_id,omitempty"`
	Mass     float64 `json:"mass,omitempty"`
	Sigma    float64 `json:"sigma,omitempty"`
	Density  float64 `json:"density,omitempty"`
	NodeType string  `json:"node_type,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	A        string  `json:"a,omitempty"`
	B        string  `json:"b,omitempty"`
	Flow     float64 `json:"flow,omitempty"`
}

// DraftView is the pending draft state returned by staging and reads
type DraftView struct {
	Page1 *ScalarsView             `json:"page1,omitempty"`
	Page2 []OpView                 `json:"page2,omitempty"`
	Page3 valueobjects.Allocations `json:"page3,omitempty"`
	Mode  Mode                     `json:"mode"`
}

// Snapshot is the full session state returned by reads
type Snapshot struct {
	SessionID      string                   `json:"session_id"`
	Mode           Mode                     `json:"mode"`
	Draft          DraftView                `json:"draft"`
	Nodes          []entities.Node          `json:"nodes"`
	Edges          []entities.Edge          `json:"edges"`
	Allocations    valueobjects.Allocations `json:"allocations"`
	MassMod        float64                  `json:"mass_mod"`
	VolumeOverride *float64                 `json:"volume_override"`
	Measures       valueobjects.Measures    `json:"measures"`
	StateHash      string                   `json:"state_hash"`
}

// NewSession creates a session with a pristine graph, the uniform
// allocation record and an empty draft. The initial state hash is
// computed immediately so a never-committed session is still
// checkpointable.
func NewSession(
	id valueobjects.SessionID,
	cfg *config.DomainConfig,
	validator *validators.OpValidator,
	hasher *versioning.StateHasher,
) (*Session, error) {
	s := &Session{
		id:          id,
		cfg:         cfg,
		validator:   validator,
		hasher:      hasher,
		mode:        ModeSim,
		draft:       newDraftBuffer(),
		graph:       NewGraph(cfg),
		allocations: valueobjects.NewUniformAllocations(),
		events:      []events.DomainEvent{},
	}

	s.measures = s.graph.ComputeMeasures(s.massMod, s.volumeOverride)
	hash, err := s.rehash()
	if err != nil {
		return nil, err
	}
	s.stateHash = hash

	return s, nil
}

// ID returns the session's identifier
func (s *Session) ID() valueobjects.SessionID {
	return s.id
}

// Mode returns the session's mode
func (s *Session) Mode() Mode {
	return s.mode
}

// StateHash returns the hash of the last committed state
func (s *Session) StateHash() string {
	return s.stateHash
}

// Graph returns the session's committed graph
func (s *Session) Graph() *Graph {
	return s.graph
}

// StageScalars merges a page-1 patch into the pending draft. Only
// supplied fields are replaced; mass_mod is clamped into its declared
// range rather than rejected.
func (s *Session) StageScalars(massMod, volumeOverride *float64) DraftView {
	if massMod != nil {
		clamped := s.validator.ClampMassMod(*massMod)
		s.draft.massMod = &clamped
	}
	if volumeOverride != nil {
		v := *volumeOverride
		s.draft.volumeOverride = &v
	}

	s.enterSim(1)
	return s.DraftSnapshot()
}

// StageOps validates a raw op batch and appends the accepted ops to the
// pending page-2 draft. A rejected batch leaves the draft untouched.
func (s *Session) StageOps(raw []validators.RawNodeOp) (DraftView, error) {
	accepted, err := s.validator.NormalizeBatch(s.draft.ops, raw)
	if err != nil {
		return DraftView{}, err
	}

	for _, op := range accepted {
		s.draft.ops[op.OpID()] = op
	}

	s.enterSim(2)
	return s.DraftSnapshot(), nil
}

// StageAllocations merges a page-3 patch into the pending allocation
// weights. Weights must be non-negative; normalization to sum 1.0
// happens when the commit pipeline applies the page.
func (s *Session) StageAllocations(patch valueobjects.Allocations) (DraftView, error) {
	if err := patch.Validate(); err != nil {
		return DraftView{}, err
	}

	if s.draft.allocations == nil {
		s.draft.allocations = valueobjects.NewAllocations()
	}
	s.draft.allocations = s.draft.allocations.Merge(patch)

	s.enterSim(3)
	return s.DraftSnapshot(), nil
}

// Commit applies the pending draft to the session in the fixed stage
// order 3 -> 1 -> 2, recomputes the derived measures, rehashes the
// state and clears the draft. Commit is total over valid draft states:
// all rejection happened at staging time. Committing an empty draft is
// a harmless re-hash of current state.
func (s *Session) Commit() (CommitResult, error) {
	steps := make([]string, 0, 5)

	// Stage 3: the normalized pending weights replace the committed
	// allocation record outright; there is no merge with the prior
	// committed value.
	if s.draft.allocations != nil {
		s.allocations = s.draft.allocations.Normalized()
	}
	steps = append(steps, "stage3:allocations")

	// Stage 1: scalar modifiers.
	if s.draft.massMod != nil {
		s.massMod = *s.draft.massMod
	}
	if s.draft.volumeOverride != nil {
		v := *s.draft.volumeOverride
		s.volumeOverride = &v
	}
	steps = append(steps, "stage1:scalars")

	// Stage 2: graph ops in canonical (t_ms, op_id) order.
	ops := make([]valueobjects.NodeOp, 0, len(s.draft.ops))
	for _, op := range s.draft.ops {
		ops = append(ops, op)
	}
	valueobjects.SortOpsCanonical(ops)
	for _, op := range ops {
		s.graph.Apply(op)
	}
	s.graph.PruneDanglingEdges()
	steps = append(steps, fmt.Sprintf("stage2:ops=%d", len(ops)))

	s.measures = s.graph.ComputeMeasures(s.massMod, s.volumeOverride)
	steps = append(steps, "measures")

	hash, err := s.rehash()
	if err != nil {
		return CommitResult{}, err
	}
	s.stateHash = hash
	steps = append(steps, "hash")

	s.draft = newDraftBuffer()
	s.mode = ModeLive

	s.addEvent(events.NewSessionCommitted(s.id.String(), s.stateHash, len(ops), time.Now()))

	return CommitResult{
		StateHash:       s.stateHash,
		ProcessingSteps: steps,
		Mode:            s.mode,
	}, nil
}

// DraftSnapshot returns a view of the pending draft
func (s *Session) DraftSnapshot() DraftView {
	view := DraftView{Mode: s.mode}

	if s.draft.massMod != nil || s.draft.volumeOverride != nil {
		view.Page1 = &ScalarsView{
			MassMod:        s.draft.massMod,
			VolumeOverride: s.draft.volumeOverride,
		}
	}

	if len(s.draft.ops) > 0 {
		ops := make([]valueobjects.NodeOp, 0, len(s.draft.ops))
		for _, op := range s.draft.ops {
			ops = append(ops, op)
		}
		valueobjects.SortOpsCanonical(ops)
		view.Page2 = make([]OpView, 0, len(ops))
		for _, op := range ops {
			view.Page2 = append(view.Page2, opView(op))
		}
	}

	if s.draft.allocations != nil {
		view.Page3 = s.draft.allocations.Copy()
	}

	return view
}

// StateSnapshot returns the full session state
func (s *Session) StateSnapshot() Snapshot {
	return Snapshot{
		SessionID:      s.id.String(),
		Mode:           s.mode,
		Draft:          s.DraftSnapshot(),
		Nodes:          s.graph.SortedNodes(),
		Edges:          s.graph.SortedEdges(),
		Allocations:    s.allocations.Copy(),
		MassMod:        s.massMod,
		VolumeOverride: s.volumeOverride,
		Measures:       s.measures,
		StateHash:      s.stateHash,
	}
}

// GetUncommittedEvents returns all uncommitted domain events
func (s *Session) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (s *Session) MarkEventsAsCommitted() {
	s.events = []events.DomainEvent{}
}

// Private helper methods

func (s *Session) enterSim(page int) {
	s.mode = ModeSim
	s.addEvent(events.NewDraftStaged(s.id.String(), page, time.Now()))
}

func (s *Session) rehash() (string, error) {
	return s.hasher.HashState(
		s.graph.SortedNodes(),
		s.graph.SortedEdges(),
		s.allocations,
		s.massMod,
		s.volumeOverride,
		s.measures,
	)
}

func (s *Session) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}

func opView(op valueobjects.NodeOp) OpView {
	view := OpView{
		Type: string(op.Type()),
		OpID: op.OpID(),
		TMs:  op.TMillis(),
	}

	switch v := op.(type) {
	case valueobjects.NodeCreate:
		view.NodeID = v.NodeID
		view.Mass = v.Mass
		view.Sigma = v.Sigma
		view.Density = v.Density
		view.NodeType = v.NodeType
	case valueobjects.NodeDelete:
		view.NodeID = v.NodeID
	case valueobjects.NodeMassScale:
		view.NodeID = v.NodeID
		view.Scale = v.Scale
	case valueobjects.EdgeWeightSet:
		view.A = v.A
		view.B = v.B
		view.Flow = v.Flow
	}

	return view
}
