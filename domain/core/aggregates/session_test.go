package aggregates

import (
	"fmt"
	"testing"

	"simkernel/domain/config"
	"simkernel/domain/core/validators"
	"simkernel/domain/core/valueobjects"
	"simkernel/domain/versioning"
	pkgerrors "simkernel/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.DefaultDomainConfig()
	id, err := valueobjects.NewSessionID("sess-test")
	require.NoError(t, err)

	s, err := NewSession(id, cfg, validators.NewOpValidator(cfg), versioning.NewStateHasher(cfg))
	require.NoError(t, err)
	return s
}

func fp(f float64) *float64 { return &f }

func createOp(opID string, tMs int64, nodeID string, mass float64) validators.RawNodeOp {
	return validators.RawNodeOp{Type: "NODE_CREATE", OpID: opID, TMs: tMs, NodeID: nodeID, Mass: fp(mass)}
}

func TestNewSession(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, ModeSim, s.Mode())
	assert.Len(t, s.StateHash(), 64)
	assert.True(t, s.Graph().HasNode("SELF"))

	snap := s.StateSnapshot()
	assert.InDelta(t, 0.125, snap.Allocations[valueobjects.DirectionN], 1e-12)
	assert.Equal(t, 1, snap.Measures.NodeCount)
}

func TestStageScalars(t *testing.T) {
	t.Run("mass_mod is clamped not rejected", func(t *testing.T) {
		s := newTestSession(t)
		view := s.StageScalars(fp(0.8), nil)

		require.NotNil(t, view.Page1)
		require.NotNil(t, view.Page1.MassMod)
		assert.Equal(t, 0.5, *view.Page1.MassMod)
	})

	t.Run("omitted field leaves pending value alone", func(t *testing.T) {
		s := newTestSession(t)
		s.StageScalars(fp(0.2), nil)
		view := s.StageScalars(nil, fp(10))

		assert.Equal(t, 0.2, *view.Page1.MassMod)
		assert.Equal(t, 10.0, *view.Page1.VolumeOverride)
	})
}

func TestStageOps(t *testing.T) {
	t.Run("restaging an op_id is a no-op", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.StageOps([]validators.RawNodeOp{createOp("op-1", 10, "x", 2)})
		require.NoError(t, err)

		view, err := s.StageOps([]validators.RawNodeOp{createOp("op-1", 10, "x", 99)})
		require.NoError(t, err)
		require.Len(t, view.Page2, 1)
		assert.Equal(t, 2.0, view.Page2[0].Mass)
	})

	t.Run("rejected batch leaves draft untouched", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.StageOps([]validators.RawNodeOp{createOp("op-1", 10, "x", 2)})
		require.NoError(t, err)

		_, err = s.StageOps([]validators.RawNodeOp{
			createOp("op-2", 20, "y", 1),
			{Type: "BOGUS", OpID: "op-3"},
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidEnum))

		view := s.DraftSnapshot()
		require.Len(t, view.Page2, 1)
		assert.Equal(t, "op-1", view.Page2[0].OpID)
	})

	t.Run("capacity overflow is rejected whole", func(t *testing.T) {
		s := newTestSession(t)
		raw := make([]validators.RawNodeOp, 201)
		for i := range raw {
			raw[i] = createOp(fmt.Sprintf("op-%03d", i), int64(i), "x", 1)
		}

		_, err := s.StageOps(raw)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeTooManyOps))
		assert.Empty(t, s.DraftSnapshot().Page2)
	})
}

func TestCommit(t *testing.T) {
	t.Run("applies pages, clears draft and goes LIVE", func(t *testing.T) {
		s := newTestSession(t)

		s.StageScalars(fp(0.1), nil)
		_, err := s.StageOps([]validators.RawNodeOp{
			createOp("op-1", 10, "x", 3),
			{Type: "EDGE_WEIGHT_SET", OpID: "op-2", TMs: 20, A: "SELF", B: "x", Flow: fp(2)},
		})
		require.NoError(t, err)
		_, err = s.StageAllocations(valueobjects.Allocations{valueobjects.DirectionN: 1, valueobjects.DirectionS: 3})
		require.NoError(t, err)

		result, err := s.Commit()
		require.NoError(t, err)

		assert.Equal(t, ModeLive, result.Mode)
		assert.Len(t, result.StateHash, 64)
		assert.Equal(t, []string{
			"stage3:allocations",
			"stage1:scalars",
			"stage2:ops=2",
			"measures",
			"hash",
		}, result.ProcessingSteps)

		snap := s.StateSnapshot()
		assert.Equal(t, ModeLive, snap.Mode)
		assert.Empty(t, snap.Draft.Page2)
		assert.Nil(t, snap.Draft.Page1)
		assert.Equal(t, 0.1, snap.MassMod)
		assert.InDelta(t, 0.25, snap.Allocations[valueobjects.DirectionN], 1e-12)
		assert.InDelta(t, 0.75, snap.Allocations[valueobjects.DirectionS], 1e-12)
		assert.InDelta(t, 0, snap.Allocations[valueobjects.DirectionE], 1e-12)
		assert.Equal(t, 2, snap.Measures.NodeCount)
		assert.Equal(t, 1, snap.Measures.EdgeCount)
	})

	t.Run("empty commit re-hashes to the same state", func(t *testing.T) {
		s := newTestSession(t)
		first, err := s.Commit()
		require.NoError(t, err)

		second, err := s.Commit()
		require.NoError(t, err)

		assert.Equal(t, first.StateHash, second.StateHash)
		assert.Equal(t, ModeLive, s.Mode())
	})

	t.Run("staging after commit returns to SIM", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.Commit()
		require.NoError(t, err)
		require.Equal(t, ModeLive, s.Mode())

		s.StageScalars(fp(0.1), nil)
		assert.Equal(t, ModeSim, s.Mode())
	})

	t.Run("op order at commit follows (t_ms, op_id) not submission", func(t *testing.T) {
		batchA := []validators.RawNodeOp{
			createOp("b-create", 10, "x", 2),
			{Type: "NODE_MASS_SCALE", OpID: "c-scale", TMs: 20, NodeID: "x", Scale: fp(3)},
		}
		batchB := []validators.RawNodeOp{
			{Type: "NODE_MASS_SCALE", OpID: "c-scale", TMs: 20, NodeID: "x", Scale: fp(3)},
			createOp("b-create", 10, "x", 2),
		}

		s1 := newTestSession(t)
		_, err := s1.StageOps(batchA)
		require.NoError(t, err)
		r1, err := s1.Commit()
		require.NoError(t, err)

		s2 := newTestSession(t)
		_, err = s2.StageOps(batchB)
		require.NoError(t, err)
		r2, err := s2.Commit()
		require.NoError(t, err)

		assert.Equal(t, r1.StateHash, r2.StateHash)

		node, ok := s1.Graph().GetNode("x")
		require.True(t, ok)
		assert.Equal(t, 6.0, node.Mass)
	})

	t.Run("identical histories produce identical hashes", func(t *testing.T) {
		run := func() string {
			s := newTestSession(t)
			s.StageScalars(fp(0.2), fp(12))
			_, err := s.StageOps([]validators.RawNodeOp{
				createOp("op-1", 10, "a", 1),
				createOp("op-2", 10, "b", 2),
				{Type: "EDGE_WEIGHT_SET", OpID: "op-3", TMs: 30, A: "a", B: "b", Flow: fp(0.5)},
			})
			require.NoError(t, err)
			result, err := s.Commit()
			require.NoError(t, err)
			return result.StateHash
		}

		assert.Equal(t, run(), run())
	})

	t.Run("delete cascades and SELF survives", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.StageOps([]validators.RawNodeOp{
			createOp("op-1", 10, "x", 2),
			{Type: "EDGE_WEIGHT_SET", OpID: "op-2", TMs: 20, A: "SELF", B: "x", Flow: fp(1)},
			{Type: "NODE_DELETE", OpID: "op-3", TMs: 30, NodeID: "x"},
			{Type: "NODE_DELETE", OpID: "op-4", TMs: 40, NodeID: "SELF"},
		})
		require.NoError(t, err)

		_, err = s.Commit()
		require.NoError(t, err)

		assert.True(t, s.Graph().HasNode("SELF"))
		assert.False(t, s.Graph().HasNode("x"))
		assert.Equal(t, 0, s.Graph().EdgeCount())
	})

	t.Run("committed allocations are replaced not merged", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.StageAllocations(valueobjects.Allocations{valueobjects.DirectionN: 1})
		require.NoError(t, err)
		_, err = s.Commit()
		require.NoError(t, err)
		require.InDelta(t, 1.0, s.StateSnapshot().Allocations[valueobjects.DirectionN], 1e-12)

		_, err = s.StageAllocations(valueobjects.Allocations{valueobjects.DirectionE: 1})
		require.NoError(t, err)
		_, err = s.Commit()
		require.NoError(t, err)

		snap := s.StateSnapshot()
		assert.InDelta(t, 1.0, snap.Allocations[valueobjects.DirectionE], 1e-12)
		assert.InDelta(t, 0, snap.Allocations[valueobjects.DirectionN], 1e-12)
	})
}

func TestDomainEvents(t *testing.T) {
	s := newTestSession(t)

	s.StageScalars(fp(0.1), nil)
	_, err := s.Commit()
	require.NoError(t, err)

	pending := s.GetUncommittedEvents()
	require.Len(t, pending, 2)
	assert.Equal(t, "session.draft_staged", pending[0].GetEventType())
	assert.Equal(t, "session.committed", pending[1].GetEventType())

	s.MarkEventsAsCommitted()
	assert.Empty(t, s.GetUncommittedEvents())
}
