package versioning

import (
	"math"
	"testing"

	"simkernel/domain/config"
	"simkernel/domain/core/entities"
	"simkernel/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHasher() *StateHasher {
	return NewStateHasher(config.DefaultDomainConfig())
}

func baseState() ([]entities.Node, []entities.Edge, valueobjects.Allocations, valueobjects.Measures) {
	nodes := []entities.Node{
		{ID: "SELF", Mass: 1, Sigma: 1, Density: 1, Type: "self"},
		{ID: "x", Mass: 3, Sigma: 2, Density: 2, Type: "standard"},
	}
	edges := []entities.Edge{
		{A: "SELF", B: "x", Flow: 2},
	}
	allocations := valueobjects.NewUniformAllocations()
	measures := valueobjects.Measures{
		NodeCount: 2, EdgeCount: 1,
		TotalMass: 4, EffectiveMass: 4,
		Dispersion: 1.75, MeanDensity: 1.5,
		FlowTotal: 2, Volume: 4.0 / 1.5,
	}
	return nodes, edges, allocations, measures
}

func TestHashStateIsDeterministic(t *testing.T) {
	h := newHasher()
	nodes, edges, allocations, measures := baseState()

	first, err := h.HashState(nodes, edges, allocations, 0, nil, measures)
	require.NoError(t, err)
	second, err := h.HashState(nodes, edges, allocations, 0, nil, measures)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", first)
}

func TestHashStateSensitivity(t *testing.T) {
	h := newHasher()
	nodes, edges, allocations, measures := baseState()

	base, err := h.HashState(nodes, edges, allocations, 0, nil, measures)
	require.NoError(t, err)

	t.Run("node mass change", func(t *testing.T) {
		changed := make([]entities.Node, len(nodes))
		copy(changed, nodes)
		changed[1].Mass = 3.000000001

		hash, err := h.HashState(changed, edges, allocations, 0, nil, measures)
		require.NoError(t, err)
		assert.NotEqual(t, base, hash)
	})

	t.Run("mass modifier", func(t *testing.T) {
		hash, err := h.HashState(nodes, edges, allocations, 0.1, nil, measures)
		require.NoError(t, err)
		assert.NotEqual(t, base, hash)
	})

	t.Run("volume override present vs absent", func(t *testing.T) {
		override := measures.Volume
		hash, err := h.HashState(nodes, edges, allocations, 0, &override, measures)
		require.NoError(t, err)
		assert.NotEqual(t, base, hash)
	})

	t.Run("allocation weight", func(t *testing.T) {
		changed := allocations.Copy()
		changed[valueobjects.DirectionN] = 0.5
		hash, err := h.HashState(nodes, edges, changed, 0, nil, measures)
		require.NoError(t, err)
		assert.NotEqual(t, base, hash)
	})
}

func TestHashStateNegativeZero(t *testing.T) {
	h := newHasher()
	nodes, edges, allocations, measures := baseState()

	pos, err := h.HashState(nodes, edges, allocations, 0.0, nil, measures)
	require.NoError(t, err)

	negZero := math.Copysign(0, -1)
	neg, err := h.HashState(nodes, edges, allocations, negZero, nil, measures)
	require.NoError(t, err)

	assert.Equal(t, pos, neg)
}

func TestHashStateRoundsBeyondPrecision(t *testing.T) {
	h := newHasher()
	nodes, edges, allocations, measures := baseState()

	base, err := h.HashState(nodes, edges, allocations, 0, nil, measures)
	require.NoError(t, err)

	// differences beyond the fixed digit count do not change the hash
	hash, err := h.HashState(nodes, edges, allocations, 1e-12, nil, measures)
	require.NoError(t, err)
	assert.Equal(t, base, hash)
}
