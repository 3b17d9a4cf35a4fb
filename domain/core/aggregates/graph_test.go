package aggregates

import (
	"testing"

	"simkernel/domain/config"
	"simkernel/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph() *Graph {
	return NewGraph(config.DefaultDomainConfig())
}

func TestNewGraphSeedsRoot(t *testing.T) {
	g := newTestGraph()

	require.True(t, g.HasNode("SELF"))
	root, _ := g.GetNode("SELF")
	assert.Equal(t, 1.0, root.Mass)
	assert.Equal(t, "self", root.Type)
	assert.Equal(t, 1, g.NodeCount())
	assert.NoError(t, g.Validate())
}

func TestGraphApply(t *testing.T) {
	t.Run("create then re-create overwrites", func(t *testing.T) {
		g := newTestGraph()
		g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "1"}, NodeID: "x", Mass: 2, Sigma: 1, Density: 1, NodeType: "standard"})
		g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "2"}, NodeID: "x", Mass: 5, Sigma: 1, Density: 1, NodeType: "standard"})

		node, ok := g.GetNode("x")
		require.True(t, ok)
		assert.Equal(t, 5.0, node.Mass)
		assert.Equal(t, 2, g.NodeCount())
	})

	t.Run("delete cascades incident edges", func(t *testing.T) {
		g := newTestGraph()
		g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "1"}, NodeID: "x", Mass: 1, Sigma: 1, Density: 1, NodeType: "standard"})
		g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "2"}, A: "SELF", B: "x", Flow: 3})
		g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "3"}, A: "x", B: "SELF", Flow: 1})
		require.Equal(t, 2, g.EdgeCount())

		g.Apply(valueobjects.NodeDelete{OpMeta: valueobjects.OpMeta{ID: "4"}, NodeID: "x"})

		assert.False(t, g.HasNode("x"))
		assert.Equal(t, 0, g.EdgeCount())
		assert.NoError(t, g.Validate())
	})

	t.Run("root is protected from delete", func(t *testing.T) {
		g := newTestGraph()
		g.Apply(valueobjects.NodeDelete{OpMeta: valueobjects.OpMeta{ID: "1"}, NodeID: "SELF"})
		assert.True(t, g.HasNode("SELF"))
	})

	t.Run("scale on missing node is a no-op", func(t *testing.T) {
		g := newTestGraph()
		g.Apply(valueobjects.NodeMassScale{OpMeta: valueobjects.OpMeta{ID: "1"}, NodeID: "ghost", Scale: 2})
		assert.Equal(t, 1, g.NodeCount())
	})

	t.Run("edge weight set upserts", func(t *testing.T) {
		g := newTestGraph()
		g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "1"}, NodeID: "x", Mass: 1, Sigma: 1, Density: 1, NodeType: "standard"})
		g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "2"}, A: "SELF", B: "x", Flow: 3})
		g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "3"}, A: "SELF", B: "x", Flow: 7})

		require.Equal(t, 1, g.EdgeCount())
		assert.Equal(t, 7.0, g.SortedEdges()[0].Flow)
	})

	t.Run("edges whose endpoints concatenate alike stay distinct", func(t *testing.T) {
		g := newTestGraph()
		g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "1"}, NodeID: "x->", Mass: 1, Sigma: 1, Density: 1, NodeType: "standard"})
		g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "2"}, NodeID: "y", Mass: 1, Sigma: 1, Density: 1, NodeType: "standard"})
		g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "3"}, NodeID: "->y", Mass: 1, Sigma: 1, Density: 1, NodeType: "standard"})
		g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "4"}, A: "x->", B: "y", Flow: 1})
		g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "5"}, A: "x", B: "->y", Flow: 2})
		assert.Equal(t, 2, g.EdgeCount())
	})
}

func TestPruneDanglingEdges(t *testing.T) {
	g := newTestGraph()
	// an edge to a node that never existed survives Apply and is only
	// removed by the commit-time prune
	g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "1"}, A: "SELF", B: "ghost", Flow: 1})
	require.Equal(t, 1, g.EdgeCount())

	pruned := g.PruneDanglingEdges()
	assert.Equal(t, 1, pruned)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestComputeMeasures(t *testing.T) {
	g := newTestGraph()
	g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "1"}, NodeID: "x", Mass: 3, Sigma: 2, Density: 2, NodeType: "standard"})
	g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "2"}, A: "SELF", B: "x", Flow: 4})

	t.Run("derived scalars", func(t *testing.T) {
		m := g.ComputeMeasures(0, nil)

		assert.Equal(t, 2, m.NodeCount)
		assert.Equal(t, 1, m.EdgeCount)
		assert.InDelta(t, 4.0, m.TotalMass, 1e-12)
		// (1*1 + 3*2) / 4
		assert.InDelta(t, 1.75, m.Dispersion, 1e-12)
		// (1 + 2) / 2
		assert.InDelta(t, 1.5, m.MeanDensity, 1e-12)
		assert.InDelta(t, 4.0, m.FlowTotal, 1e-12)
		assert.InDelta(t, 4.0, m.EffectiveMass, 1e-12)
		// total_mass / mean_density
		assert.InDelta(t, 4.0/1.5, m.Volume, 1e-12)
	})

	t.Run("mass modifier scales effective mass", func(t *testing.T) {
		m := g.ComputeMeasures(0.5, nil)
		assert.InDelta(t, 6.0, m.EffectiveMass, 1e-12)
	})

	t.Run("volume override replaces derived volume", func(t *testing.T) {
		override := 42.0
		m := g.ComputeMeasures(0, &override)
		assert.Equal(t, 42.0, m.Volume)
	})
}

func TestSortedAccessorsAreOrdered(t *testing.T) {
	g := newTestGraph()
	g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "1"}, NodeID: "b", Mass: 1, Sigma: 1, Density: 1, NodeType: "standard"})
	g.Apply(valueobjects.NodeCreate{OpMeta: valueobjects.OpMeta{ID: "2"}, NodeID: "a", Mass: 1, Sigma: 1, Density: 1, NodeType: "standard"})
	g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "3"}, A: "b", B: "a", Flow: 1})
	g.Apply(valueobjects.EdgeWeightSet{OpMeta: valueobjects.OpMeta{ID: "4"}, A: "a", B: "b", Flow: 1})

	nodes := g.SortedNodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, "SELF", nodes[0].ID)
	assert.Equal(t, "a", nodes[1].ID)
	assert.Equal(t, "b", nodes[2].ID)

	edges := g.SortedEdges()
	require.Len(t, edges, 2)
	assert.Equal(t, "a", edges[0].A)
	assert.Equal(t, "b", edges[1].A)
}
