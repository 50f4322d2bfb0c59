package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayers_Branching(t *testing.T) {
	g := branchGraph(t, newTestReducer())

	layers, err := Layers(g)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"T"}, {"C"}, {"A", "B"}}, layers)
}

func TestLayers_NodeSitsBelowDeepestParent(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "t"}, {ID: "a"}, {ID: "b"}, {ID: "end"}},
		Edges: []Edge{
			{ID: "1", From: "t", To: "a"},
			{ID: "2", From: "a", To: "b"},
			{ID: "3", From: "t", To: "end"},
			{ID: "4", From: "b", To: "end"},
		},
	}

	layers, err := Layers(g)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"t"}, {"a"}, {"b"}, {"end"}}, layers)
}

func TestLayers_IgnoresDanglingEdges(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{{ID: "1", From: "ghost", To: "b"}, {ID: "2", From: "a", To: "missing"}},
	}

	layers, err := Layers(g)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, layers)
}

func TestLayers_Cycle(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "t"}, {ID: "a"}, {ID: "b"}},
		Edges: []Edge{
			{ID: "1", From: "t", To: "a"},
			{ID: "2", From: "a", To: "b"},
			{ID: "3", From: "b", To: "a"},
		},
	}

	layers, err := Layers(g)

	assert.ErrorIs(t, err, ErrCycleDetected)
	assert.Equal(t, [][]string{{"t"}, {"a", "b"}}, layers)
}

func TestLayers_RepeatedNodeID(t *testing.T) {
	g := branchGraph(t, newTestReducer())
	g.Nodes = append(g.Nodes, g.Nodes[2])

	layers, err := Layers(g)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"T"}, {"C"}, {"A", "B"}}, layers)
}

func TestLayers_Empty(t *testing.T) {
	layers, err := Layers(Graph{})

	require.NoError(t, err)
	assert.Empty(t, layers)
}

func TestArrange(t *testing.T) {
	g := branchGraph(t, newTestReducer())
	origin := Point{X: 400, Y: 60}

	pos := Arrange(g, origin)

	require.Len(t, pos, 4)
	assert.Equal(t, origin, pos["T"])
	assert.Equal(t, Point{X: 400, Y: 60 + NodeHeight + LayerGap}, pos["C"])

	rowY := 60 + 2*(NodeHeight+LayerGap)
	assert.Equal(t, rowY, pos["A"].Y)
	assert.Equal(t, rowY, pos["B"].Y)
	assert.Equal(t, NodeWidth+ColumnGap, pos["B"].X-pos["A"].X)
	assert.InDelta(t, origin.X, (pos["A"].X+pos["B"].X)/2, 1e-9, "row is centred")
}

func TestArrange_NoOverlapInRow(t *testing.T) {
	r := newTestReducer()
	var g Graph
	g = r.Apply(g, AddNode{ID: "t", Type: Trigger})
	for _, id := range []string{"a", "b", "c", "d"} {
		g = r.Apply(g, AddNode{ID: id, Type: AddTag})
		g = r.Apply(g, AddEdge{From: "t", To: id})
	}

	pos := Arrange(g, Origin)

	for _, id := range []string{"a", "b", "c"} {
		n := Node{X: pos[id].X, Y: pos[id].Y}
		next := map[string]string{"a": "b", "b": "c", "c": "d"}[id]
		assert.False(t, Bounds(n).Contains(pos[next]), "%s overlaps %s", id, next)
	}
}
