package flowgraph

import "errors"

// ErrCycleDetected is returned by Layers when the flow loops back on itself.
var ErrCycleDetected = errors.New("flowgraph: cycle detected, flow is not acyclic")

// Layout spacing used by Arrange, in design units.
const (
	ColumnGap = 60.0
	LayerGap  = 80.0
)

// Layers groups node ids by journey depth: a node sits one layer below the
// deepest node that leads into it. Nodes keep their graph order within a
// layer. Edges whose endpoints are missing are ignored. When the flow has a
// cycle, the nodes on or behind it are returned as a final layer together
// with ErrCycleDetected. A repeated node id is laid out once, at its first
// occurrence.
func Layers(g Graph) ([][]string, error) {
	indegree := make(map[string]int, len(g.Nodes))
	var order []string
	for _, n := range g.Nodes {
		if _, dup := indegree[n.ID]; dup {
			continue
		}
		indegree[n.ID] = 0
		order = append(order, n.ID)
	}
	adj := make(map[string][]string)
	for _, e := range g.Edges {
		_, fromOK := indegree[e.From]
		_, toOK := indegree[e.To]
		if !fromOK || !toOK {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		indegree[e.To]++
	}

	var layers [][]string
	placed := make(map[string]bool, len(g.Nodes))
	var current []string
	for _, id := range order {
		if indegree[id] == 0 {
			current = append(current, id)
		}
	}
	for len(current) > 0 {
		layers = append(layers, current)
		ready := make(map[string]bool)
		for _, id := range current {
			placed[id] = true
			for _, next := range adj[id] {
				indegree[next]--
				if indegree[next] == 0 {
					ready[next] = true
				}
			}
		}
		current = nil
		for _, id := range order {
			if ready[id] {
				current = append(current, id)
			}
		}
	}

	if len(placed) == len(order) {
		return layers, nil
	}
	var rest []string
	for _, id := range order {
		if !placed[id] {
			rest = append(rest, id)
		}
	}
	return append(layers, rest), ErrCycleDetected
}

// Arrange computes tidy positions: one row per layer, rows stacked downward
// from origin and centred on the column of a node placed at origin.
func Arrange(g Graph, origin Point) map[string]Point {
	layers, _ := Layers(g)
	positions := make(map[string]Point, len(g.Nodes))
	for row, ids := range layers {
		y := origin.Y + float64(row)*(NodeHeight+LayerGap)
		width := float64(len(ids))*NodeWidth + float64(len(ids)-1)*ColumnGap
		left := origin.X - width/2 + NodeWidth/2
		for col, id := range ids {
			positions[id] = Point{X: left + float64(col)*(NodeWidth+ColumnGap), Y: y}
		}
	}
	return positions
}
