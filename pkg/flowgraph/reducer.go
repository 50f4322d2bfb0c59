package flowgraph

import "github.com/google/uuid"

// Command is one editing operation on a Graph.
type Command interface {
	command()
}

// AddNode creates a node of Type with the catalog defaults. A nil At places the
// node below the last node in the graph. An empty ID is generated.
type AddNode struct {
	ID   string
	Type NodeType
	At   *Point
}

// UpdateNodeData shallow-merges Patch into the node's data.
type UpdateNodeData struct {
	ID    string
	Patch map[string]any
}

type UpdateNodeLabel struct {
	ID    string
	Label string
}

// MoveNode sets a node's top-left corner.
type MoveNode struct {
	ID string
	X  float64
	Y  float64
}

// DeleteNode removes a node and every edge touching it.
type DeleteNode struct {
	ID string
}

// AddEdge connects From's Handle output to To. An empty ID is generated.
type AddEdge struct {
	ID     string
	From   string
	To     string
	Handle Handle
}

type DeleteEdge struct {
	ID string
}

// ReplacePositions moves every listed node at once.
type ReplacePositions struct {
	Positions map[string]Point
}

func (AddNode) command()          {}
func (UpdateNodeData) command()   {}
func (UpdateNodeLabel) command()  {}
func (MoveNode) command()         {}
func (DeleteNode) command()       {}
func (AddEdge) command()          {}
func (DeleteEdge) command()       {}
func (ReplacePositions) command() {}

// Origin is where the first node of an empty graph is placed.
var Origin = Point{X: 100, Y: 60}

// Reducer applies commands to graphs. It never modifies the slices of the
// graph it is given; rejected commands return the input unchanged.
type Reducer struct {
	catalog *Catalog
	newID   func() string
}

// ReducerOption configures a Reducer.
type ReducerOption func(*Reducer)

// WithIDGenerator replaces the uuid generator used for nodes and edges
// created without an id.
func WithIDGenerator(fn func() string) ReducerOption {
	return func(r *Reducer) { r.newID = fn }
}

// NewReducer creates a Reducer that stamps new nodes from catalog.
func NewReducer(catalog *Catalog, opts ...ReducerOption) *Reducer {
	r := &Reducer{catalog: catalog, newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply returns the graph after cmd.
func (r *Reducer) Apply(g Graph, cmd Command) Graph {
	next, _ := r.Reduce(g, cmd)
	return next
}

// Reduce returns the graph after cmd and whether cmd changed anything.
func (r *Reducer) Reduce(g Graph, cmd Command) (Graph, bool) {
	switch c := cmd.(type) {
	case AddNode:
		return r.addNode(g, c)
	case UpdateNodeData:
		return updateNodeData(g, c)
	case UpdateNodeLabel:
		return updateNode(g, c.ID, func(n *Node) { n.Label = c.Label })
	case MoveNode:
		return updateNode(g, c.ID, func(n *Node) { n.X, n.Y = c.X, c.Y })
	case DeleteNode:
		return deleteNode(g, c.ID)
	case AddEdge:
		return r.addEdge(g, c)
	case DeleteEdge:
		return deleteEdge(g, c.ID)
	case ReplacePositions:
		return replacePositions(g, c.Positions)
	}
	return g, false
}

func (r *Reducer) addNode(g Graph, c AddNode) (Graph, bool) {
	entry, ok := r.catalog.Lookup(c.Type)
	if !ok {
		return g, false
	}
	id := c.ID
	if id == "" {
		id = r.newID()
	}
	if g.nodeIndex(id) >= 0 {
		return g, false
	}
	at := nextPosition(g)
	if c.At != nil {
		at = *c.At
	}
	next := g.Clone()
	next.Nodes = append(next.Nodes, Node{
		ID:    id,
		Type:  c.Type,
		X:     at.X,
		Y:     at.Y,
		Data:  entry.DefaultData(),
		Label: entry.Label,
	})
	return next, true
}

// nextPosition is the fallback slot for a node added without a position:
// directly below the last node.
func nextPosition(g Graph) Point {
	if len(g.Nodes) == 0 {
		return Origin
	}
	last := g.Nodes[len(g.Nodes)-1]
	return Point{X: last.X, Y: last.Y + NodeHeight + NodeGap}
}

func updateNodeData(g Graph, c UpdateNodeData) (Graph, bool) {
	i := g.nodeIndex(c.ID)
	if i < 0 || len(c.Patch) == 0 {
		return g, false
	}
	current := g.Nodes[i].Data
	if current == nil {
		zero, err := zeroData(g.Nodes[i].Type)
		if err != nil {
			return g, false
		}
		current = zero
	}
	merged, err := mergeData(current, c.Patch)
	if err != nil {
		return g, false
	}
	next := g.Clone()
	next.Nodes[i].Data = merged
	return next, true
}

func updateNode(g Graph, id string, fn func(*Node)) (Graph, bool) {
	i := g.nodeIndex(id)
	if i < 0 {
		return g, false
	}
	next := g.Clone()
	fn(&next.Nodes[i])
	return next, true
}

func deleteNode(g Graph, id string) (Graph, bool) {
	if g.nodeIndex(id) < 0 {
		return g, false
	}
	next := Graph{
		Nodes: make([]Node, 0, len(g.Nodes)-1),
		Edges: make([]Edge, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		if n.ID != id {
			next.Nodes = append(next.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if e.From != id && e.To != id {
			next.Edges = append(next.Edges, e)
		}
	}
	return next, true
}

func (r *Reducer) addEdge(g Graph, c AddEdge) (Graph, bool) {
	if c.Handle == "" {
		c.Handle = HandleDefault
	}
	if c.From == c.To {
		return g, false
	}
	from, ok := g.Node(c.From)
	if !ok {
		return g, false
	}
	if _, ok := g.Node(c.To); !ok {
		return g, false
	}
	if !HasOutputHandle(from.Type, c.Handle) {
		return g, false
	}
	if g.HasEdge(c.From, c.To, c.Handle) {
		return g, false
	}
	id := c.ID
	if id == "" {
		id = r.newID()
	}
	if _, exists := g.Edge(id); exists {
		return g, false
	}
	next := g.Clone()
	next.Edges = append(next.Edges, Edge{
		ID:         id,
		From:       c.From,
		To:         c.To,
		FromHandle: c.Handle,
		Label:      EdgeLabel(c.Handle),
	})
	return next, true
}

func deleteEdge(g Graph, id string) (Graph, bool) {
	if _, ok := g.Edge(id); !ok {
		return g, false
	}
	next := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, 0, len(g.Edges)-1),
	}
	copy(next.Nodes, g.Nodes)
	for _, e := range g.Edges {
		if e.ID != id {
			next.Edges = append(next.Edges, e)
		}
	}
	return next, true
}

func replacePositions(g Graph, positions map[string]Point) (Graph, bool) {
	if len(positions) == 0 {
		return g, false
	}
	next := g.Clone()
	changed := false
	for i := range next.Nodes {
		p, ok := positions[next.Nodes[i].ID]
		if !ok {
			continue
		}
		next.Nodes[i].X, next.Nodes[i].Y = p.X, p.Y
		changed = true
	}
	if !changed {
		return g, false
	}
	return next, true
}
