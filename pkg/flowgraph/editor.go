package flowgraph

import (
	"log/slog"
	"strconv"

	"github.com/google/uuid"
)

// Mode is the pointer interaction state of an Editor.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDraggingNode
	ModeConnecting
)

func (m Mode) String() string {
	switch m {
	case ModeDraggingNode:
		return "dragging"
	case ModeConnecting:
		return "connecting"
	default:
		return "idle"
	}
}

// ChangeFunc receives the complete graph after every mutation.
type ChangeFunc func(nodes []Node, edges []Edge)

// EditorOptions configures an Editor.
type EditorOptions struct {
	Catalog     *Catalog
	OnChange    ChangeFunc
	TeamMembers []TeamMember
	ReadOnly    bool
	// NewID generates node and edge ids. Defaults to uuid.NewString.
	NewID  func() string
	Logger *slog.Logger
}

// PendingDelete is a destructive action waiting for confirmation.
type PendingDelete struct {
	NodeID string
	EdgeID string
}

type dragState struct {
	nodeID string
	offset Point
}

type connectState struct {
	fromID string
	handle Handle
	cursor Point
}

// Editor is the interaction layer of the flow canvas. It never owns the graph:
// the host passes the current nodes and edges through SetGraph and receives
// every change through OnChange. The editor keeps only selection, pointer
// state, the viewport and pending confirmations.
type Editor struct {
	catalog  *Catalog
	reducer  *Reducer
	onChange ChangeFunc
	team     []TeamMember
	readOnly bool
	newID    func() string
	log      *slog.Logger

	graph    Graph
	selected string
	mode     Mode
	drag     dragState
	conn     connectState
	view     Viewport
	pending  *PendingDelete
}

// NewEditor creates an Editor over an empty graph.
func NewEditor(opts EditorOptions) *Editor {
	if opts.Catalog == nil {
		opts.Catalog = NewCatalog("")
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Editor{
		catalog:  opts.Catalog,
		reducer:  NewReducer(opts.Catalog, WithIDGenerator(opts.NewID)),
		onChange: opts.OnChange,
		team:     opts.TeamMembers,
		readOnly: opts.ReadOnly,
		newID:    opts.NewID,
		log:      opts.Logger,
		view:     DefaultViewport(),
	}
}

// SetGraph replaces the nodes and edges the editor displays. Transient state
// that refers to nodes or edges no longer present is dropped.
func (e *Editor) SetGraph(nodes []Node, edges []Edge) {
	e.graph = Graph{Nodes: nodes, Edges: edges}
	if _, ok := e.graph.Node(e.selected); !ok {
		e.selected = ""
	}
	switch e.mode {
	case ModeDraggingNode:
		if _, ok := e.graph.Node(e.drag.nodeID); !ok {
			e.resetPointer()
		}
	case ModeConnecting:
		if _, ok := e.graph.Node(e.conn.fromID); !ok {
			e.resetPointer()
		}
	}
	if e.pending != nil {
		_, nodeOK := e.graph.Node(e.pending.NodeID)
		_, edgeOK := e.graph.Edge(e.pending.EdgeID)
		if !nodeOK && !edgeOK {
			e.pending = nil
		}
	}
}

// SetTeamMembers replaces the people offered by assignee and recipient fields.
func (e *Editor) SetTeamMembers(team []TeamMember) { e.team = team }

// SetReadOnly toggles the view-only mode. Entering it abandons any drag or
// connection in progress.
func (e *Editor) SetReadOnly(readOnly bool) {
	e.readOnly = readOnly
	if readOnly {
		e.resetPointer()
		e.pending = nil
	}
}

func (e *Editor) ReadOnly() bool { return e.readOnly }

func (e *Editor) Graph() Graph { return e.graph }

func (e *Editor) Mode() Mode { return e.mode }

func (e *Editor) Viewport() Viewport { return e.view }

func (e *Editor) Catalog() *Catalog { return e.catalog }

// Selected returns the selected node, if any.
func (e *Editor) Selected() (Node, bool) {
	if e.selected == "" {
		return Node{}, false
	}
	return e.graph.Node(e.selected)
}

// SelectedID returns the id of the selected node, which may not be in the
// graph yet if the host has not echoed the change back.
func (e *Editor) SelectedID() string { return e.selected }

// Pending returns the destructive action awaiting confirmation.
func (e *Editor) Pending() (PendingDelete, bool) {
	if e.pending == nil {
		return PendingDelete{}, false
	}
	return *e.pending, true
}

func (e *Editor) dispatch(cmd Command) bool {
	next, changed := e.reducer.Reduce(e.graph, cmd)
	if !changed {
		e.log.Debug("Flow command ignored", "command", commandName(cmd))
		return false
	}
	if e.onChange != nil {
		e.onChange(next.Nodes, next.Edges)
	}
	return true
}

func (e *Editor) resetPointer() {
	e.mode = ModeIdle
	e.drag = dragState{}
	e.conn = connectState{}
}

// AddNode creates a node from the palette and selects it. A nil at uses the
// fallback slot below the last node. It returns the new node's id, or "" when
// nothing was added.
func (e *Editor) AddNode(t NodeType, at *Point) string {
	if e.readOnly {
		return ""
	}
	id := e.newID()
	if !e.dispatch(AddNode{ID: id, Type: t, At: at}) {
		return ""
	}
	e.selected = id
	return id
}

// PointerDownNode starts dragging a node from its body and selects it.
func (e *Editor) PointerDownNode(id string, screen Point) {
	if e.mode != ModeIdle {
		return
	}
	n, ok := e.graph.Node(id)
	if !ok {
		return
	}
	e.selected = id
	if e.readOnly {
		return
	}
	e.mode = ModeDraggingNode
	e.drag = dragState{nodeID: id, offset: e.view.ToCanvas(screen).Sub(n.Position())}
}

// PointerDownHandle starts a connection from one of a node's output handles.
func (e *Editor) PointerDownHandle(id string, h Handle, screen Point) {
	if e.readOnly || e.mode != ModeIdle {
		return
	}
	n, ok := e.graph.Node(id)
	if !ok {
		return
	}
	if !HasOutputHandle(n.Type, h) {
		e.log.Debug("Handle not available on node", "id", id, "type", n.Type, "handle", h)
		return
	}
	e.mode = ModeConnecting
	e.conn = connectState{fromID: id, handle: h, cursor: e.view.ToCanvas(screen)}
}

// PointerMove follows the pointer: a dragged node moves with it and an open
// connection's loose end tracks it.
func (e *Editor) PointerMove(screen Point) {
	p := e.view.ToCanvas(screen)
	switch e.mode {
	case ModeDraggingNode:
		pos := p.Sub(e.drag.offset)
		e.dispatch(MoveNode{ID: e.drag.nodeID, X: pos.X, Y: pos.Y})
	case ModeConnecting:
		e.conn.cursor = p
	}
}

// PointerUp ends a drag, or completes a connection onto the first node under
// the pointer. Releasing a connection anywhere else drops it.
func (e *Editor) PointerUp(screen Point) {
	defer e.resetPointer()
	if e.mode != ModeConnecting {
		return
	}
	p := e.view.ToCanvas(screen)
	target, ok := NodeAt(e.graph.Nodes, p, e.conn.fromID)
	if !ok {
		e.log.Debug("Connection dropped", "from", e.conn.fromID, "x", p.X, "y", p.Y)
		return
	}
	e.dispatch(AddEdge{ID: e.newID(), From: e.conn.fromID, To: target.ID, Handle: e.conn.handle})
}

// Cancel abandons any drag or connection in progress.
func (e *Editor) Cancel() { e.resetPointer() }

// ClickNode selects a node and opens its properties.
func (e *Editor) ClickNode(id string) {
	if _, ok := e.graph.Node(id); ok {
		e.selected = id
	}
}

// ClickCanvas clears the selection when the pointer is idle.
func (e *Editor) ClickCanvas() {
	if e.mode == ModeIdle {
		e.selected = ""
	}
}

// CloseProperties clears the selection.
func (e *Editor) CloseProperties() { e.selected = "" }

// EdgeAt returns the edge whose hit stroke lies under the screen point.
func (e *Editor) EdgeAt(screen Point) (Edge, bool) {
	p := e.view.ToCanvas(screen)
	for _, edge := range e.graph.Edges {
		c, ok := EdgeCurve(e.graph.Nodes, edge)
		if !ok {
			continue
		}
		if c.DistanceTo(p) <= EdgeHitWidth/2 {
			return edge, true
		}
	}
	return Edge{}, false
}

// ClickEdge asks for confirmation before deleting an edge.
func (e *Editor) ClickEdge(id string) bool {
	if e.readOnly {
		return false
	}
	if _, ok := e.graph.Edge(id); !ok {
		return false
	}
	e.pending = &PendingDelete{EdgeID: id}
	return true
}

// RequestDeleteNode asks for confirmation before deleting a node.
func (e *Editor) RequestDeleteNode(id string) bool {
	if e.readOnly {
		return false
	}
	if _, ok := e.graph.Node(id); !ok {
		return false
	}
	e.pending = &PendingDelete{NodeID: id}
	return true
}

// ConfirmDelete performs the pending deletion.
func (e *Editor) ConfirmDelete() bool {
	if e.pending == nil || e.readOnly {
		return false
	}
	p := *e.pending
	e.pending = nil
	if p.NodeID != "" {
		if e.selected == p.NodeID {
			e.selected = ""
		}
		if e.drag.nodeID == p.NodeID || e.conn.fromID == p.NodeID {
			e.resetPointer()
		}
		return e.dispatch(DeleteNode{ID: p.NodeID})
	}
	return e.dispatch(DeleteEdge{ID: p.EdgeID})
}

// CancelDelete discards the pending deletion.
func (e *Editor) CancelDelete() { e.pending = nil }

// SetField edits one property of the selected node. The raw input is
// converted according to the field's kind; unacceptable input is ignored.
func (e *Editor) SetField(key, raw string) bool {
	if e.readOnly {
		return false
	}
	n, ok := e.Selected()
	if !ok {
		return false
	}
	f, ok := FieldByKey(Fields(n, e.team), key)
	if !ok {
		return false
	}
	value, ok := ParseFieldValue(f, raw)
	if !ok {
		e.log.Debug("Field value rejected", "id", n.ID, "key", key)
		return false
	}
	if iv, isInt := value.(int); (isInt && strconv.Itoa(iv) == f.Value) || value == f.Value {
		return false
	}
	return e.dispatch(UpdateNodeData{ID: n.ID, Patch: fieldPatch(n, key, value)})
}

// SetLabel renames the selected node.
func (e *Editor) SetLabel(label string) bool {
	if e.readOnly || e.selected == "" {
		return false
	}
	return e.dispatch(UpdateNodeLabel{ID: e.selected, Label: label})
}

// Fields returns the property fields of the selected node.
func (e *Editor) Fields() []Field {
	n, ok := e.Selected()
	if !ok {
		return nil
	}
	return Fields(n, e.team)
}

// Arrange lays the flow out by journey layer.
func (e *Editor) Arrange() bool {
	if e.readOnly {
		return false
	}
	return e.dispatch(ReplacePositions{Positions: Arrange(e.graph, Origin)})
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom].
func (e *Editor) SetZoom(z float64) { e.view = e.view.WithZoom(z) }

// ZoomAt zooms around a screen point.
func (e *Editor) ZoomAt(anchor Point, z float64) { e.view = e.view.ZoomAt(anchor, z) }

// PanBy scrolls the canvas by a screen-space delta.
func (e *Editor) PanBy(dx, dy float64) { e.view = e.view.PanBy(dx, dy) }

// ResetView returns to the default viewport.
func (e *Editor) ResetView() { e.view = DefaultViewport() }

// Connector is a drawable edge.
type Connector struct {
	EdgeID string `json:"edgeId"`
	Curve  Curve  `json:"curve"`
	Path   string `json:"path"`
	Label  string `json:"label,omitempty"`
	// LabelAt is where the label is drawn.
	LabelAt Point `json:"labelAt"`
}

// Connectors projects every edge whose endpoints exist.
func (e *Editor) Connectors() []Connector {
	out := make([]Connector, 0, len(e.graph.Edges))
	for _, edge := range e.graph.Edges {
		c, ok := EdgeCurve(e.graph.Nodes, edge)
		if !ok {
			continue
		}
		out = append(out, Connector{
			EdgeID:  edge.ID,
			Curve:   c,
			Path:    c.Path(),
			Label:   edge.Label,
			LabelAt: c.Midpoint(),
		})
	}
	return out
}

// RubberBand is the curve from the source handle to the pointer while a
// connection is open.
func (e *Editor) RubberBand() (Curve, bool) {
	if e.mode != ModeConnecting {
		return Curve{}, false
	}
	n, ok := e.graph.Node(e.conn.fromID)
	if !ok {
		return Curve{}, false
	}
	return NewCurve(HandlePos(n, Anchor(e.conn.handle)), e.conn.cursor), true
}

func commandName(cmd Command) string {
	switch cmd.(type) {
	case AddNode:
		return "add_node"
	case UpdateNodeData:
		return "update_node_data"
	case UpdateNodeLabel:
		return "update_node_label"
	case MoveNode:
		return "move_node"
	case DeleteNode:
		return "delete_node"
	case AddEdge:
		return "add_edge"
	case DeleteEdge:
		return "delete_edge"
	case ReplacePositions:
		return "replace_positions"
	}
	return "unknown"
}
