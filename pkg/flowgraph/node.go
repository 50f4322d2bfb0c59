package flowgraph

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownNodeType is returned when decoding a node whose type is not in the
// closed set of node types.
var ErrUnknownNodeType = errors.New("flowgraph: unknown node type")

// NodeType identifies the kind of step a node represents.
type NodeType string

const (
	Trigger      NodeType = "trigger"
	SendEmail    NodeType = "send_email"
	SendSMS      NodeType = "send_sms"
	Wait         NodeType = "wait"
	Condition    NodeType = "condition"
	AddTag       NodeType = "add_tag"
	RemoveTag    NodeType = "remove_tag"
	MovePipeline NodeType = "move_pipeline"
	CreateTask   NodeType = "create_task"
	SendResource NodeType = "send_resource"
	SocialPost   NodeType = "social_post"
	Webhook      NodeType = "webhook"
	Notify       NodeType = "notify"
)

// NodeTypes lists every node type in palette order.
var NodeTypes = []NodeType{
	Trigger, SendEmail, SendSMS, Wait, Condition, AddTag, RemoveTag,
	MovePipeline, CreateTask, SendResource, SocialPost, Webhook, Notify,
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	_, err := zeroData(t)
	return err == nil
}

// Handle names an output port of a node.
type Handle string

const (
	HandleDefault Handle = "default"
	HandleYes     Handle = "yes"
	HandleNo      Handle = "no"
)

// OutputHandles returns the output ports a node of type t exposes.
func OutputHandles(t NodeType) []Handle {
	if t == Condition {
		return []Handle{HandleYes, HandleNo}
	}
	return []Handle{HandleDefault}
}

// HasInput reports whether nodes of type t render an input handle.
func HasInput(t NodeType) bool {
	return t != Trigger
}

// HasOutputHandle reports whether nodes of type t expose output h.
func HasOutputHandle(t NodeType, h Handle) bool {
	for _, candidate := range OutputHandles(t) {
		if candidate == h {
			return true
		}
	}
	return false
}

// EdgeLabel is the display text derived from an edge's source handle.
func EdgeLabel(h Handle) string {
	switch h {
	case HandleYes:
		return "Yes"
	case HandleNo:
		return "No"
	default:
		return ""
	}
}

// Node is a single step on the flow canvas. X and Y are the top-left corner
// in design units.
type Node struct {
	ID    string
	Type  NodeType
	X     float64
	Y     float64
	Data  NodeData
	Label string
}

// Position returns the node's top-left corner.
func (n Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

type nodeJSON struct {
	ID    string          `json:"id"`
	Type  NodeType        `json:"type"`
	X     float64         `json:"x"`
	Y     float64         `json:"y"`
	Data  json.RawMessage `json:"data"`
	Label string          `json:"label"`
}

// MarshalJSON encodes the node with its data object keyed by the node type.
func (n Node) MarshalJSON() ([]byte, error) {
	data := n.Data
	if data == nil {
		zero, err := zeroData(n.Type)
		if err != nil {
			return nil, err
		}
		data = zero
	}
	if data.Kind() != n.Type {
		return nil, fmt.Errorf("flowgraph: node %s has %s data for type %s", n.ID, data.Kind(), n.Type)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal node data: %w", err)
	}
	return json.Marshal(nodeJSON{ID: n.ID, Type: n.Type, X: n.X, Y: n.Y, Data: raw, Label: n.Label})
}

// UnmarshalJSON decodes a node, dispatching the data object on the node type.
func (n *Node) UnmarshalJSON(b []byte) error {
	var wire nodeJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	data, err := decodeData(wire.Type, wire.Data, false)
	if err != nil {
		return err
	}
	*n = Node{ID: wire.ID, Type: wire.Type, X: wire.X, Y: wire.Y, Data: data, Label: wire.Label}
	return nil
}

// Edge connects an output handle of one node to the input of another.
type Edge struct {
	ID         string `json:"id"`
	From       string `json:"from"`
	To         string `json:"to"`
	FromHandle Handle `json:"fromHandle"`
	Label      string `json:"label,omitempty"`
}

// Graph is the canonical flow: the nodes and edges owned by the host.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node looks up a node by id.
func (g Graph) Node(id string) (Node, bool) {
	if i := g.nodeIndex(id); i >= 0 {
		return g.Nodes[i], true
	}
	return Node{}, false
}

// Edge looks up an edge by id.
func (g Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Outgoing returns the edges leaving the node, in edge order.
func (g Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns the edges entering the node, in edge order.
func (g Graph) Incoming(id string) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.To == id {
			in = append(in, e)
		}
	}
	return in
}

// HasEdge reports whether an edge with the same endpoints and handle exists.
func (g Graph) HasEdge(from, to string, h Handle) bool {
	for _, e := range g.Edges {
		if e.From == from && e.To == to && e.FromHandle == h {
			return true
		}
	}
	return false
}

func (g Graph) nodeIndex(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone copies the node and edge slices so the result can be changed without
// touching the receiver's backing arrays.
func (g Graph) Clone() Graph {
	nodes := make([]Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)
	return Graph{Nodes: nodes, Edges: edges}
}
