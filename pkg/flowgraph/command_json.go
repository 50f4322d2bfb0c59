package flowgraph

import (
	"encoding/json"
	"fmt"
)

// commandJSON is the wire form of a Command, discriminated by Op.
type commandJSON struct {
	Op        string           `json:"op"`
	ID        string           `json:"id,omitempty"`
	Type      NodeType         `json:"type,omitempty"`
	X         *float64         `json:"x,omitempty"`
	Y         *float64         `json:"y,omitempty"`
	Data      map[string]any   `json:"data,omitempty"`
	Label     string           `json:"label,omitempty"`
	From      string           `json:"from,omitempty"`
	To        string           `json:"to,omitempty"`
	Handle    Handle           `json:"handle,omitempty"`
	Positions map[string]Point `json:"positions,omitempty"`
}

// DecodeCommand parses a command such as
// {"op":"add_edge","from":"a","to":"b","handle":"yes"}.
func DecodeCommand(b []byte) (Command, error) {
	var w commandJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	switch w.Op {
	case "add_node":
		c := AddNode{ID: w.ID, Type: w.Type}
		if w.X != nil && w.Y != nil {
			c.At = &Point{X: *w.X, Y: *w.Y}
		}
		return c, nil
	case "update_node_data":
		return UpdateNodeData{ID: w.ID, Patch: w.Data}, nil
	case "update_node_label":
		return UpdateNodeLabel{ID: w.ID, Label: w.Label}, nil
	case "move_node":
		if w.X == nil || w.Y == nil {
			return nil, fmt.Errorf("move_node: x and y are required")
		}
		return MoveNode{ID: w.ID, X: *w.X, Y: *w.Y}, nil
	case "delete_node":
		return DeleteNode{ID: w.ID}, nil
	case "add_edge":
		return AddEdge{ID: w.ID, From: w.From, To: w.To, Handle: w.Handle}, nil
	case "delete_edge":
		return DeleteEdge{ID: w.ID}, nil
	case "replace_positions":
		return ReplacePositions{Positions: w.Positions}, nil
	}
	return nil, fmt.Errorf("unknown command op %q", w.Op)
}

// EncodeCommand is the inverse of DecodeCommand.
func EncodeCommand(cmd Command) ([]byte, error) {
	var w commandJSON
	switch c := cmd.(type) {
	case AddNode:
		w = commandJSON{Op: "add_node", ID: c.ID, Type: c.Type}
		if c.At != nil {
			w.X, w.Y = &c.At.X, &c.At.Y
		}
	case UpdateNodeData:
		w = commandJSON{Op: "update_node_data", ID: c.ID, Data: c.Patch}
	case UpdateNodeLabel:
		w = commandJSON{Op: "update_node_label", ID: c.ID, Label: c.Label}
	case MoveNode:
		w = commandJSON{Op: "move_node", ID: c.ID, X: &c.X, Y: &c.Y}
	case DeleteNode:
		w = commandJSON{Op: "delete_node", ID: c.ID}
	case AddEdge:
		w = commandJSON{Op: "add_edge", ID: c.ID, From: c.From, To: c.To, Handle: c.Handle}
	case DeleteEdge:
		w = commandJSON{Op: "delete_edge", ID: c.ID}
	case ReplacePositions:
		w = commandJSON{Op: "replace_positions", Positions: c.Positions}
	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
	return json.Marshal(w)
}
