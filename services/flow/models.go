package flow

import (
	"encoding/json"
	"time"

	"campaign-flow/pkg/flowgraph"
)

// Flow is a persisted campaign flow with its graph of nodes and edges.
type Flow struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Nodes     []flowgraph.Node `json:"nodes"`
	Edges     []flowgraph.Edge `json:"edges"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Graph returns the flow's nodes and edges as a graph value.
func (f *Flow) Graph() flowgraph.Graph {
	return flowgraph.Graph{Nodes: f.Nodes, Edges: f.Edges}
}

// FlowSummary is one row of the flow list.
type FlowSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NodeCount int       `json:"nodeCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveFlowRequest is the body of create and replace requests.
type SaveFlowRequest struct {
	Name  string           `json:"name"`
	Nodes []flowgraph.Node `json:"nodes"`
	Edges []flowgraph.Edge `json:"edges"`
}

// CommandRequest carries editing commands applied in order, for example
// {"commands":[{"op":"add_node","type":"wait"}]}.
type CommandRequest struct {
	Commands []json.RawMessage `json:"commands"`
}

// CommandResponse reports the resulting flow and which commands changed it.
type CommandResponse struct {
	Flow    *Flow  `json:"flow"`
	Applied []bool `json:"applied"`
}

// LayersResponse is the journey layering of a flow and the tidy positions
// derived from it.
type LayersResponse struct {
	Layers    [][]string                 `json:"layers"`
	Positions map[string]flowgraph.Point `json:"positions"`
	Cycle     bool                       `json:"cycle"`
}

// ValidateResponse lists the issues found in a flow.
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Issues []flowgraph.Issue `json:"issues"`
}

// PreviewRequest configures a dry run. Branches picks the yes or no branch per
// condition node id; Contact fills email and SMS placeholders.
type PreviewRequest struct {
	Branches map[string]flowgraph.Handle `json:"branches"`
	Contact  map[string]string           `json:"contact"`
	Tags     []string                    `json:"tags"`
	Stage    string                      `json:"stage"`
}

// PreviewResults is the response of a dry run through a flow.
type PreviewResults struct {
	PreviewID         string        `json:"previewId"`
	Status            string        `json:"status"`
	Steps             []PreviewStep `json:"steps"`
	TotalDelay        string        `json:"totalDelay"`
	TotalDelaySeconds int64         `json:"totalDelaySeconds"`
	Contact           ContactState  `json:"contact"`
}

// PreviewStep describes what one node would do to the contact.
type PreviewStep struct {
	StepNumber     int              `json:"stepNumber"`
	NodeID         string           `json:"nodeId"`
	NodeType       string           `json:"nodeType"`
	Label          string           `json:"label"`
	Status         string           `json:"status"`
	Branch         flowgraph.Handle `json:"branch,omitempty"`
	ElapsedSeconds int64            `json:"elapsedSeconds"`
	Output         map[string]any   `json:"output"`
	Error          string           `json:"error,omitempty"`
}

// ContactState is the simulated contact at the end of a preview.
type ContactState struct {
	Tags  []string `json:"tags"`
	Stage string   `json:"stage,omitempty"`
}

// FieldsResponse lists the property fields of one node.
type FieldsResponse struct {
	NodeID string             `json:"nodeId"`
	Type   flowgraph.NodeType `json:"type"`
	Label  string             `json:"label"`
	Fields []flowgraph.Field  `json:"fields"`
}
