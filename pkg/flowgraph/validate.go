package flowgraph

import (
	"errors"
	"fmt"
)

// Severity ranks validation issues.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a problem found in a flow. Validation is advisory: the editor
// accepts any graph, and issues are shown before a flow is activated.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	NodeID   string   `json:"nodeId,omitempty"`
	EdgeID   string   `json:"edgeId,omitempty"`
	Message  string   `json:"message"`
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks the structure and required fields of a flow.
func Validate(g Graph) []Issue {
	var issues []Issue
	add := func(sev Severity, code, nodeID, edgeID, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: sev, Code: code, NodeID: nodeID, EdgeID: edgeID,
			Message: fmt.Sprintf(format, args...),
		})
	}

	var triggers []string
	for _, n := range g.Nodes {
		if n.Type == Trigger {
			triggers = append(triggers, n.ID)
		}
	}
	if len(triggers) == 0 {
		add(SeverityError, "no_trigger", "", "", "flow has no trigger")
	}

	nodeIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if nodeIDs[n.ID] {
			add(SeverityError, "duplicate_node", n.ID, "", "node id %s is used more than once", n.ID)
		}
		nodeIDs[n.ID] = true
	}

	triples := make(map[[3]string]bool, len(g.Edges))
	for _, e := range g.Edges {
		triple := [3]string{e.From, e.To, string(e.FromHandle)}
		if triples[triple] {
			add(SeverityError, "duplicate_edge", "", e.ID, "edge %s repeats an existing connection", e.ID)
		}
		triples[triple] = true
		if e.Label != EdgeLabel(e.FromHandle) {
			add(SeverityWarning, "label_mismatch", "", e.ID, "edge %s is labelled %q but leaves the %s output", e.ID, e.Label, e.FromHandle)
		}

		from, fromOK := g.Node(e.From)
		to, toOK := g.Node(e.To)
		if !fromOK || !toOK {
			add(SeverityError, "dangling_edge", "", e.ID, "edge %s references a missing node", e.ID)
			continue
		}
		if !HasOutputHandle(from.Type, e.FromHandle) {
			add(SeverityError, "invalid_handle", from.ID, e.ID, "%s has no %q output", from.Label, e.FromHandle)
		}
		if !HasInput(to.Type) {
			add(SeverityError, "trigger_has_input", to.ID, e.ID, "trigger %s cannot have incoming connections", to.Label)
		}
	}

	for _, n := range g.Nodes {
		if n.Type == Condition {
			for _, h := range OutputHandles(Condition) {
				if !hasOutgoing(g, n.ID, h) {
					add(SeverityWarning, "missing_branch", n.ID, "", "%s has no %s branch", n.Label, EdgeLabel(h))
				}
			}
		}
		for _, key := range emptyRequired(n) {
			add(SeverityError, "empty_field", n.ID, "", "%s: %s is required", n.Label, key)
		}
	}

	reachable := reachableFrom(g, triggers)
	for _, n := range g.Nodes {
		if len(triggers) > 0 && !reachable[n.ID] {
			add(SeverityWarning, "unreachable", n.ID, "", "%s is not reachable from a trigger", n.Label)
		}
	}

	if _, err := Layers(g); errors.Is(err, ErrCycleDetected) {
		add(SeverityError, "cycle", "", "", "flow contains a cycle")
	}
	return issues
}

func hasOutgoing(g Graph, id string, h Handle) bool {
	for _, e := range g.Edges {
		if e.From == id && e.FromHandle == h {
			return true
		}
	}
	return false
}

func reachableFrom(g Graph, roots []string) map[string]bool {
	seen := make(map[string]bool, len(g.Nodes))
	stack := append([]string(nil), roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, e := range g.Outgoing(id) {
			stack = append(stack, e.To)
		}
	}
	return seen
}

// emptyRequired lists the required data keys of n that are blank.
func emptyRequired(n Node) []string {
	var missing []string
	check := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}
	switch d := n.Data.(type) {
	case TriggerData:
		switch d.TriggerType {
		case "tag_added":
			check("tag", d.Tag)
		case "pipeline_change":
			check("stage", d.Stage)
		}
	case SendEmailData:
		check("subject", d.Subject)
		check("body", d.Body)
	case SendSMSData:
		check("message", d.Message)
	case ConditionData:
		if conditionNeedsValue(d.ConditionType) {
			check("value", d.Value)
		}
	case AddTagData:
		check("tag", d.Tag)
	case RemoveTagData:
		check("tag", d.Tag)
	case MovePipelineData:
		check("stage", d.Stage)
	case CreateTaskData:
		check("title", d.Title)
	case SendResourceData:
		check("resource_url", d.ResourceURL)
	case SocialPostData:
		check("content", d.Content)
	case WebhookData:
		check("url", d.URL)
	case NotifyData:
		check("message", d.Message)
	}
	return missing
}
