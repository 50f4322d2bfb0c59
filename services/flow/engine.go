package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campaign-flow/pkg/flowgraph"
)

const maxSteps = 100

var (
	// ErrNoTrigger is returned when a preview is requested for a flow without
	// a trigger node.
	ErrNoTrigger = errors.New("flow has no trigger")
	// ErrStepLimit is returned when a preview walks more than maxSteps nodes.
	ErrStepLimit = errors.New("preview exceeded step limit")
)

// Engine walks a flow the way a contact would and describes each step.
// Nothing is sent: every node is handled by a describer from the registry.
type Engine struct {
	registry Registry
}

// NewEngine creates an Engine with the given describer registry.
func NewEngine(registry Registry) *Engine {
	return &Engine{registry: registry}
}

// Preview starts at the first trigger node and follows outgoing edges. After a
// condition it follows the edge of the branch the describer chose; after any
// other node it follows the first default edge. When a describer fails the
// walk stops and partial results are returned with status "failed".
func (e *Engine) Preview(ctx context.Context, g flowgraph.Graph, state *PreviewState) (*PreviewResults, error) {
	if state.Tags == nil {
		state.Tags = make(map[string]bool)
	}
	if state.Contact == nil {
		state.Contact = make(map[string]string)
	}

	current, err := findTrigger(g.Nodes)
	if err != nil {
		return nil, err
	}

	var steps []PreviewStep
	done := false
	for len(steps) < maxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		describer, ok := e.registry[current.Type]
		if !ok {
			return nil, fmt.Errorf("no describer registered for node type %q", current.Type)
		}

		step := PreviewStep{
			StepNumber:     len(steps) + 1,
			NodeID:         current.ID,
			NodeType:       string(current.Type),
			Label:          current.Label,
			ElapsedSeconds: int64(state.Elapsed.Seconds()),
		}

		result, descErr := describer.Describe(ctx, current, state)
		if descErr != nil {
			step.Status = "error"
			step.Error = descErr.Error()
			step.Output = map[string]any{"message": fmt.Sprintf("Error: %s", descErr.Error())}
			steps = append(steps, step)
			return e.results("failed", steps, state), nil
		}

		step.Status = "completed"
		step.Output = result.Output
		step.Branch = result.Branch
		steps = append(steps, step)
		state.Elapsed += result.Delay

		want := flowgraph.HandleDefault
		if current.Type == flowgraph.Condition {
			want = result.Branch
		}
		nextID := ""
		for _, edge := range g.Outgoing(current.ID) {
			if edge.FromHandle == want {
				nextID = edge.To
				break
			}
		}
		if nextID == "" {
			done = true
			break
		}

		next, ok := g.Node(nextID)
		if !ok {
			return nil, fmt.Errorf("edge target node %q not found", nextID)
		}
		current = next
	}

	if !done {
		return nil, fmt.Errorf("%w of %d (possible cycle)", ErrStepLimit, maxSteps)
	}
	return e.results("completed", steps, state), nil
}

func (e *Engine) results(status string, steps []PreviewStep, state *PreviewState) *PreviewResults {
	return &PreviewResults{
		PreviewID:         uuid.New().String(),
		Status:            status,
		Steps:             steps,
		TotalDelay:        FormatDelay(state.Elapsed),
		TotalDelaySeconds: int64(state.Elapsed.Seconds()),
		Contact:           state.contactState(),
	}
}

func findTrigger(nodes []flowgraph.Node) (flowgraph.Node, error) {
	for _, n := range nodes {
		if n.Type == flowgraph.Trigger {
			return n, nil
		}
	}
	return flowgraph.Node{}, ErrNoTrigger
}
