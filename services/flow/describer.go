package flow

import (
	"context"
	"sort"
	"time"

	"campaign-flow/pkg/flowgraph"
)

// PreviewState is the simulated contact carried from step to step during a
// preview.
type PreviewState struct {
	Branches map[string]flowgraph.Handle // Forced condition outcomes by node id
	Contact  map[string]string           // Placeholder values, e.g. first_name
	Tags     map[string]bool
	Stage    string
	Elapsed  time.Duration
}

// NewPreviewState builds the starting state of a dry run from a request.
func NewPreviewState(req PreviewRequest) *PreviewState {
	state := &PreviewState{
		Branches: req.Branches,
		Contact:  req.Contact,
		Tags:     make(map[string]bool, len(req.Tags)),
		Stage:    req.Stage,
	}
	for _, t := range req.Tags {
		state.Tags[t] = true
	}
	return state
}

func (s *PreviewState) contactState() ContactState {
	tags := make([]string, 0, len(s.Tags))
	for t, on := range s.Tags {
		if on {
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return ContactState{Tags: tags, Stage: s.Stage}
}

// StepResult is what one node would do to the contact.
type StepResult struct {
	Output map[string]any   // Must include "message"
	Branch flowgraph.Handle // Set by condition nodes
	Delay  time.Duration    // Set by wait nodes
}

// StepDescriber describes the effect of a single node type without
// performing it.
type StepDescriber interface {
	Describe(ctx context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error)
}

// Registry maps node types to their describer.
type Registry map[flowgraph.NodeType]StepDescriber

// NewRegistry creates a registry covering every node type. team resolves
// assignee and recipient ids to names.
func NewRegistry(team []flowgraph.TeamMember) Registry {
	return Registry{
		flowgraph.Trigger:      &TriggerDescriber{},
		flowgraph.SendEmail:    &EmailDescriber{},
		flowgraph.SendSMS:      &SMSDescriber{},
		flowgraph.Wait:         &WaitDescriber{},
		flowgraph.Condition:    &ConditionDescriber{},
		flowgraph.AddTag:       &TagDescriber{},
		flowgraph.RemoveTag:    &TagDescriber{remove: true},
		flowgraph.MovePipeline: &PipelineDescriber{},
		flowgraph.CreateTask:   &TaskDescriber{team: team},
		flowgraph.SendResource: &ResourceDescriber{},
		flowgraph.SocialPost:   &SocialPostDescriber{},
		flowgraph.Webhook:      &WebhookDescriber{},
		flowgraph.Notify:       &NotifyDescriber{team: team},
	}
}
