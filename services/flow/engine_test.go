package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-flow/pkg/flowgraph"
)

func newTestEngine() *Engine {
	return NewEngine(NewRegistry([]flowgraph.TeamMember{{ID: "u1", DisplayName: "Dana"}}))
}

func stepIDs(res *PreviewResults) []string {
	ids := make([]string, 0, len(res.Steps))
	for _, s := range res.Steps {
		ids = append(ids, s.NodeID)
	}
	return ids
}

func TestEngine_SampleFlow_ForcedYes(t *testing.T) {
	state := &PreviewState{Branches: map[string]flowgraph.Handle{"opened": flowgraph.HandleYes}}

	res, err := newTestEngine().Preview(context.Background(), SampleFlow().Graph(), state)

	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, []string{"trigger", "welcome-email", "wait", "opened", "engaged-tag"}, stepIDs(res))
	assert.NotEmpty(t, res.PreviewID)
	assert.Equal(t, flowgraph.HandleYes, res.Steps[3].Branch)
	assert.Equal(t, true, res.Steps[3].Output["forced"])
}

func TestEngine_SampleFlow_DefaultsToNo(t *testing.T) {
	res, err := newTestEngine().Preview(context.Background(), SampleFlow().Graph(), &PreviewState{})

	require.NoError(t, err)
	assert.Equal(t, []string{"trigger", "welcome-email", "wait", "opened", "reminder-sms", "follow-up-task"}, stepIDs(res))
	assert.Equal(t, flowgraph.HandleNo, res.Steps[3].Branch)
	assert.Empty(t, res.Contact.Tags)
}

func TestEngine_AccumulatesDelays(t *testing.T) {
	r := flowgraph.NewReducer(flowgraph.NewCatalog("hello@example.com"))
	var g flowgraph.Graph
	g = r.Apply(g, flowgraph.AddNode{ID: "t", Type: flowgraph.Trigger})
	g = r.Apply(g, flowgraph.AddNode{ID: "w1", Type: flowgraph.Wait})
	g = r.Apply(g, flowgraph.AddNode{ID: "w2", Type: flowgraph.Wait})
	g = r.Apply(g, flowgraph.AddNode{ID: "tag", Type: flowgraph.AddTag})
	g = r.Apply(g, flowgraph.UpdateNodeData{ID: "w2", Patch: map[string]any{"amount": 90, "unit": "minutes"}})
	g = r.Apply(g, flowgraph.UpdateNodeData{ID: "tag", Patch: map[string]any{"tag": "nurtured"}})
	g = r.Apply(g, flowgraph.AddEdge{From: "t", To: "w1"})
	g = r.Apply(g, flowgraph.AddEdge{From: "w1", To: "w2"})
	g = r.Apply(g, flowgraph.AddEdge{From: "w2", To: "tag"})

	state := &PreviewState{}
	res, err := newTestEngine().Preview(context.Background(), g, state)

	require.NoError(t, err)
	require.Len(t, res.Steps, 4)
	assert.Equal(t, int64(0), res.Steps[1].ElapsedSeconds)
	assert.Equal(t, int64(24*60*60), res.Steps[2].ElapsedSeconds)
	assert.Equal(t, int64(24*60*60+90*60), res.Steps[3].ElapsedSeconds)
	assert.Equal(t, "1d 1h 30m", res.TotalDelay)
	assert.Equal(t, 25*time.Hour+30*time.Minute, state.Elapsed)
	assert.Equal(t, []string{"nurtured"}, res.Contact.Tags)
}

func TestEngine_ConditionEvaluatesSimulatedContact(t *testing.T) {
	g := flowgraph.Graph{
		Nodes: []flowgraph.Node{
			{ID: "t", Type: flowgraph.Trigger, Data: flowgraph.TriggerData{TriggerType: "manual"}},
			{ID: "move", Type: flowgraph.MovePipeline, Data: flowgraph.MovePipelineData{Stage: "contacted"}},
			{ID: "c", Type: flowgraph.Condition, Data: flowgraph.ConditionData{ConditionType: "pipeline_stage", Value: "contacted"}},
			{ID: "yes", Type: flowgraph.AddTag, Data: flowgraph.AddTagData{Tag: "in-pipeline"}},
			{ID: "no", Type: flowgraph.AddTag, Data: flowgraph.AddTagData{Tag: "lost"}},
		},
		Edges: []flowgraph.Edge{
			{ID: "1", From: "t", To: "move", FromHandle: flowgraph.HandleDefault},
			{ID: "2", From: "move", To: "c", FromHandle: flowgraph.HandleDefault},
			{ID: "3", From: "c", To: "no", FromHandle: flowgraph.HandleNo},
			{ID: "4", From: "c", To: "yes", FromHandle: flowgraph.HandleYes},
		},
	}

	res, err := newTestEngine().Preview(context.Background(), g, &PreviewState{Stage: "new_lead"})

	require.NoError(t, err)
	assert.Equal(t, []string{"t", "move", "c", "yes"}, stepIDs(res))
	assert.Equal(t, ContactState{Tags: []string{"in-pipeline"}, Stage: "contacted"}, res.Contact)
}

func TestEngine_DescriberErrorFailsPreview(t *testing.T) {
	g := flowgraph.Graph{
		Nodes: []flowgraph.Node{
			{ID: "t", Type: flowgraph.Trigger, Data: flowgraph.TriggerData{TriggerType: "manual"}},
			{ID: "hook", Type: flowgraph.Webhook, Data: flowgraph.WebhookData{Method: "POST"}},
			{ID: "after", Type: flowgraph.AddTag, Data: flowgraph.AddTagData{Tag: "x"}},
		},
		Edges: []flowgraph.Edge{
			{ID: "1", From: "t", To: "hook", FromHandle: flowgraph.HandleDefault},
			{ID: "2", From: "hook", To: "after", FromHandle: flowgraph.HandleDefault},
		},
	}

	res, err := newTestEngine().Preview(context.Background(), g, &PreviewState{})

	require.NoError(t, err)
	assert.Equal(t, "failed", res.Status)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, "error", res.Steps[1].Status)
	assert.Equal(t, "webhook url: is empty", res.Steps[1].Error)
}

func TestEngine_NoTrigger(t *testing.T) {
	g := flowgraph.Graph{Nodes: []flowgraph.Node{{ID: "a", Type: flowgraph.AddTag}}}

	_, err := newTestEngine().Preview(context.Background(), g, &PreviewState{})

	assert.ErrorIs(t, err, ErrNoTrigger)
}

func TestEngine_CycleHitsStepLimit(t *testing.T) {
	g := flowgraph.Graph{
		Nodes: []flowgraph.Node{
			{ID: "t", Type: flowgraph.Trigger, Data: flowgraph.TriggerData{TriggerType: "manual"}},
			{ID: "a", Type: flowgraph.AddTag, Data: flowgraph.AddTagData{Tag: "a"}},
			{ID: "b", Type: flowgraph.RemoveTag, Data: flowgraph.RemoveTagData{Tag: "a"}},
		},
		Edges: []flowgraph.Edge{
			{ID: "1", From: "t", To: "a", FromHandle: flowgraph.HandleDefault},
			{ID: "2", From: "a", To: "b", FromHandle: flowgraph.HandleDefault},
			{ID: "3", From: "b", To: "a", FromHandle: flowgraph.HandleDefault},
		},
	}

	_, err := newTestEngine().Preview(context.Background(), g, &PreviewState{})

	assert.True(t, errors.Is(err, ErrStepLimit))
}

func TestEngine_DanglingEdge(t *testing.T) {
	g := flowgraph.Graph{
		Nodes: []flowgraph.Node{{ID: "t", Type: flowgraph.Trigger, Data: flowgraph.TriggerData{TriggerType: "manual"}}},
		Edges: []flowgraph.Edge{{ID: "1", From: "t", To: "ghost", FromHandle: flowgraph.HandleDefault}},
	}

	_, err := newTestEngine().Preview(context.Background(), g, &PreviewState{})

	assert.EqualError(t, err, `edge target node "ghost" not found`)
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine().Preview(ctx, SampleFlow().Graph(), &PreviewState{})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_MissingDescriber(t *testing.T) {
	e := NewEngine(Registry{})

	_, err := e.Preview(context.Background(), SampleFlow().Graph(), &PreviewState{})

	assert.ErrorContains(t, err, `no describer registered for node type "trigger"`)
}
