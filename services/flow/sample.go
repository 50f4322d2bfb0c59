package flow

import "campaign-flow/pkg/flowgraph"

const sampleFlowID = "7d8f3c2a-5b1e-4c6d-9a0f-2e4b6c8d0a13"

// SampleFlow returns the welcome campaign seeded into an empty store.
func SampleFlow() *Flow {
	return &Flow{
		ID:    sampleFlowID,
		Name:  "New Contact Welcome",
		Nodes: sampleNodes(),
		Edges: sampleEdges(),
	}
}

func sampleNodes() []flowgraph.Node {
	return []flowgraph.Node{
		{
			ID: "trigger", Type: flowgraph.Trigger, X: 100, Y: 60, Label: "New contact",
			Data: flowgraph.TriggerData{TriggerType: "new_contact"},
		},
		{
			ID: "welcome-email", Type: flowgraph.SendEmail, X: 100, Y: 212, Label: "Welcome email",
			Data: flowgraph.SendEmailData{
				Subject:   "Welcome, {{first_name}}!",
				Body:      "Hi {{first_name}},\n\nThanks for getting in touch with {{company}}. We'll be in touch shortly.",
				FromEmail: "hello@example.com",
			},
		},
		{
			ID: "wait", Type: flowgraph.Wait, X: 100, Y: 364, Label: "Wait 2 days",
			Data: flowgraph.WaitData{Amount: 2, Unit: "days"},
		},
		{
			ID: "opened", Type: flowgraph.Condition, X: 100, Y: 516, Label: "Opened welcome?",
			Data: flowgraph.ConditionData{ConditionType: "email_opened"},
		},
		{
			ID: "engaged-tag", Type: flowgraph.AddTag, X: -40, Y: 668, Label: "Tag engaged",
			Data: flowgraph.AddTagData{Tag: "engaged"},
		},
		{
			ID: "reminder-sms", Type: flowgraph.SendSMS, X: 240, Y: 668, Label: "Reminder SMS",
			Data: flowgraph.SendSMSData{Message: "Hi {{first_name}}, did you see our email? Reply YES to book a call."},
		},
		{
			ID: "follow-up-task", Type: flowgraph.CreateTask, X: 240, Y: 820, Label: "Follow up",
			Data: flowgraph.CreateTaskData{Title: "Call {{first_name}}", Priority: "high"},
		},
	}
}

func sampleEdges() []flowgraph.Edge {
	return []flowgraph.Edge{
		{ID: "e1", From: "trigger", To: "welcome-email", FromHandle: flowgraph.HandleDefault},
		{ID: "e2", From: "welcome-email", To: "wait", FromHandle: flowgraph.HandleDefault},
		{ID: "e3", From: "wait", To: "opened", FromHandle: flowgraph.HandleDefault},
		{ID: "e4", From: "opened", To: "engaged-tag", FromHandle: flowgraph.HandleYes, Label: "Yes"},
		{ID: "e5", From: "opened", To: "reminder-sms", FromHandle: flowgraph.HandleNo, Label: "No"},
		{ID: "e6", From: "reminder-sms", To: "follow-up-task", FromHandle: flowgraph.HandleDefault},
	}
}
