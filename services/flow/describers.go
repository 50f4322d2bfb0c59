package flow

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"campaign-flow/pkg/flowgraph"
)

// TriggerDescriber handles the "trigger" node type. It marks where the
// contact enters the flow.
type TriggerDescriber struct{}

func (d *TriggerDescriber) Describe(_ context.Context, node flowgraph.Node, _ *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.TriggerData](node)
	message := "Contact enters the flow: " + optionLabel(flowgraph.TriggerTypes, data.TriggerType)
	switch data.TriggerType {
	case "tag_added":
		message += fmt.Sprintf(" (%s)", data.Tag)
	case "pipeline_change":
		message += fmt.Sprintf(" (%s)", optionLabel(flowgraph.PipelineStages, data.Stage))
	}
	return &StepResult{Output: map[string]any{
		"message":     message,
		"triggerType": data.TriggerType,
	}}, nil
}

// EmailDescriber handles the "send_email" node type. It renders the email the
// contact would receive.
type EmailDescriber struct{}

func (d *EmailDescriber) Describe(_ context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.SendEmailData](node)
	if strings.TrimSpace(data.Subject) == "" {
		return nil, fmt.Errorf("email subject is empty")
	}
	if strings.TrimSpace(data.Body) == "" {
		return nil, fmt.Errorf("email body is empty")
	}

	replacer := contactReplacer(state.Contact)
	subject := replacer.Replace(data.Subject)
	body := replacer.Replace(data.Body)

	return &StepResult{Output: map[string]any{
		"message": fmt.Sprintf("Email %q sent from %s", subject, data.FromEmail),
		"email": map[string]any{
			"to":      state.Contact["email"],
			"from":    data.FromEmail,
			"subject": subject,
			"body":    body,
		},
	}}, nil
}

// SMSDescriber handles the "send_sms" node type.
type SMSDescriber struct{}

func (d *SMSDescriber) Describe(_ context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.SendSMSData](node)
	if strings.TrimSpace(data.Message) == "" {
		return nil, fmt.Errorf("sms message is empty")
	}

	body := contactReplacer(state.Contact).Replace(data.Message)
	stats := flowgraph.CountSMS(body)

	return &StepResult{Output: map[string]any{
		"message": fmt.Sprintf("SMS sent (%d characters, %d segment(s))", stats.Characters, stats.Segments),
		"sms": map[string]any{
			"to":         state.Contact["phone"],
			"body":       body,
			"characters": stats.Characters,
			"segments":   stats.Segments,
		},
	}}, nil
}

// WaitDescriber handles the "wait" node type. It delays every later step.
type WaitDescriber struct{}

func (d *WaitDescriber) Describe(_ context.Context, node flowgraph.Node, _ *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.WaitData](node)
	delay := data.Duration()
	if delay <= 0 {
		return nil, fmt.Errorf("invalid wait of %d %s", data.Amount, data.Unit)
	}
	return &StepResult{
		Delay: delay,
		Output: map[string]any{
			"message": fmt.Sprintf("Wait %d %s", data.Amount, data.Unit),
			"delay":   FormatDelay(delay),
		},
	}, nil
}

// ConditionDescriber handles the "condition" node type. A forced outcome in
// the state wins; otherwise tag and stage conditions are checked against the
// simulated contact and anything else takes the no branch.
type ConditionDescriber struct{}

func (d *ConditionDescriber) Describe(_ context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.ConditionData](node)

	branch, forced := state.Branches[node.ID]
	if forced {
		if branch != flowgraph.HandleYes && branch != flowgraph.HandleNo {
			return nil, fmt.Errorf("invalid branch %q", branch)
		}
	} else {
		branch = flowgraph.HandleNo
		switch data.ConditionType {
		case "has_tag":
			if state.Tags[data.Value] {
				branch = flowgraph.HandleYes
			}
		case "pipeline_stage":
			if data.Value != "" && state.Stage == data.Value {
				branch = flowgraph.HandleYes
			}
		}
	}

	question := optionLabel(flowgraph.ConditionTypes, data.ConditionType)
	if data.Value != "" {
		question += " " + data.Value
	}
	return &StepResult{
		Branch: branch,
		Output: map[string]any{
			"message": fmt.Sprintf("%s: %s", question, flowgraph.EdgeLabel(branch)),
			"branch":  branch,
			"forced":  forced,
		},
	}, nil
}

// TagDescriber handles the "add_tag" and "remove_tag" node types.
type TagDescriber struct {
	remove bool
}

func (d *TagDescriber) Describe(_ context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error) {
	var tag string
	if d.remove {
		tag = dataOf[flowgraph.RemoveTagData](node).Tag
	} else {
		tag = dataOf[flowgraph.AddTagData](node).Tag
	}
	if strings.TrimSpace(tag) == "" {
		return nil, fmt.Errorf("tag is empty")
	}

	if d.remove {
		delete(state.Tags, tag)
		return &StepResult{Output: map[string]any{"message": fmt.Sprintf("Removed tag %q", tag), "tag": tag}}, nil
	}
	state.Tags[tag] = true
	return &StepResult{Output: map[string]any{"message": fmt.Sprintf("Added tag %q", tag), "tag": tag}}, nil
}

// PipelineDescriber handles the "move_pipeline" node type.
type PipelineDescriber struct{}

func (d *PipelineDescriber) Describe(_ context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error) {
	stage := dataOf[flowgraph.MovePipelineData](node).Stage
	if stage == "" {
		return nil, fmt.Errorf("pipeline stage is empty")
	}
	from := state.Stage
	state.Stage = stage
	return &StepResult{Output: map[string]any{
		"message": "Moved to " + optionLabel(flowgraph.PipelineStages, stage),
		"from":    from,
		"to":      stage,
	}}, nil
}

// TaskDescriber handles the "create_task" node type.
type TaskDescriber struct {
	team []flowgraph.TeamMember
}

func (d *TaskDescriber) Describe(_ context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.CreateTaskData](node)
	if strings.TrimSpace(data.Title) == "" {
		return nil, fmt.Errorf("task title is empty")
	}

	title := contactReplacer(state.Contact).Replace(data.Title)
	assignee := "Unassigned"
	if data.Assignee != "" {
		assignee = memberName(d.team, data.Assignee)
	}
	return &StepResult{Output: map[string]any{
		"message": fmt.Sprintf("Task %q created for %s (%s priority)", title, assignee, data.Priority),
		"task": map[string]any{
			"title":    title,
			"assignee": data.Assignee,
			"priority": data.Priority,
		},
	}}, nil
}

// ResourceDescriber handles the "send_resource" node type.
type ResourceDescriber struct{}

func (d *ResourceDescriber) Describe(_ context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.SendResourceData](node)
	if err := checkURL(data.ResourceURL); err != nil {
		return nil, fmt.Errorf("resource url: %w", err)
	}
	name := data.ResourceName
	if name == "" {
		name = data.ResourceURL
	}
	return &StepResult{Output: map[string]any{
		"message": fmt.Sprintf("Resource %q sent from %s", name, data.FromEmail),
		"resource": map[string]any{
			"to":   state.Contact["email"],
			"name": data.ResourceName,
			"url":  data.ResourceURL,
		},
	}}, nil
}

// SocialPostDescriber handles the "social_post" node type.
type SocialPostDescriber struct{}

func (d *SocialPostDescriber) Describe(_ context.Context, node flowgraph.Node, _ *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.SocialPostData](node)
	if strings.TrimSpace(data.Content) == "" {
		return nil, fmt.Errorf("post content is empty")
	}

	platform := optionLabel(flowgraph.Platforms, data.Platform)
	message := "Post published to " + platform
	if data.ScheduledAt != "" {
		at, err := parseScheduledAt(data.ScheduledAt)
		if err != nil {
			return nil, err
		}
		message = fmt.Sprintf("Post scheduled on %s for %s", platform, at.Format("Mon 2 Jan 2006 15:04"))
	}
	return &StepResult{Output: map[string]any{
		"message":  message,
		"platform": data.Platform,
		"content":  data.Content,
	}}, nil
}

// WebhookDescriber handles the "webhook" node type. The request is described,
// never sent.
type WebhookDescriber struct{}

func (d *WebhookDescriber) Describe(_ context.Context, node flowgraph.Node, _ *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.WebhookData](node)
	if err := checkURL(data.URL); err != nil {
		return nil, fmt.Errorf("webhook url: %w", err)
	}
	return &StepResult{Output: map[string]any{
		"message": fmt.Sprintf("Would call %s %s", data.Method, data.URL),
		"request": map[string]any{"method": data.Method, "url": data.URL},
	}}, nil
}

// NotifyDescriber handles the "notify" node type.
type NotifyDescriber struct {
	team []flowgraph.TeamMember
}

func (d *NotifyDescriber) Describe(_ context.Context, node flowgraph.Node, state *PreviewState) (*StepResult, error) {
	data := dataOf[flowgraph.NotifyData](node)
	if strings.TrimSpace(data.Message) == "" {
		return nil, fmt.Errorf("notification message is empty")
	}

	to := "all admins"
	if data.NotifyTo != flowgraph.AllAdmins {
		to = memberName(d.team, data.NotifyTo)
	}
	return &StepResult{Output: map[string]any{
		"message":      "Notified " + to,
		"notification": contactReplacer(state.Contact).Replace(data.Message),
	}}, nil
}

func dataOf[T flowgraph.NodeData](n flowgraph.Node) T {
	d, _ := n.Data.(T)
	return d
}

// contactReplacer substitutes {{key}} placeholders with contact values.
// Unknown placeholders are left as written.
func contactReplacer(contact map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(contact))
	for k := range contact {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", contact[k])
	}
	return strings.NewReplacer(pairs...)
}

func optionLabel(opts []flowgraph.Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func memberName(team []flowgraph.TeamMember, id string) string {
	for _, m := range team {
		if m.ID == id {
			return m.DisplayName
		}
	}
	return id
}

func checkURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) url", raw)
	}
	return nil
}

func parseScheduledAt(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid scheduled_at %q", raw)
	}
	return t, nil
}

// FormatDelay renders d as days, hours and minutes, e.g. "2d 3h".
func FormatDelay(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", int64(days)))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", int64(hours)))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", int64(minutes)))
	}
	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, " ")
}
