package flowgraph

import (
	"strconv"
	"time"
	"unicode/utf16"
)

// FieldKind selects the input control for a field.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldNumber   FieldKind = "number"
	FieldDateTime FieldKind = "datetime"
	FieldReadOnly FieldKind = "readonly"
)

// Field describes one editable key of a node's data.
type Field struct {
	Key          string    `json:"key"`
	Label        string    `json:"label"`
	Kind         FieldKind `json:"kind"`
	Value        string    `json:"value"`
	Options      []Option  `json:"options,omitempty"`
	Min          int       `json:"min,omitempty"`
	Placeholders []string  `json:"placeholders,omitempty"`
	SMS          *SMSStats `json:"sms,omitempty"`
}

// SMSLimit is the number of characters in one SMS segment.
const SMSLimit = 160

// SMSStats is the live counter shown under an SMS message.
type SMSStats struct {
	Characters int `json:"characters"`
	Segments   int `json:"segments"`
}

// CountSMS counts characters and the segments needed to send message.
// Characters are UTF-16 code units, so a symbol outside the basic plane
// counts twice.
func CountSMS(message string) SMSStats {
	n := len(utf16.Encode([]rune(message)))
	return SMSStats{Characters: n, Segments: (n + SMSLimit - 1) / SMSLimit}
}

// Fields returns the editable fields for n. team populates assignee and
// notification recipient choices.
func Fields(n Node, team []TeamMember) []Field {
	data := n.Data
	if data == nil {
		zero, err := zeroData(n.Type)
		if err != nil {
			return nil
		}
		data = zero
	}
	switch d := data.(type) {
	case TriggerData:
		fields := []Field{selectField("trigger_type", "Trigger", d.TriggerType, TriggerTypes)}
		switch d.TriggerType {
		case "tag_added":
			fields = append(fields, textField("tag", "Tag", d.Tag))
		case "pipeline_change":
			fields = append(fields, selectField("stage", "Stage", d.Stage, PipelineStages))
		}
		return fields
	case SendEmailData:
		return []Field{
			{Key: "from_email", Label: "From", Kind: FieldReadOnly, Value: d.FromEmail},
			textField("subject", "Subject", d.Subject),
			{Key: "body", Label: "Body", Kind: FieldTextarea, Value: d.Body, Placeholders: EmailPlaceholders},
		}
	case SendSMSData:
		stats := CountSMS(d.Message)
		return []Field{{Key: "message", Label: "Message", Kind: FieldTextarea, Value: d.Message, SMS: &stats}}
	case WaitData:
		return []Field{
			{Key: "amount", Label: "Amount", Kind: FieldNumber, Value: strconv.Itoa(d.Amount), Min: 1},
			selectField("unit", "Unit", d.Unit, WaitUnits),
		}
	case ConditionData:
		fields := []Field{selectField("condition_type", "Condition", d.ConditionType, ConditionTypes)}
		if d.ConditionType == "pipeline_stage" {
			fields = append(fields, selectField("value", "Stage", d.Value, PipelineStages))
		} else if conditionNeedsValue(d.ConditionType) {
			fields = append(fields, textField("value", "Value", d.Value))
		}
		return fields
	case AddTagData:
		return []Field{textField("tag", "Tag", d.Tag)}
	case RemoveTagData:
		return []Field{textField("tag", "Tag", d.Tag)}
	case MovePipelineData:
		return []Field{selectField("stage", "Stage", d.Stage, PipelineStages)}
	case CreateTaskData:
		assignees := append([]Option{{Value: "", Label: "Unassigned"}}, teamOptions(team)...)
		return []Field{
			textField("title", "Title", d.Title),
			selectField("assignee", "Assignee", d.Assignee, assignees),
			selectField("priority", "Priority", d.Priority, Priorities),
		}
	case SendResourceData:
		return []Field{
			textField("resource_name", "Resource name", d.ResourceName),
			textField("resource_url", "Resource URL", d.ResourceURL),
			{Key: "from_email", Label: "From", Kind: FieldReadOnly, Value: d.FromEmail},
		}
	case SocialPostData:
		return []Field{
			selectField("platform", "Platform", d.Platform, Platforms),
			{Key: "content", Label: "Content", Kind: FieldTextarea, Value: d.Content},
			{Key: "scheduled_at", Label: "Scheduled at", Kind: FieldDateTime, Value: d.ScheduledAt},
		}
	case WebhookData:
		return []Field{
			selectField("method", "Method", d.Method, WebhookMethods),
			textField("url", "URL", d.URL),
		}
	case NotifyData:
		recipients := append(teamOptions(team), Option{Value: AllAdmins, Label: "All admins"})
		return []Field{
			{Key: "message", Label: "Message", Kind: FieldTextarea, Value: d.Message},
			selectField("notify_to", "Notify", d.NotifyTo, recipients),
		}
	}
	return nil
}

func textField(key, label, value string) Field {
	return Field{Key: key, Label: label, Kind: FieldText, Value: value}
}

func selectField(key, label, value string, opts []Option) Field {
	return Field{Key: key, Label: label, Kind: FieldSelect, Value: value, Options: opts}
}

// FieldByKey finds key among fields.
func FieldByKey(fields []Field, key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// datetime-local inputs omit seconds and zone.
const dateTimeLocal = "2006-01-02T15:04"

// ParseFieldValue converts raw input for f into the value stored in node data.
// ok is false when raw is not acceptable for the field.
func ParseFieldValue(f Field, raw string) (any, bool) {
	switch f.Kind {
	case FieldReadOnly:
		return nil, false
	case FieldNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, false
		}
		if n < f.Min {
			n = f.Min
		}
		return n, true
	case FieldSelect:
		if !hasOption(f.Options, raw) {
			return nil, false
		}
		return raw, true
	case FieldDateTime:
		if raw == "" {
			return raw, true
		}
		if _, err := time.Parse(dateTimeLocal, raw); err == nil {
			return raw, true
		}
		if _, err := time.Parse(time.RFC3339, raw); err == nil {
			return raw, true
		}
		return nil, false
	default:
		return raw, true
	}
}

// fieldPatch builds the data patch for setting key to value on n, clearing
// the conditional fields a type switch hides.
func fieldPatch(n Node, key string, value any) map[string]any {
	patch := map[string]any{key: value}
	switch n.Type {
	case Trigger:
		if key == "trigger_type" {
			patch["tag"] = ""
			patch["stage"] = ""
		}
	case Condition:
		if key == "condition_type" {
			patch["value"] = ""
		}
	}
	return patch
}
