package flowgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// NodeData is the type-specific configuration of a node. There is exactly one
// implementation per NodeType and Kind reports which.
type NodeData interface {
	Kind() NodeType
}

// TriggerData starts a flow. Tag is only meaningful for tag_added triggers and
// Stage only for pipeline_change triggers.
type TriggerData struct {
	TriggerType string `json:"trigger_type"`
	Tag         string `json:"tag,omitempty"`
	Stage       string `json:"stage,omitempty"`
}

type SendEmailData struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	FromEmail string `json:"from_email"`
}

type SendSMSData struct {
	Message string `json:"message"`
}

type WaitData struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

type ConditionData struct {
	ConditionType string `json:"condition_type"`
	Value         string `json:"value"`
}

type AddTagData struct {
	Tag string `json:"tag"`
}

type RemoveTagData struct {
	Tag string `json:"tag"`
}

type MovePipelineData struct {
	Stage string `json:"stage"`
}

type CreateTaskData struct {
	Title    string `json:"title"`
	Assignee string `json:"assignee"`
	Priority string `json:"priority"`
}

type SendResourceData struct {
	ResourceName string `json:"resource_name"`
	ResourceURL  string `json:"resource_url"`
	FromEmail    string `json:"from_email"`
}

type SocialPostData struct {
	Platform    string `json:"platform"`
	Content     string `json:"content"`
	ScheduledAt string `json:"scheduled_at"`
}

type WebhookData struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type NotifyData struct {
	Message  string `json:"message"`
	NotifyTo string `json:"notify_to"`
}

func (TriggerData) Kind() NodeType      { return Trigger }
func (SendEmailData) Kind() NodeType    { return SendEmail }
func (SendSMSData) Kind() NodeType      { return SendSMS }
func (WaitData) Kind() NodeType         { return Wait }
func (ConditionData) Kind() NodeType    { return Condition }
func (AddTagData) Kind() NodeType       { return AddTag }
func (RemoveTagData) Kind() NodeType    { return RemoveTag }
func (MovePipelineData) Kind() NodeType { return MovePipeline }
func (CreateTaskData) Kind() NodeType   { return CreateTask }
func (SendResourceData) Kind() NodeType { return SendResource }
func (SocialPostData) Kind() NodeType   { return SocialPost }
func (WebhookData) Kind() NodeType      { return Webhook }
func (NotifyData) Kind() NodeType       { return Notify }

// Duration converts the wait into a time.Duration. Unknown units yield zero.
func (d WaitData) Duration() time.Duration {
	var unit time.Duration
	switch d.Unit {
	case "minutes":
		unit = time.Minute
	case "hours":
		unit = time.Hour
	case "days":
		unit = 24 * time.Hour
	case "weeks":
		unit = 7 * 24 * time.Hour
	}
	return time.Duration(d.Amount) * unit
}

func (d WaitData) valid() bool {
	return d.Amount >= 1 && hasOption(WaitUnits, d.Unit)
}

// validator is implemented by data types that constrain their field values
// beyond what JSON decoding checks.
type validator interface {
	valid() bool
}

func zeroData(t NodeType) (NodeData, error) {
	switch t {
	case Trigger:
		return TriggerData{}, nil
	case SendEmail:
		return SendEmailData{}, nil
	case SendSMS:
		return SendSMSData{}, nil
	case Wait:
		return WaitData{}, nil
	case Condition:
		return ConditionData{}, nil
	case AddTag:
		return AddTagData{}, nil
	case RemoveTag:
		return RemoveTagData{}, nil
	case MovePipeline:
		return MovePipelineData{}, nil
	case CreateTask:
		return CreateTaskData{}, nil
	case SendResource:
		return SendResourceData{}, nil
	case SocialPost:
		return SocialPostData{}, nil
	case Webhook:
		return WebhookData{}, nil
	case Notify:
		return NotifyData{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
}

// decodeData decodes raw into the data struct for t. Strict decoding rejects
// keys the type does not define.
func decodeData(t NodeType, raw []byte, strict bool) (NodeData, error) {
	switch t {
	case Trigger:
		return decodeAs[TriggerData](raw, strict)
	case SendEmail:
		return decodeAs[SendEmailData](raw, strict)
	case SendSMS:
		return decodeAs[SendSMSData](raw, strict)
	case Wait:
		return decodeAs[WaitData](raw, strict)
	case Condition:
		return decodeAs[ConditionData](raw, strict)
	case AddTag:
		return decodeAs[AddTagData](raw, strict)
	case RemoveTag:
		return decodeAs[RemoveTagData](raw, strict)
	case MovePipeline:
		return decodeAs[MovePipelineData](raw, strict)
	case CreateTask:
		return decodeAs[CreateTaskData](raw, strict)
	case SendResource:
		return decodeAs[SendResourceData](raw, strict)
	case SocialPost:
		return decodeAs[SocialPostData](raw, strict)
	case Webhook:
		return decodeAs[WebhookData](raw, strict)
	case Notify:
		return decodeAs[NotifyData](raw, strict)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
}

func decodeAs[T NodeData](raw []byte, strict bool) (NodeData, error) {
	var v T
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", v.Kind(), err)
	}
	return v, nil
}

// mergeData shallow-merges patch into data. Keys the type does not define, or
// values that do not fit a field, make the merge fail.
func mergeData(data NodeData, patch map[string]any) (NodeData, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	out, err := decodeData(data.Kind(), merged, true)
	if err != nil {
		return nil, err
	}
	if v, ok := out.(validator); ok && !v.valid() {
		return nil, fmt.Errorf("invalid %s data", data.Kind())
	}
	return out, nil
}
