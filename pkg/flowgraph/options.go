package flowgraph

// Option is one choice of an enumerated field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TeamMember is a person a task can be assigned to or a notification sent to.
type TeamMember struct {
	ID          string `json:"id" toml:"id"`
	DisplayName string `json:"display_name" toml:"display_name"`
}

// AllAdmins is the notify_to value that addresses every workspace admin.
const AllAdmins = "all_admins"

var TriggerTypes = []Option{
	{"new_contact", "New contact created"},
	{"tag_added", "Tag added"},
	{"pipeline_change", "Pipeline stage changed"},
	{"form_submitted", "Form submitted"},
	{"appointment_booked", "Appointment booked"},
	{"manual", "Manual enrollment"},
}

var ConditionTypes = []Option{
	{"has_tag", "Contact has tag"},
	{"pipeline_stage", "Pipeline stage is"},
	{"email_opened", "Opened last email"},
	{"email_clicked", "Clicked link in last email"},
	{"sms_replied", "Replied to SMS"},
	{"custom_field", "Custom field equals"},
}

var PipelineStages = []Option{
	{"new_lead", "New Lead"},
	{"contacted", "Contacted"},
	{"consultation_booked", "Consultation Booked"},
	{"proposal_sent", "Proposal Sent"},
	{"active_client", "Active Client"},
	{"lost", "Lost"},
}

var WaitUnits = []Option{
	{"minutes", "Minutes"},
	{"hours", "Hours"},
	{"days", "Days"},
	{"weeks", "Weeks"},
}

var Priorities = []Option{
	{"low", "Low"},
	{"medium", "Medium"},
	{"high", "High"},
	{"critical", "Critical"},
}

var Platforms = []Option{
	{"facebook", "Facebook"},
	{"instagram", "Instagram"},
	{"linkedin", "LinkedIn"},
	{"twitter", "X (Twitter)"},
	{"tiktok", "TikTok"},
}

var WebhookMethods = []Option{
	{"GET", "GET"},
	{"POST", "POST"},
	{"PUT", "PUT"},
}

// EmailPlaceholders are the merge fields an email body may reference.
var EmailPlaceholders = []string{
	"{{first_name}}", "{{last_name}}", "{{email}}", "{{phone}}", "{{company}}",
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

// conditionNeedsValue reports whether a condition type compares against a
// value the user supplies.
func conditionNeedsValue(conditionType string) bool {
	switch conditionType {
	case "has_tag", "pipeline_stage", "custom_field":
		return true
	}
	return false
}

func teamOptions(team []TeamMember) []Option {
	opts := make([]Option, 0, len(team))
	for _, m := range team {
		opts = append(opts, Option{Value: m.ID, Label: m.DisplayName})
	}
	return opts
}
