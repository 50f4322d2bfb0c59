package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CoversEveryType(t *testing.T) {
	c := NewCatalog(testSender)

	entries := c.Entries()

	require.Len(t, entries, len(NodeTypes))
	for i, typ := range NodeTypes {
		assert.Equal(t, typ, entries[i].Type)
		assert.NotEmpty(t, entries[i].Label, typ)
		assert.NotEmpty(t, entries[i].Icon, typ)
		assert.Regexp(t, `^#[0-9a-f]{6}$`, entries[i].Color, typ)
		assert.Equal(t, typ, entries[i].DefaultData().Kind(), "default data kind for %s", typ)
	}
}

func TestCatalog_Defaults(t *testing.T) {
	c := NewCatalog(testSender)
	tests := []struct {
		typ  NodeType
		want NodeData
	}{
		{Trigger, TriggerData{TriggerType: "new_contact"}},
		{SendEmail, SendEmailData{FromEmail: testSender}},
		{Wait, WaitData{Amount: 1, Unit: "days"}},
		{Condition, ConditionData{ConditionType: "has_tag"}},
		{MovePipeline, MovePipelineData{Stage: "new_lead"}},
		{CreateTask, CreateTaskData{Priority: "medium"}},
		{SendResource, SendResourceData{FromEmail: testSender}},
		{SocialPost, SocialPostData{Platform: "facebook"}},
		{Webhook, WebhookData{Method: "POST"}},
		{Notify, NotifyData{NotifyTo: AllAdmins}},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			entry, ok := c.Lookup(tt.typ)
			require.True(t, ok)
			assert.Equal(t, tt.want, entry.DefaultData())
		})
	}
}

func TestCatalog_LookupUnknown(t *testing.T) {
	_, ok := NewCatalog(testSender).Lookup("fax")
	assert.False(t, ok)
}

func TestCatalog_EntriesIsACopy(t *testing.T) {
	c := NewCatalog(testSender)

	entries := c.Entries()
	entries[0].Label = "changed"

	got, _ := c.Lookup(entries[0].Type)
	assert.Equal(t, "Trigger", got.Label)
}

func TestCatalog_Palette(t *testing.T) {
	groups := NewCatalog(testSender).Palette()

	var cats []Category
	total := 0
	for _, g := range groups {
		cats = append(cats, g.Category)
		total += len(g.Entries)
		for _, e := range g.Entries {
			assert.Equal(t, g.Category, e.Category)
		}
	}
	assert.Equal(t, Categories, cats)
	assert.Equal(t, len(NodeTypes), total)
}
