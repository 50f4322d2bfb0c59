package flowgraph

// Category groups node types in the palette.
type Category string

const (
	CategoryEntry    Category = "entry"
	CategoryAction   Category = "action"
	CategoryFlow     Category = "flow"
	CategorySocial   Category = "social"
	CategoryAdvanced Category = "advanced"
)

// Categories lists palette categories in display order.
var Categories = []Category{CategoryEntry, CategoryAction, CategoryFlow, CategorySocial, CategoryAdvanced}

// CatalogEntry is the display metadata and default configuration of a node type.
type CatalogEntry struct {
	Type        NodeType `json:"type"`
	Label       string   `json:"label"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Category    Category `json:"category"`
	Description string   `json:"description"`

	defaults func() NodeData
}

// DefaultData returns a fresh copy of the data stamped onto new nodes.
func (e CatalogEntry) DefaultData() NodeData {
	return e.defaults()
}

// Catalog is the immutable registry of node types. Build one with NewCatalog
// and pass it to the reducer and the editor.
type Catalog struct {
	entries []CatalogEntry
	index   map[NodeType]int
}

// NewCatalog builds the catalog. defaultSender is the from address stamped onto
// new email and resource nodes.
func NewCatalog(defaultSender string) *Catalog {
	entries := []CatalogEntry{
		{
			Type: Trigger, Label: "Trigger", Icon: "zap", Color: "#10b981",
			Category: CategoryEntry, Description: "Starts the flow when an event happens",
			defaults: func() NodeData { return TriggerData{TriggerType: "new_contact"} },
		},
		{
			Type: SendEmail, Label: "Send Email", Icon: "mail", Color: "#3b82f6",
			Category: CategoryAction, Description: "Email the contact",
			defaults: func() NodeData { return SendEmailData{FromEmail: defaultSender} },
		},
		{
			Type: SendSMS, Label: "Send SMS", Icon: "message-square", Color: "#8b5cf6",
			Category: CategoryAction, Description: "Text the contact",
			defaults: func() NodeData { return SendSMSData{} },
		},
		{
			Type: Wait, Label: "Wait", Icon: "clock", Color: "#f59e0b",
			Category: CategoryFlow, Description: "Pause before the next step",
			defaults: func() NodeData { return WaitData{Amount: 1, Unit: "days"} },
		},
		{
			Type: Condition, Label: "If / Else", Icon: "git-branch", Color: "#f97316",
			Category: CategoryFlow, Description: "Branch on a contact condition",
			defaults: func() NodeData { return ConditionData{ConditionType: "has_tag"} },
		},
		{
			Type: AddTag, Label: "Add Tag", Icon: "tag", Color: "#14b8a6",
			Category: CategoryAction, Description: "Tag the contact",
			defaults: func() NodeData { return AddTagData{} },
		},
		{
			Type: RemoveTag, Label: "Remove Tag", Icon: "tag", Color: "#ef4444",
			Category: CategoryAction, Description: "Remove a tag from the contact",
			defaults: func() NodeData { return RemoveTagData{} },
		},
		{
			Type: MovePipeline, Label: "Move Pipeline Stage", Icon: "trending-up", Color: "#6366f1",
			Category: CategoryAction, Description: "Move the contact to a pipeline stage",
			defaults: func() NodeData { return MovePipelineData{Stage: "new_lead"} },
		},
		{
			Type: CreateTask, Label: "Create Task", Icon: "check-square", Color: "#0ea5e9",
			Category: CategoryAction, Description: "Create a task for the team",
			defaults: func() NodeData { return CreateTaskData{Priority: "medium"} },
		},
		{
			Type: SendResource, Label: "Send Resource", Icon: "file-text", Color: "#22c55e",
			Category: CategoryAction, Description: "Email a guide, PDF or link",
			defaults: func() NodeData { return SendResourceData{FromEmail: defaultSender} },
		},
		{
			Type: SocialPost, Label: "Social Post", Icon: "share-2", Color: "#ec4899",
			Category: CategorySocial, Description: "Schedule a social media post",
			defaults: func() NodeData { return SocialPostData{Platform: "facebook"} },
		},
		{
			Type: Webhook, Label: "Webhook", Icon: "globe", Color: "#64748b",
			Category: CategoryAdvanced, Description: "Call an external URL",
			defaults: func() NodeData { return WebhookData{Method: "POST"} },
		},
		{
			Type: Notify, Label: "Notify Team", Icon: "bell", Color: "#eab308",
			Category: CategoryAdvanced, Description: "Send an internal notification",
			defaults: func() NodeData { return NotifyData{NotifyTo: AllAdmins} },
		},
	}
	index := make(map[NodeType]int, len(entries))
	for i, e := range entries {
		index[e.Type] = i
	}
	return &Catalog{entries: entries, index: index}
}

// Lookup returns the entry for t.
func (c *Catalog) Lookup(t NodeType) (CatalogEntry, bool) {
	i, ok := c.index[t]
	if !ok {
		return CatalogEntry{}, false
	}
	return c.entries[i], true
}

// Entries returns every entry in palette order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// PaletteGroup is one category section of the node palette.
type PaletteGroup struct {
	Category Category       `json:"category"`
	Entries  []CatalogEntry `json:"entries"`
}

// Palette groups the entries by category, skipping empty categories.
func (c *Catalog) Palette() []PaletteGroup {
	var groups []PaletteGroup
	for _, cat := range Categories {
		var entries []CatalogEntry
		for _, e := range c.entries {
			if e.Category == cat {
				entries = append(entries, e)
			}
		}
		if len(entries) > 0 {
			groups = append(groups, PaletteGroup{Category: cat, Entries: entries})
		}
	}
	return groups
}
