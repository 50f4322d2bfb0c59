package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-flow/pkg/flowfile"
	"campaign-flow/services/flow"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FLOW_CONFIG", "")
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSample(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	_, err := run(t, "sample", path)
	require.NoError(t, err)
	return path
}

func TestValidate_Sample(t *testing.T) {
	path := writeSample(t, "welcome.yaml")

	out, err := run(t, "validate", path)

	require.NoError(t, err)
	assert.Contains(t, out, "New Contact Welcome is ready to activate")
}

func TestValidate_ReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Broken
nodes:
  - id: t
    type: trigger
    x: 0
    y: 0
    data:
      trigger_type: tag_added
    label: Trigger
`), 0o644))

	out, err := run(t, "validate", path)

	assert.EqualError(t, err, "Broken has 1 error(s)")
	assert.Contains(t, out, "empty_field")
	assert.Contains(t, out, "Trigger: tag is required")
}

func TestLayers_Sample(t *testing.T) {
	path := writeSample(t, "welcome.json")

	out, err := run(t, "layers", path)

	require.NoError(t, err)
	assert.Contains(t, out, "engaged-tag, reminder-sms")
	assert.NotContains(t, out, "loops back")
}

func TestArrange_WritesPositions(t *testing.T) {
	path := writeSample(t, "welcome.json")
	arranged := filepath.Join(filepath.Dir(path), "arranged.yaml")

	_, err := run(t, "arrange", path, "-o", arranged)
	require.NoError(t, err)

	f, err := flowfile.Read(arranged)
	require.NoError(t, err)
	g := f.Graph()
	trigger, _ := g.Node("trigger")
	engaged, _ := g.Node("engaged-tag")
	reminder, _ := g.Node("reminder-sms")
	assert.Equal(t, 100.0, trigger.X)
	assert.Equal(t, 60.0, trigger.Y)
	assert.Equal(t, engaged.Y, reminder.Y)
	assert.Less(t, engaged.X, reminder.X)
	assert.Len(t, f.Edges, 6)
}

func TestApply_Commands(t *testing.T) {
	path := writeSample(t, "welcome.json")
	script := filepath.Join(filepath.Dir(path), "edits.jsonl")
	require.NoError(t, os.WriteFile(script, []byte(`# tag openers twice
{"op":"add_node","id":"vip","type":"add_tag"}
{"op":"update_node_data","id":"vip","data":{"tag":"vip"}}
{"op":"add_edge","id":"e7","from":"engaged-tag","to":"vip"}
{"op":"add_edge","from":"vip","to":"vip"}
`), 0o644))

	out, err := run(t, "apply", path, script)
	require.NoError(t, err)
	assert.Contains(t, out, "✗ "+script+":5", "self loops are rejected")

	f, err := flowfile.Read(path)
	require.NoError(t, err)
	assert.Len(t, f.Nodes, 8)
	assert.Len(t, f.Edges, 7)
}

func TestApply_BadCommand(t *testing.T) {
	path := writeSample(t, "welcome.json")
	script := filepath.Join(filepath.Dir(path), "edits.jsonl")
	require.NoError(t, os.WriteFile(script, []byte(`{"op":"teleport"}`), 0o644))

	_, err := run(t, "apply", path, script)

	assert.ErrorContains(t, err, `edits.jsonl:1: unknown command op "teleport"`)
}

func TestPreview_ForcedBranch(t *testing.T) {
	path := writeSample(t, "welcome.yaml")

	out, err := run(t, "preview", path, "--branch", "opened=yes", "--contact", "first_name=Alice")

	require.NoError(t, err)
	assert.Contains(t, out, "engaged-tag")
	assert.NotContains(t, out, "reminder-sms")
	assert.Contains(t, out, "completed after 2d")
	assert.Contains(t, out, "tags:  engaged")
}

func TestPreview_JSON(t *testing.T) {
	path := writeSample(t, "welcome.yaml")

	out, err := run(t, "preview", path, "--json", "--tag", "vip", "--stage", "new_lead")
	require.NoError(t, err)

	var res flow.PreviewResults
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "completed", res.Status)
	assert.Len(t, res.Steps, 6)
	assert.Equal(t, []string{"vip"}, res.Contact.Tags)
	assert.Equal(t, "new_lead", res.Contact.Stage)
}

func TestPreview_RejectsBadBranch(t *testing.T) {
	path := writeSample(t, "welcome.yaml")

	_, err := run(t, "preview", path, "--branch", "opened=maybe")

	assert.ErrorContains(t, err, "want yes or no")
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "catalog")

	require.NoError(t, err)
	assert.Contains(t, out, "ENTRY")
	assert.Contains(t, out, "send_email")
	assert.Contains(t, out, "Email the contact")
}

func TestFields_WithConfiguredTeam(t *testing.T) {
	path := writeSample(t, "welcome.json")
	cfgPath := filepath.Join(filepath.Dir(path), "flow.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[[editor.team]]
id = "u1"
display_name = "Dana"
`), 0o644))

	out, err := run(t, "--config", cfgPath, "fields", path, "reminder-sms")
	require.NoError(t, err)
	assert.Contains(t, out, "Reminder SMS (send_sms)")
	assert.Contains(t, out, "segment(s)]")

	out, err = run(t, "--config", cfgPath, "fields", path, "follow-up-task")
	require.NoError(t, err)
	assert.Contains(t, out, "High (high)")

	_, err = run(t, "fields", path, "nope")
	assert.EqualError(t, err, `node "nope" not found`)
}

func TestConvert(t *testing.T) {
	path := writeSample(t, "welcome.json")
	out := filepath.Join(filepath.Dir(path), "welcome.yml")

	_, err := run(t, "convert", path, out)
	require.NoError(t, err)

	from, err := flowfile.Read(path)
	require.NoError(t, err)
	to, err := flowfile.Read(out)
	require.NoError(t, err)
	assert.Equal(t, from, to)
}
