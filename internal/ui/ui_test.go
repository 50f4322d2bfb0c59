package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"campaign-flow/pkg/flowgraph"
)

func init() {
	color.NoColor = true
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer

	Table(&buf, []string{"Layer", "Nodes"}, [][]string{
		{"1", "trigger"},
		{"2", "welcome-email, wait"},
	})

	assert.Equal(t, ""+
		"  Layer  Nodes\n"+
		"  ─────  ───────────────────\n"+
		"  1      trigger\n"+
		"  2      welcome-email, wait\n", buf.String())
}

func TestTable_NoRows(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"Layer"}, nil)
	assert.Empty(t, buf.String())
}

func TestIcons(t *testing.T) {
	assert.Equal(t, "✓", StatusIcon(true))
	assert.Equal(t, "✗", StatusIcon(false))
	assert.Equal(t, "✗", SeverityIcon(flowgraph.SeverityError))
	assert.Equal(t, "⚠", SeverityIcon(flowgraph.SeverityWarning))
	assert.Equal(t, "■", Swatch("#10b981"))
	assert.Equal(t, " ", Swatch("green"))
}
