package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_ToCanvas(t *testing.T) {
	v := Viewport{PanX: 100, PanY: 50, Zoom: 2}

	got := v.ToCanvas(Point{X: 300, Y: 150})

	assert.Equal(t, Point{X: 100, Y: 50}, got)
	assert.Equal(t, Point{X: 300, Y: 150}, v.ToScreen(got))
}

func TestViewport_ZoomIsClamped(t *testing.T) {
	v := DefaultViewport()

	assert.Equal(t, MinZoom, v.WithZoom(0.1).Zoom)
	assert.Equal(t, MaxZoom, v.WithZoom(5).Zoom)
	assert.Equal(t, 1.5, v.WithZoom(1.5).Zoom)
}

func TestViewport_ZoomAtKeepsAnchorFixed(t *testing.T) {
	v := Viewport{PanX: 40, PanY: -20, Zoom: 1}
	anchor := Point{X: 250, Y: 180}
	before := v.ToCanvas(anchor)

	v = v.ZoomAt(anchor, 1.75)

	after := v.ToCanvas(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.Equal(t, 1.75, v.Zoom)
}

func TestViewport_PanBy(t *testing.T) {
	v := DefaultViewport().PanBy(15, -5)

	assert.Equal(t, Viewport{PanX: 15, PanY: -5, Zoom: 1}, v)
}

func TestHandlePos(t *testing.T) {
	n := Node{ID: "n", Type: Condition, X: 100, Y: 200}

	assert.Equal(t, Point{X: 100 + NodeWidth/2, Y: 200}, HandlePos(n, AnchorTop))
	assert.Equal(t, Point{X: 100 + NodeWidth/2, Y: 200 + NodeHeight}, HandlePos(n, AnchorDefault))
	assert.Equal(t, Point{X: 100 + NodeWidth*0.3, Y: 200 + NodeHeight}, HandlePos(n, AnchorYes))
	assert.Equal(t, Point{X: 100 + NodeWidth*0.7, Y: 200 + NodeHeight}, HandlePos(n, AnchorNo))
}

func TestHandlePos_YesLeftOfNo(t *testing.T) {
	for _, n := range []Node{
		{X: 0, Y: 0},
		{X: -500, Y: 12},
		{X: 1e6, Y: -3},
		{X: 0.1, Y: 0.1},
	} {
		assert.Less(t, HandlePos(n, AnchorYes).X, HandlePos(n, AnchorNo).X)
		assert.Equal(t, HandlePos(n, AnchorYes), HandlePos(n, AnchorYes), "deterministic")
	}
}

func TestNewCurve_ControlPoints(t *testing.T) {
	c := NewCurve(Point{X: 10, Y: 0}, Point{X: 200, Y: 100})

	assert.Equal(t, Point{X: 10, Y: 50}, c.C1, "directly below the source")
	assert.Equal(t, Point{X: 200, Y: 50}, c.C2, "directly above the target")
}

func TestNewCurve_OffsetIsCapped(t *testing.T) {
	c := NewCurve(Point{X: 0, Y: 0}, Point{X: 0, Y: 1000})

	assert.Equal(t, CurveMaxOffset, c.C1.Y)
	assert.Equal(t, 1000-CurveMaxOffset, c.C2.Y)
}

func TestCurve_EndpointsAndPath(t *testing.T) {
	c := NewCurve(Point{X: 0, Y: 0}, Point{X: 40, Y: 60})

	assert.Equal(t, c.From, c.At(0))
	assert.Equal(t, c.To, c.At(1))
	assert.Equal(t, "M 0 0 C 0 30, 40 30, 40 60", c.Path())
}

func TestCurve_DistanceTo(t *testing.T) {
	c := NewCurve(Point{X: 0, Y: 0}, Point{X: 0, Y: 100})

	assert.InDelta(t, 0, c.DistanceTo(Point{X: 0, Y: 50}), 1e-9)
	assert.InDelta(t, 5, c.DistanceTo(Point{X: 5, Y: 50}), 1e-9)
}

func TestNodeAt(t *testing.T) {
	nodes := []Node{
		{ID: "a", X: 0, Y: 0},
		{ID: "b", X: 100, Y: 0},
	}

	got, ok := NodeAt(nodes, Point{X: 150, Y: 10}, "")
	assert.True(t, ok)
	assert.Equal(t, "a", got.ID, "first match wins")

	got, ok = NodeAt(nodes, Point{X: 150, Y: 10}, "a")
	assert.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = NodeAt(nodes, Point{X: 0, Y: NodeHeight + 1}, "")
	assert.False(t, ok)
}

func TestEdgeCurve_MissingEndpoint(t *testing.T) {
	_, ok := EdgeCurve([]Node{{ID: "a"}}, Edge{From: "a", To: "b"})
	assert.False(t, ok)
}

func TestEdgeHitAreaIsWiderThanStroke(t *testing.T) {
	assert.Greater(t, EdgeHitWidth, EdgeStrokeWidth)
}
