package flowgraph

import (
	"fmt"
	"math"
)

// Canvas dimensions in design units.
const (
	NodeWidth  = 220.0
	NodeHeight = 72.0
	// NodeGap is the vertical spacing used when stacking a new node below the
	// previous one.
	NodeGap = 48.0

	MinZoom = 0.4
	MaxZoom = 2.0

	// CurveMaxOffset caps the distance between a curve endpoint and its
	// control point.
	CurveMaxOffset = 80.0

	EdgeStrokeWidth = 2.0
	// EdgeHitWidth is the width of the invisible stroke that catches clicks
	// near an edge.
	EdgeHitWidth = 16.0
)

// Point is a position in canvas or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Rect is an axis-aligned box.
type Rect struct {
	Min Point
	Max Point
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Bounds is the fixed-size box a node occupies.
func Bounds(n Node) Rect {
	return Rect{
		Min: Point{X: n.X, Y: n.Y},
		Max: Point{X: n.X + NodeWidth, Y: n.Y + NodeHeight},
	}
}

// NodeAt returns the first node in nodes whose box contains p, skipping the
// node with id exclude.
func NodeAt(nodes []Node, p Point, exclude string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == exclude {
			continue
		}
		if Bounds(n).Contains(p) {
			return n, true
		}
	}
	return Node{}, false
}

// Anchor names a connection point on a node.
type Anchor string

const (
	AnchorTop     Anchor = "top"
	AnchorDefault Anchor = Anchor(HandleDefault)
	AnchorYes     Anchor = Anchor(HandleYes)
	AnchorNo      Anchor = Anchor(HandleNo)
)

// HandlePos returns the canvas position of a node's anchor. Unknown anchors
// resolve to the default output.
func HandlePos(n Node, which Anchor) Point {
	switch which {
	case AnchorTop:
		return Point{X: n.X + NodeWidth/2, Y: n.Y}
	case AnchorYes:
		return Point{X: n.X + NodeWidth*0.3, Y: n.Y + NodeHeight}
	case AnchorNo:
		return Point{X: n.X + NodeWidth*0.7, Y: n.Y + NodeHeight}
	default:
		return Point{X: n.X + NodeWidth/2, Y: n.Y + NodeHeight}
	}
}

// Curve is a cubic Bézier connector.
type Curve struct {
	From Point `json:"from"`
	C1   Point `json:"c1"`
	C2   Point `json:"c2"`
	To   Point `json:"to"`
}

// NewCurve builds a connector that leaves a downward and enters b from above.
func NewCurve(a, b Point) Curve {
	off := math.Min(math.Abs(b.Y-a.Y)*0.5, CurveMaxOffset)
	return Curve{
		From: a,
		C1:   Point{X: a.X, Y: a.Y + off},
		C2:   Point{X: b.X, Y: b.Y - off},
		To:   b,
	}
}

// At evaluates the curve at t in [0, 1].
func (c Curve) At(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return Point{
		X: a*c.From.X + b*c.C1.X + d*c.C2.X + e*c.To.X,
		Y: a*c.From.Y + b*c.C1.Y + d*c.C2.Y + e*c.To.Y,
	}
}

// Midpoint is where edge labels are drawn.
func (c Curve) Midpoint() Point {
	return c.At(0.5)
}

// Path renders the curve as SVG path data.
func (c Curve) Path() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		c.From.X, c.From.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.To.X, c.To.Y)
}

const curveSamples = 32

// DistanceTo approximates the shortest distance from p to the curve.
func (c Curve) DistanceTo(p Point) float64 {
	best := math.Inf(1)
	prev := c.From
	for i := 1; i <= curveSamples; i++ {
		next := c.At(float64(i) / curveSamples)
		if d := segmentDistance(p, prev, next); d < best {
			best = d
		}
		prev = next
	}
	return best
}

func segmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	ap := p.Sub(a)
	t := (ap.X*ab.X + ap.Y*ab.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := Point{X: a.X + t*ab.X, Y: a.Y + t*ab.Y}
	return math.Hypot(p.X-closest.X, p.Y-closest.Y)
}

// EdgeCurve projects an edge onto the canvas. ok is false when either endpoint
// is missing from nodes.
func EdgeCurve(nodes []Node, e Edge) (Curve, bool) {
	var from, to *Node
	for i := range nodes {
		if nodes[i].ID == e.From {
			from = &nodes[i]
		}
		if nodes[i].ID == e.To {
			to = &nodes[i]
		}
	}
	if from == nil || to == nil {
		return Curve{}, false
	}
	return NewCurve(HandlePos(*from, Anchor(e.FromHandle)), HandlePos(*to, AnchorTop)), true
}

// Viewport is the pan and zoom applied when drawing the canvas. Screen
// coordinates are canvas coordinates times Zoom plus Pan.
type Viewport struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is unpanned at 100%.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ToCanvas maps a screen point into canvas space.
func (v Viewport) ToCanvas(p Point) Point {
	return Point{X: (p.X - v.PanX) / v.Zoom, Y: (p.Y - v.PanY) / v.Zoom}
}

// ToScreen maps a canvas point into screen space.
func (v Viewport) ToScreen(p Point) Point {
	return Point{X: p.X*v.Zoom + v.PanX, Y: p.Y*v.Zoom + v.PanY}
}

// WithZoom sets the zoom level, clamped, leaving the pan untouched.
func (v Viewport) WithZoom(z float64) Viewport {
	v.Zoom = ClampZoom(z)
	return v
}

// ZoomAt sets the zoom level while keeping the canvas point under anchor (a
// screen point) in place.
func (v Viewport) ZoomAt(anchor Point, z float64) Viewport {
	fixed := v.ToCanvas(anchor)
	v.Zoom = ClampZoom(z)
	v.PanX = anchor.X - fixed.X*v.Zoom
	v.PanY = anchor.Y - fixed.Y*v.Zoom
	return v
}

// PanBy shifts the viewport by a screen-space delta.
func (v Viewport) PanBy(dx, dy float64) Viewport {
	v.PanX += dx
	v.PanY += dy
	return v
}
