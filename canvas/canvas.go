// Package canvas provides 2D drawing sinks for hatch strokes: an in-memory
// recorder, an SVG writer and a PNG rasterizer. All coordinates are canvas
// coordinates with the origin at the top left corner and y pointing down.
package canvas

import (
	"image/color"
	"io"

	"github.com/soypat/geometry/md2"
)

// Cap is the shape drawn at the open ends of a polyline.
type Cap uint8

const (
	CapButt Cap = iota
	CapRound
	CapSquare
)

func (c Cap) String() string {
	switch c {
	case CapButt:
		return "butt"
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	}
	return "invalid"
}

// Join is the shape drawn where two polyline segments meet.
type Join uint8

const (
	JoinMiter Join = iota
	JoinRound
	JoinBevel
)

func (j Join) String() string {
	switch j {
	case JoinMiter:
		return "miter"
	case JoinRound:
		return "round"
	case JoinBevel:
		return "bevel"
	}
	return "invalid"
}

// Rect is an axis aligned filled rectangle.
type Rect struct {
	X, Y, W, H float64
	Fill       color.Color
}

// Stroke describes how a polyline is drawn. A nil Color is drawn black.
type Stroke struct {
	Color color.Color
	Width float64
	Cap   Cap
	Join  Join
}

// DefaultStroke returns a thin black pen with round ends, the look of a hatch stroke.
func DefaultStroke() Stroke {
	return Stroke{Color: color.Black, Width: 1, Cap: CapRound, Join: JoinRound}
}

// Sink receives drawing operations in painting order.
// Polylines with less than 2 points are ignored by every Sink in this package.
type Sink interface {
	Rect(r Rect)
	Polyline(pts []md2.Vec, s Stroke)
}

// Exporter is a Sink that can encode what was drawn to a file format.
type Exporter interface {
	Sink
	Export(w io.Writer) error
}

type opKind uint8

const (
	opRect opKind = iota
	opPolyline
)

type op struct {
	kind   opKind
	rect   Rect
	pts    []md2.Vec
	stroke Stroke
}

// Drawing records drawing operations in memory so that they may be replayed
// onto one or more sinks.
type Drawing struct {
	size md2.Vec
	ops  []op
}

var _ Sink = (*Drawing)(nil)

// NewDrawing returns an empty drawing of the given canvas size.
func NewDrawing(width, height float64) *Drawing {
	return &Drawing{size: md2.Vec{X: width, Y: height}}
}

// Size returns the canvas size the drawing was created with.
func (d *Drawing) Size() md2.Vec { return d.size }

// Rect implements [Sink].
func (d *Drawing) Rect(r Rect) {
	d.ops = append(d.ops, op{kind: opRect, rect: r})
}

// Polyline implements [Sink]. pts is not retained.
func (d *Drawing) Polyline(pts []md2.Vec, s Stroke) {
	if len(pts) < 2 {
		return
	}
	d.ops = append(d.ops, op{kind: opPolyline, pts: append([]md2.Vec(nil), pts...), stroke: s})
}

// Len returns the number of recorded operations.
func (d *Drawing) Len() int { return len(d.ops) }

// Polylines returns the recorded polylines in drawing order. The returned
// point slices must not be modified.
func (d *Drawing) Polylines() [][]md2.Vec {
	var lines [][]md2.Vec
	for i := range d.ops {
		if d.ops[i].kind == opPolyline {
			lines = append(lines, d.ops[i].pts)
		}
	}
	return lines
}

// Replay draws every recorded operation onto dst in the order they were recorded.
func (d *Drawing) Replay(dst Sink) {
	for i := range d.ops {
		o := &d.ops[i]
		switch o.kind {
		case opRect:
			dst.Rect(o.rect)
		case opPolyline:
			dst.Polyline(o.pts, o.stroke)
		}
	}
}

// Reset discards all recorded operations keeping the allocated memory.
func (d *Drawing) Reset() {
	clear(d.ops)
	d.ops = d.ops[:0]
}

func colorOrBlack(c color.Color) color.Color {
	if c == nil {
		return color.Black
	}
	return c
}
