package canvas

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo/float"
)

// SVG records drawing operations and encodes them as a Scalable Vector Graphics document.
type SVG struct {
	Drawing
	title string
	// Decimals is the amount of decimals written for every coordinate.
	Decimals int
}

var _ Exporter = (*SVG)(nil)

// NewSVG returns an SVG exporter of the given canvas size in pixels.
func NewSVG(width, height float64) *SVG {
	return &SVG{Drawing: *NewDrawing(width, height), Decimals: 2}
}

// Title sets the document title.
func (s *SVG) Title(title string) { s.title = title }

// Export implements [Exporter].
func (s *SVG) Export(w io.Writer) error {
	bw := bufio.NewWriter(w)
	doc := svg.New(bw)
	doc.Decimals = s.Decimals
	doc.Start(s.size.X, s.size.Y)
	if s.title != "" {
		doc.Title(s.title)
	}
	var xs, ys []float64
	for i := range s.ops {
		o := &s.ops[i]
		switch o.kind {
		case opRect:
			r := o.rect
			doc.Rect(r.X, r.Y, r.W, r.H, fillStyle(r.Fill))
		case opPolyline:
			xs, ys = xs[:0], ys[:0]
			for _, pt := range o.pts {
				xs = append(xs, pt.X)
				ys = append(ys, pt.Y)
			}
			doc.Polyline(xs, ys, strokeStyle(o.stroke, s.Decimals))
		}
	}
	doc.End()
	return bw.Flush()
}

func fillStyle(c color.Color) string {
	if c == nil {
		return "fill:none"
	}
	hex, alpha := svgColor(c)
	if alpha < 1 {
		return fmt.Sprintf("fill:%s;fill-opacity:%.3g", hex, alpha)
	}
	return "fill:" + hex
}

func strokeStyle(st Stroke, decimals int) string {
	var sb strings.Builder
	hex, alpha := svgColor(colorOrBlack(st.Color))
	sb.WriteString("fill:none;stroke:")
	sb.WriteString(hex)
	if alpha < 1 {
		sb.WriteString(";stroke-opacity:")
		sb.WriteString(strconv.FormatFloat(alpha, 'g', 3, 64))
	}
	sb.WriteString(";stroke-width:")
	sb.WriteString(strconv.FormatFloat(st.Width, 'f', decimals, 64))
	sb.WriteString(";stroke-linecap:")
	sb.WriteString(st.Cap.String())
	sb.WriteString(";stroke-linejoin:")
	sb.WriteString(st.Join.String())
	return sb.String()
}

// svgColor returns the hexadecimal notation of c without alpha and its opacity in [0,1].
func svgColor(c color.Color) (hex string, alpha float64) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", nc.R, nc.G, nc.B), float64(nc.A) / 255
}
