package canvas

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/soypat/geometry/md2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// PNG rasterizes drawing operations as they arrive and encodes the result as a PNG image.
type PNG struct {
	ctx     *gg.Context
	caption string
	face    font.Face
}

var _ Exporter = (*PNG)(nil)

// NewPNG returns a PNG exporter of the given size in pixels with a transparent background.
func NewPNG(width, height int) *PNG {
	return &PNG{ctx: gg.NewContext(width, height)}
}

// Rect implements [Sink].
func (p *PNG) Rect(r Rect) {
	if r.Fill == nil {
		return
	}
	p.ctx.DrawRectangle(r.X, r.Y, r.W, r.H)
	p.ctx.SetColor(r.Fill)
	p.ctx.Fill()
}

// Polyline implements [Sink].
func (p *PNG) Polyline(pts []md2.Vec, s Stroke) {
	if len(pts) < 2 {
		return
	}
	ctx := p.ctx
	ctx.SetColor(colorOrBlack(s.Color))
	ctx.SetLineWidth(s.Width)
	switch s.Cap {
	case CapRound:
		ctx.SetLineCapRound()
	case CapSquare:
		ctx.SetLineCapSquare()
	default:
		ctx.SetLineCapButt()
	}
	if s.Join == JoinRound {
		ctx.SetLineJoinRound()
	} else {
		// Rasterizer supports no miter joins.
		ctx.SetLineJoinBevel()
	}
	ctx.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		ctx.LineTo(pt.X, pt.Y)
	}
	ctx.Stroke()
}

// SetCaption sets text drawn centered at the bottom of the image on export
// using the Go Regular font at size points.
func (p *PNG) SetCaption(caption string, size float64) error {
	if size <= 0 {
		return fmt.Errorf("invalid caption font size %v", size)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	p.face = truetype.NewFace(f, &truetype.Options{Size: size})
	p.caption = caption
	return nil
}

// Image returns the rasterized image. Captions are not drawn until Export.
func (p *PNG) Image() image.Image { return p.ctx.Image() }

// Export implements [Exporter].
func (p *PNG) Export(w io.Writer) error {
	if p.caption != "" && p.face != nil {
		ctx := p.ctx
		ctx.SetFontFace(p.face)
		ctx.SetColor(color.Black)
		h := float64(ctx.Height())
		margin := p.face.Metrics().Height.Ceil()
		ctx.DrawStringAnchored(p.caption, float64(ctx.Width())/2, h-float64(margin), 0.5, 0.5)
	}
	return p.ctx.EncodePNG(w)
}
