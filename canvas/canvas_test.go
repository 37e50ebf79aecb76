package canvas_test

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/soypat/geometry/md2"
	"github.com/soypat/hatch/canvas"
)

func zigzag(n int, y float64) []md2.Vec {
	pts := make([]md2.Vec, n)
	for i := range pts {
		pts[i] = md2.Vec{X: float64(10 * i), Y: y + float64(i%2)}
	}
	return pts
}

func TestDrawingReplay(t *testing.T) {
	d := canvas.NewDrawing(100, 50)
	d.Rect(canvas.Rect{W: 100, H: 50, Fill: color.White})
	pts := zigzag(4, 10)
	d.Polyline(pts, canvas.DefaultStroke())
	d.Polyline(pts[:1], canvas.DefaultStroke())
	d.Polyline(nil, canvas.DefaultStroke())
	d.Polyline(zigzag(2, 20), canvas.Stroke{Width: 2})
	if d.Len() != 3 {
		t.Fatalf("expected 3 recorded ops, got %d", d.Len())
	}
	pts[0].X = -1
	lines := d.Polylines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 polylines, got %d", len(lines))
	}
	if lines[0][0].X != 0 {
		t.Error("drawing retained caller's point slice")
	}
	cp := canvas.NewDrawing(100, 50)
	d.Replay(cp)
	if cp.Len() != d.Len() || len(cp.Polylines()) != 2 {
		t.Errorf("replay mismatch: %d ops vs %d", cp.Len(), d.Len())
	}
	d.Reset()
	if d.Len() != 0 || d.Size() != (md2.Vec{X: 100, Y: 50}) {
		t.Error("reset should clear ops and keep size")
	}
}

func TestSVGExport(t *testing.T) {
	s := canvas.NewSVG(200, 100)
	s.Title("hatch <test>")
	s.Rect(canvas.Rect{W: 200, H: 100, Fill: color.White})
	for i := range 5 {
		s.Polyline(zigzag(6, float64(10*i)), canvas.DefaultStroke())
	}
	s.Polyline(zigzag(1, 0), canvas.DefaultStroke())
	s.Polyline(zigzag(3, 0), canvas.Stroke{Color: color.NRGBA{R: 255, A: 128}, Width: 0.5, Cap: canvas.CapSquare, Join: canvas.JoinBevel})
	var buf bytes.Buffer
	err := s.Export(&buf)
	if err != nil {
		t.Fatal(err)
	}
	doc := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(doc), "<?xml") || !strings.Contains(doc, "<svg") || !strings.Contains(doc, "</svg>") {
		t.Fatalf("malformed document:\n%s", doc)
	}
	if n := strings.Count(doc, "<polyline"); n != 6 {
		t.Errorf("expected 6 polylines, got %d", n)
	}
	if !strings.Contains(doc, "hatch &lt;test&gt;") {
		t.Error("title not escaped or missing")
	}
	for _, want := range []string{
		"stroke:#000000", "stroke-linecap:round", "stroke-linejoin:round",
		"stroke:#ff0000", "stroke-opacity:0.502", "stroke-linecap:square", "stroke-linejoin:bevel",
		"fill:#ffffff",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

type failWriter struct{}

var errWrite = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestSVGExportWriteError(t *testing.T) {
	s := canvas.NewSVG(10, 10)
	s.Polyline(zigzag(3, 1), canvas.DefaultStroke())
	err := s.Export(failWriter{})
	if !errors.Is(err, errWrite) {
		t.Errorf("expected write error to surface, got %v", err)
	}
}

func TestPNGExport(t *testing.T) {
	const w, h = 64, 32
	p := canvas.NewPNG(w, h)
	p.Rect(canvas.Rect{W: w, H: h, Fill: color.White})
	p.Polyline([]md2.Vec{{X: 0, Y: h / 2}, {X: w, Y: h / 2}}, canvas.Stroke{Color: color.Black, Width: 4, Cap: canvas.CapButt})
	if img := p.Image(); img.Bounds().Dx() != w {
		t.Fatalf("rasterized image has unexpected size %v", img.Bounds())
	} else if r, _, _, _ := img.At(w/2, h/2).RGBA(); r>>8 > 32 {
		t.Errorf("stroke not rasterized before export, red=%d", r>>8)
	}
	err := p.SetCaption("hatch", 6)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = p.Export(&buf)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("unexpected image size %v", img.Bounds())
	}
	gray := func(x, y int) uint32 {
		r, g, b, _ := img.At(x, y).RGBA()
		return (r + g + b) / 3 >> 8
	}
	if v := gray(w/2, h/2); v > 32 {
		t.Errorf("stroke pixel should be dark, got %d", v)
	}
	if v := gray(w/2, 2); v < 223 {
		t.Errorf("background pixel should be light, got %d", v)
	}
	if err := p.SetCaption("x", 0); err == nil {
		t.Error("expected error for zero font size")
	}
}

func TestExportGzip(t *testing.T) {
	s := canvas.NewSVG(100, 100)
	for i := range 20 {
		s.Polyline(zigzag(20, float64(i)), canvas.DefaultStroke())
	}
	var plain, compressed bytes.Buffer
	if err := s.Export(&plain); err != nil {
		t.Fatal(err)
	}
	if err := canvas.ExportGzip(s, &compressed, gzip.BestCompression); err != nil {
		t.Fatal(err)
	}
	if compressed.Len() >= plain.Len() {
		t.Errorf("compressed size %d not smaller than %d", compressed.Len(), plain.Len())
	}
	zr, err := gzip.NewReader(&compressed)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain.Bytes()) {
		t.Error("decompressed export differs from plain export")
	}
	if err := canvas.ExportGzip(s, io.Discard, 42); err == nil {
		t.Error("expected error for invalid compression level")
	}
}
