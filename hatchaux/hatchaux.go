// Package hatchaux drives the hatch renderer over a whole image: it samples
// the screen, seeds strokes where the scene is dark and writes the result to
// SVG and PNG files.
package hatchaux

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	math "github.com/chewxy/math32"
	"github.com/klauspost/compress/gzip"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch"
	"github.com/soypat/hatch/canvas"
	"github.com/soypat/hatch/raymarch"
	"golang.org/x/sync/errgroup"
)

// Scene is a signed distance field lit by a point light.
type Scene struct {
	SDF   hatch.SDF3
	Light md3.Vec
}

type RenderConfig struct {
	SVGOutput io.Writer
	PNGOutput io.Writer
	// CompressSVG gzips the SVG output, see [canvas.ExportGzip].
	CompressSVG bool
	// Workers is the amount of grid columns traced concurrently. Non-positive uses all CPUs.
	// The result does not depend on the amount of workers.
	Workers int
	Silent  bool
	// Caption is written as the SVG title and drawn at the bottom of the PNG.
	Caption string
	// ColorByIntensity tints each stroke between the view's ink and highlight
	// colors according to the light intensity at its seed point.
	ColorByIntensity bool
}

// Stats summarizes the work done by a render.
type Stats struct {
	// Samples is the amount of primary rays traced.
	Samples int
	// Hits is the amount of primary rays that hit the scene.
	Hits int
	// Accepted is the amount of hits that seeded strokes.
	Accepted int
	Strokes  int
	// Evaluations counts all SDF evaluations.
	Evaluations uint64
	Elapsed     time.Duration
}

func (s *Stats) add(other Stats) {
	s.Samples += other.Samples
	s.Hits += other.Hits
	s.Accepted += other.Accepted
	s.Strokes += other.Strokes
}

type seededStroke struct {
	pts       raymarch.Polyline
	intensity float64
}

// Render hatches scene as seen from view and returns the recorded drawing.
// Grid columns are traced concurrently, each with its own random generator
// seeded from the view's seed and the column index, so the output is
// reproducible for a given view.
func Render(ctx context.Context, scene Scene, view View, cfg RenderConfig) (*canvas.Drawing, Stats, error) {
	var stats Stats
	if scene.SDF == nil {
		return nil, stats, errors.New("nil scene SDF")
	}
	err := view.Validate()
	if err != nil {
		return nil, stats, err
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	cam, _ := view.Camera()
	m, err := raymarch.NewMarcher(cam, view.marchConfig())
	if err != nil {
		return nil, stats, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sdf := raymarch.NewCountingSDF3(scene.SDF)
	watch := stopwatch()
	columns := make([][]seededStroke, view.TilesX)
	colStats := make([]Stats, view.TilesX)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ix := range view.TilesX {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(view.Seed, uint64(ix)))
			var err error
			columns[ix], colStats[ix], err = hatchColumn(gctx, m, sdf, scene.Light, view, ix, rng)
			return err
		})
	}
	err = g.Wait()
	if err != nil {
		return nil, stats, err
	}
	for i := range colStats {
		stats.add(colStats[i])
	}
	stats.Evaluations = sdf.Evaluations()
	stats.Elapsed = watch()
	log("traced", stats.Samples, "samples with", workers, "workers:", stats.Hits, "hits,",
		percentUint64(uint64(stats.Accepted), uint64(stats.Hits)), "percent of hits seeded", stats.Strokes, "strokes in", stats.Elapsed)
	log("evaluated SDF", stats.Evaluations, "times")

	ink, highlight, paper := view.inkColors()
	drawing := canvas.NewDrawing(float64(view.Width), float64(view.Height))
	if paper != nil {
		drawing.Rect(canvas.Rect{W: float64(view.Width), H: float64(view.Height), Fill: paper})
	}
	stroke := canvas.DefaultStroke()
	stroke.Color = ink
	stroke.Width = view.StrokeWidth
	var tint func(float32) color.Color
	if cfg.ColorByIntensity {
		tint = canvas.IntensityGradient(ink, highlight)
	}
	for _, col := range columns {
		for _, s := range col {
			if tint != nil {
				stroke.Color = tint(float32(s.intensity))
			}
			drawing.Polyline(s.pts, stroke)
		}
	}
	return drawing, stats, nil
}

// hatchColumn traces and hatches the samples of grid column ix. Random values
// are drawn from rng in a fixed order: sample jitter, seed acceptance and walk steps.
func hatchColumn(ctx context.Context, m *raymarch.Marcher, sdf hatch.SDF3, light md3.Vec, view View, ix int, rng raymarch.Rand) ([]seededStroke, Stats, error) {
	var stats Stats
	var strokes []seededStroke
	var buf []raymarch.Polyline
	dim := view.CanvasSize()
	for iy := range view.TilesY {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		screen := sampleScreen(ix, iy, view.TilesX, view.TilesY, view.Jitter, rng)
		stats.Samples++
		sp, ok, err := m.Intersect(sdf, screen, light)
		if err != nil {
			return nil, stats, fmt.Errorf("sample (%d,%d): %w", ix, iy, err)
		} else if !ok {
			continue
		}
		stats.Hits++
		// Darker regions are seeded more often.
		if rng.Float64() <= sp.Intensity() {
			continue
		}
		stats.Accepted++
		for _, angle := range view.HatchAngles {
			wcfg := view.walkConfig(angle)
			for range 2 {
				buf, err = m.AppendWalk(buf[:0], sdf, light, sp, dim, wcfg, rng)
				if err != nil {
					return nil, stats, fmt.Errorf("walk from sample (%d,%d): %w", ix, iy, err)
				}
				for _, pts := range buf {
					strokes = append(strokes, seededStroke{pts: pts, intensity: sp.Intensity()})
				}
				wcfg.StepScale = -wcfg.StepScale
			}
		}
	}
	stats.Strokes = len(strokes)
	return strokes, stats, nil
}

// RenderFiles renders scene and writes the outputs set in cfg.
func RenderFiles(ctx context.Context, scene Scene, view View, cfg RenderConfig) (Stats, error) {
	if cfg.SVGOutput == nil && cfg.PNGOutput == nil {
		return Stats{}, errors.New("RenderFiles requires output parameter in config")
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	drawing, stats, err := Render(ctx, scene, view, cfg)
	if err != nil {
		return stats, err
	}
	if cfg.SVGOutput != nil {
		watch := stopwatch()
		svg := canvas.NewSVG(float64(view.Width), float64(view.Height))
		svg.Title(cfg.Caption)
		drawing.Replay(svg)
		if cfg.CompressSVG {
			err = canvas.ExportGzip(svg, cfg.SVGOutput, gzip.BestCompression)
		} else {
			err = svg.Export(cfg.SVGOutput)
		}
		if err != nil {
			return stats, fmt.Errorf("writing SVG: %w", err)
		}
		log("wrote", outputName(cfg.SVGOutput, "SVG"), "in", watch())
	}
	if cfg.PNGOutput != nil {
		watch := stopwatch()
		pic := canvas.NewPNG(view.Width, view.Height)
		if cfg.Caption != "" {
			err = pic.SetCaption(cfg.Caption, float64(view.Height)/40)
			if err != nil {
				return stats, err
			}
		}
		drawing.Replay(pic)
		err = pic.Export(cfg.PNGOutput)
		if err != nil {
			return stats, fmt.Errorf("writing PNG: %w", err)
		}
		log("wrote", outputName(cfg.PNGOutput, "PNG"), "in", watch())
	}
	return stats, nil
}

// RenderShadedPNG writes the continuous shading of scene as a PNG image, one
// primary ray per pixel. It is useful to check lighting before hatching.
// A nil conversion maps intensity to grayscale with shadows in black.
func RenderShadedPNG(w io.Writer, scene Scene, view View, conversion func(float32) color.Color) error {
	if scene.SDF == nil {
		return errors.New("nil scene SDF")
	}
	err := view.Validate()
	if err != nil {
		return err
	}
	cam, _ := view.Camera()
	cfg := view.marchConfig()
	m, err := raymarch.NewMarcher(cam, cfg)
	if err != nil {
		return err
	}
	if conversion == nil {
		conversion = canvas.Grayscale(float32(cfg.Ambient))
	}
	_, _, paper := view.inkColors()
	renderer, err := raymarch.NewImageRenderer(m, conversion, paper)
	if err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, view.Width, view.Height))
	err = renderer.Render(scene.SDF, scene.Light, img)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func outputName(w io.Writer, fallback string) string {
	if fp, ok := w.(*os.File); ok {
		return fp.Name()
	}
	return fallback
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

func percentUint64(num, denom uint64) float32 {
	if denom == 0 {
		return 0
	}
	return math.Trunc(10000*float32(num)/float32(denom)) / 100
}
