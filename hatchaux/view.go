package hatchaux

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch/canvas"
	"github.com/soypat/hatch/raymarch"
)

// View configures the camera, sampling grid and hatching style of a render.
// It is usually read from a JSON file with [ReadViewJSON].
type View struct {
	Eye    md3.Vec `json:"eye"`
	LookAt md3.Vec `json:"look_at"`
	Up     md3.Vec `json:"up"`
	// FOV is the vertical field of view in degrees.
	FOV    float64 `json:"fov"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	// TilesX and TilesY set the size of the grid of primary rays, one per tile.
	TilesX int `json:"tiles_x"`
	TilesY int `json:"tiles_y"`
	// Jitter offsets each sample randomly within its tile instead of using the tile corner.
	Jitter bool   `json:"jitter"`
	Seed   uint64 `json:"seed"`
	// HatchAngles lists the walk angles in degrees. Every accepted sample
	// walks once per angle in each direction.
	HatchAngles []float64 `json:"hatch_angles"`
	Steps       int       `json:"steps"`
	StepScale   float64   `json:"step_scale"`
	StrokeWidth float64   `json:"stroke_width"`
	// Ink, Highlight and Paper are hex colors. Highlight is used for strokes
	// seeded in lit regions when coloring by intensity. An empty Paper leaves the background transparent.
	Ink       string `json:"ink"`
	Highlight string `json:"highlight"`
	Paper     string `json:"paper"`
	// March overrides the ray marching parameters when not nil.
	March *raymarch.Config `json:"march,omitempty"`
}

// DefaultView returns the view of a unit sized scene at the origin seen from +Z.
func DefaultView() View {
	return View{
		Eye:         md3.Vec{Z: 5},
		Up:          md3.Vec{Y: 1},
		FOV:         30,
		Width:       800,
		Height:      600,
		TilesX:      80,
		TilesY:      60,
		Jitter:      true,
		Seed:        1,
		HatchAngles: []float64{0},
		Steps:       40,
		StepScale:   0.02,
		StrokeWidth: 0.7,
		Ink:         "#000000",
		Highlight:   "#9a9a9a",
		Paper:       "#ffffff",
	}
}

// ReadViewJSON decodes a view from r. Fields absent in the JSON keep the
// values of [DefaultView], and fields absent in the march object keep the
// values of [raymarch.DefaultConfig]. Unknown fields are an error.
func ReadViewJSON(r io.Reader) (View, error) {
	view := DefaultView()
	march := raymarch.DefaultConfig()
	view.March = &march
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	err := dec.Decode(&view)
	if err != nil {
		return View{}, fmt.Errorf("decoding view: %w", err)
	}
	if view.March != nil && *view.March == raymarch.DefaultConfig() {
		view.March = nil
	}
	err = view.Validate()
	if err != nil {
		return View{}, err
	}
	return view, nil
}

// Validate checks the view parameters. The camera is validated by [raymarch.NewCamera].
func (v View) Validate() error {
	var errs []error
	if v.Width <= 0 || v.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid canvas size %dx%d", v.Width, v.Height))
	}
	if v.TilesX <= 0 || v.TilesY <= 0 {
		errs = append(errs, fmt.Errorf("invalid tile grid %dx%d", v.TilesX, v.TilesY))
	}
	if len(v.HatchAngles) == 0 {
		errs = append(errs, errors.New("no hatch angles"))
	}
	for _, a := range v.HatchAngles {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			errs = append(errs, fmt.Errorf("invalid hatch angle %v", a))
		}
	}
	if err := v.walkConfig(0).Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(v.StrokeWidth > 0) {
		errs = append(errs, fmt.Errorf("invalid stroke width %v", v.StrokeWidth))
	}
	for _, hex := range []string{v.Ink, v.Highlight} {
		if _, err := canvas.ParseHexColor(hex); err != nil {
			errs = append(errs, err)
		}
	}
	if v.Paper != "" {
		if _, err := canvas.ParseHexColor(v.Paper); err != nil {
			errs = append(errs, err)
		}
	}
	if v.March != nil {
		if err := v.March.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	_, err := v.Camera()
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Camera returns the camera described by the view.
func (v View) Camera() (raymarch.Camera, error) {
	return raymarch.NewCamera(v.Eye, v.LookAt, v.Up, v.FOV, float64(v.Width)/float64(v.Height))
}

// CanvasSize returns the canvas dimensions as a vector.
func (v View) CanvasSize() md2.Vec {
	return md2.Vec{X: float64(v.Width), Y: float64(v.Height)}
}

func (v View) marchConfig() raymarch.Config {
	if v.March != nil {
		return *v.March
	}
	return raymarch.DefaultConfig()
}

func (v View) walkConfig(angleDeg float64) raymarch.WalkConfig {
	return raymarch.WalkConfig{
		Steps:     v.Steps,
		StepScale: v.StepScale,
		Angle:     angleDeg * math.Pi / 180,
	}
}

func (v View) inkColors() (ink, highlight color.Color, paper color.Color) {
	// Colors are checked by Validate.
	inkc, _ := canvas.ParseHexColor(v.Ink)
	hic, _ := canvas.ParseHexColor(v.Highlight)
	if v.Paper != "" {
		pc, _ := canvas.ParseHexColor(v.Paper)
		paper = pc
	}
	return inkc, hic, paper
}

// GridSamples returns the screen coordinates of an nx by ny sampling grid in
// scan order, columns outer and rows inner. Sample (ix,iy) lies at
//
//	(2(ix+jx)/nx - 1, 2(iy+jy)/ny - 1)
//
// where jx, jy are drawn from rng in that order when jitter is set and are zero otherwise.
func GridSamples(nx, ny int, jitter bool, rng raymarch.Rand) []md2.Vec {
	samples := make([]md2.Vec, 0, nx*ny)
	for ix := range nx {
		for iy := range ny {
			samples = append(samples, sampleScreen(ix, iy, nx, ny, jitter, rng))
		}
	}
	return samples
}

func sampleScreen(ix, iy, nx, ny int, jitter bool, rng raymarch.Rand) md2.Vec {
	var jx, jy float64
	if jitter {
		jx = rng.Float64()
		jy = rng.Float64()
	}
	return md2.Vec{
		X: 2*(float64(ix)+jx)/float64(nx) - 1,
		Y: 2*(float64(iy)+jy)/float64(ny) - 1,
	}
}
