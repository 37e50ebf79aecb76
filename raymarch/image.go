package raymarch

import (
	"errors"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/hatch"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// ImageRenderer renders the continuous shading of a scene, one primary ray per pixel.
// It is useful to preview lighting before hatching a scene.
type ImageRenderer struct {
	m          *Marcher
	conv       func(intensity float32) color.Color
	background color.Color
}

// NewImageRenderer instances a new [ImageRenderer]. A nil intensity->color conversion
// function results in a grayscale ramp where black is no light. Pixels whose ray misses
// the scene are set to background, or white if background is nil.
func NewImageRenderer(m *Marcher, conversion func(float32) color.Color, background color.Color) (*ImageRenderer, error) {
	if m == nil {
		return nil, errors.New("nil Marcher")
	}
	if conversion == nil {
		conversion = func(f float32) color.Color {
			if math32.IsNaN(f) || math32.IsInf(f, 0) {
				return color.RGBA{R: 255, A: 255}
			}
			return color.Gray{Y: uint8(255 * math32.Min(math32.Max(f, 0), 1))}
		}
	}
	if background == nil {
		background = color.White
	}
	return &ImageRenderer{m: m, conv: conversion, background: background}, nil
}

// Render traces a ray through the center of every pixel of img and stores the converted light intensity.
func (ir *ImageRenderer) Render(sdf hatch.SDF3, light md3.Vec, img setImage) error {
	bb := img.Bounds()
	dim := md2.Vec{X: float64(bb.Dx()), Y: float64(bb.Dy())}
	for i := 0; i < bb.Dx(); i++ {
		err := ir.renderColumn(sdf, light, i, dim, bb, img)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ir *ImageRenderer) renderColumn(sdf hatch.SDF3, light md3.Vec, col int, dim md2.Vec, bb image.Rectangle, img setImage) error {
	x := float64(col) + 0.5
	for j := 0; j < bb.Dy(); j++ {
		screen := CanvasToScreen(dim, md2.Vec{X: x, Y: float64(j) + 0.5})
		sp, ok, err := ir.m.Intersect(sdf, screen, light)
		if err != nil {
			return err
		}
		c := ir.background
		if ok {
			c = ir.conv(float32(sp.Intensity()))
		}
		img.Set(col+bb.Min.X, j+bb.Min.Y, c)
	}
	return nil
}
