package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
)

// HSV conversion logic taken from Esme Lamb's (@dedelala)
// excellent color manipulation work presented at Gophercon AU 2024.
// https://github.com/dedelala/disco/tree/main/color

var red = color.RGBA{R: 255, A: 255}

// IntensityGradient returns a light intensity to color conversion that
// interpolates in HSV space from c0 at intensity 0 to c1 at intensity 1.
// Intensities outside [0,1] are clamped. Returns red for NaN values.
func IntensityGradient(c0, c1 color.Color) func(intensity float32) color.Color {
	h0, s0, v0 := colorToHSV(c0)
	h1, s1, v1 := colorToHSV(c1)
	return func(in float32) color.Color {
		if math.IsNaN(in) {
			return red
		}
		if in <= 0 {
			return c0
		} else if in >= 1 {
			return c1
		}
		c := rgbToC(hsvToRGB(interpHSV(h0, s0, v0, h1, s1, v1, in)))
		return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 255}
	}
}

// RGBGradient is like [IntensityGradient] but interpolates linearly in RGB space,
// which avoids hue shifts between colors of very different hue.
func RGBGradient(c0, c1 color.Color) func(intensity float32) color.Color {
	a := colorToVec(c0)
	b := colorToVec(c1)
	return func(in float32) color.Color {
		if math.IsNaN(in) {
			return red
		}
		in = ms1.Clamp(in, 0, 1)
		c := ms3.InterpElem(a, b, ms3.Vec{X: in, Y: in, Z: in})
		return color.RGBA{R: uint8(c.X * 255), G: uint8(c.Y * 255), B: uint8(c.Z * 255), A: 255}
	}
}

// Grayscale returns a conversion mapping the intensity range [ambient,1]
// to the full black to white range so that fully shadowed regions are black.
func Grayscale(ambient float32) func(intensity float32) color.Color {
	scale := float32(1)
	if ambient < 1 {
		scale = 1 / (1 - ambient)
	}
	return func(in float32) color.Color {
		if math.IsNaN(in) {
			return red
		}
		g := ms1.Clamp((in-ambient)*scale, 0, 1)
		return color.Gray{Y: uint8(g*255 + 0.5)}
	}
}

// ParseHexColor parses colors in the #rgb, #rrggbb and #rrggbbaa notations.
// The leading '#' is optional.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func colorToVec(c color.Color) ms3.Vec {
	r, g, b, _ := c.RGBA()
	return ms3.Vec{X: float32(r>>8) / math.MaxUint8, Y: float32(g>>8) / math.MaxUint8, Z: float32(b>>8) / math.MaxUint8}
}

func interpHSV(h0, s0, v0, h1, s1, v1, t float32) (h, s, v float32) {
	switch {
	case h1-h0 > 0.5:
		h0 += 1.0
	case h1-h0 < -0.5:
		h1 += 1.0
	}
	h = ms1.Interp(h0, h1, t)
	if h > 1 {
		h -= 1
	}
	s = ms1.Interp(s0, s1, t)
	v = ms1.Interp(v0, v1, t)
	return h, s, v
}

func colorToHSV(c color.Color) (h, s, v float32) {
	r0, g0, b0, _ := c.RGBA()
	return rgbToHSV(float32(r0>>8)/math.MaxUint8, float32(g0>>8)/math.MaxUint8, float32(b0>>8)/math.MaxUint8)
}

// rgbToC converts r, g, and b values on the range of 0.0 to 1.0 to a
// 24 bit RGB value stored in the least significant bits of a uint32. The inputs
// are clamped to the range of 0.0 to 1.0
func rgbToC(r, g, b float32) (c uint32) {
	return uint32(ms1.Clamp(r, 0, 1)*math.MaxUint8)<<16 |
		uint32(ms1.Clamp(g, 0, 1)*math.MaxUint8)<<8 |
		uint32(ms1.Clamp(b, 0, 1)*math.MaxUint8)
}

// hsvToRGB converts hue, saturation and brightness values on the range of 0.0
// to 1.0 to RGB floating point values on the range of 0.0 to 1.0
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)
	switch {
	case h >= 0 && h <= 1.0/6:
		r, g, b = c, x, 0
	case h > 1.0/6 && h <= 2.0/6:
		r, g, b = x, c, 0
	case h > 2.0/6 && h <= 3.0/6:
		r, g, b = 0, c, x
	case h > 3.0/6 && h <= 4.0/6:
		r, g, b = 0, x, c
	case h > 4.0/6 && h <= 5.0/6:
		r, g, b = x, 0, c
	case h > 5.0/6 && h <= 1.0:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

// rgbToHSV converts red, green, and blue floating point values on the range
// 0.0 to 1.0 to hue, saturation and brightness values on the range 0.0 to 1.0
func rgbToHSV(r, g, b float32) (h, s, v float32) {
	var (
		xmax = max(r, g, b)
		xmin = min(r, g, b)
		c    = xmax - xmin
	)
	v = xmax
	switch {
	case c == 0:
		h = 0
	case v == r:
		h = (g - b) / (c * 6)
	case v == g:
		h = 1.0/3 + (b-r)/(c*6)
	case v == b:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h += 1
	}
	if xmax > 0 {
		s = c / xmax
	}
	return h, s, v
}
