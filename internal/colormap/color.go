// Package colormap maps sensor values onto the green-to-red marker gradient
// and builds the matching legend.
//
// Low values are green (hue 120), high values red (hue 0). Missing values
// get the NoData sentinel, which the gradient can never produce because
// every gradient colour has at least one channel at full intensity.
package colormap

import (
	"fmt"
	"image/color"
	"math"
)

// NoData is the marker colour for features without a value.
const NoData = "#555555"

// HueSpan is the hue range of the gradient in degrees (green to red).
const HueSpan = 120

// ColorFor returns the marker colour for value on the [min, max] scale.
// A nil or NaN value returns NoData.
func ColorFor(value *float64, min, max float64) string {
	if value == nil || math.IsNaN(*value) {
		return NoData
	}
	return ColorOf(*value, min, max)
}

// ColorOf returns the gradient colour for a defined value.
func ColorOf(value, min, max float64) string {
	if math.IsNaN(value) {
		return NoData
	}
	return Hex(HSVToRGB(Hue(value, min, max), 1, 1))
}

// Hue returns floor((max-value)*120/max) after clamping value into
// [min, max]. A zero max, or any range that yields a non-finite hue, maps
// to hue 0.
func Hue(value, min, max float64) float64 {
	if value > max {
		value = max
	} else if value < min {
		value = min
	}

	if max == 0 {
		return 0
	}
	h := (max - value) * HueSpan / max
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return math.Floor(h)
}

// HSVToRGB converts a hue in degrees plus saturation and value in [0,1] to
// an opaque RGBA colour.
//
// The hue is split into sector i = floor(h/60) and remainder f = h/60 - i.
// Each channel sits at a fixed offset around the six-sector wheel
// (red 5, green 3, blue 1); its distance k from the sector boundary decides
// whether it takes v, v(1-s), v(1-sf) or v(1-s(1-f)).
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	s = clamp01(s)
	v = clamp01(v)

	sector := h / 60
	channel := func(offset float64) uint8 {
		k := math.Mod(offset+sector, 6)
		ramp := math.Max(0, math.Min(math.Min(k, 4-k), 1))
		return to8(v - v*s*ramp)
	}

	return color.RGBA{R: channel(5), G: channel(3), B: channel(1), A: 0xff}
}

// Hex formats c as a lowercase #rrggbb string. Alpha is ignored.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func to8(x float64) uint8 {
	return uint8(math.Round(clamp01(x) * 255))
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
