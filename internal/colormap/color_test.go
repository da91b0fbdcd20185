package colormap

import (
	"image/color"
	"math"
	"regexp"
	"testing"
)

var hexPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func ptr(v float64) *float64 { return &v }

func TestColorFor_Concrete(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min, max float64
		want     string
	}{
		{name: "max is red", value: 40, min: 0, max: 40, want: "#ff0000"},
		{name: "min is green", value: 0, min: 0, max: 40, want: "#00ff00"},
		{name: "midpoint is yellow", value: 20, min: 0, max: 40, want: "#ffff00"},
		{name: "quarter rounds half up", value: 10, min: 0, max: 40, want: "#80ff00"},
		{name: "ozone max", value: 0.2, min: 0, max: 0.2, want: "#ff0000"},
		{name: "humidity half", value: 50, min: 0, max: 100, want: "#ffff00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorFor(ptr(tt.value), tt.min, tt.max)
			if got != tt.want {
				t.Errorf("ColorFor(%v, %v, %v) = %q, want %q", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestColorFor_NoData(t *testing.T) {
	ranges := [][2]float64{{0, 40}, {0, 0.2}, {-10, 10}, {0, 0}, {5, 5}}
	for _, r := range ranges {
		if got := ColorFor(nil, r[0], r[1]); got != NoData {
			t.Errorf("ColorFor(nil, %v, %v) = %q, want %q", r[0], r[1], got, NoData)
		}
		if got := ColorFor(ptr(math.NaN()), r[0], r[1]); got != NoData {
			t.Errorf("ColorFor(NaN, %v, %v) = %q, want %q", r[0], r[1], got, NoData)
		}
	}
}

func TestColorFor_Clamping(t *testing.T) {
	tests := []struct {
		min, max float64
		above    float64
		below    float64
	}{
		{min: 0, max: 40, above: 400, below: -3},
		{min: 0, max: 0.2, above: 0.21, below: -0.01},
		{min: 10, max: 100, above: 1e9, below: 0},
	}

	for _, tt := range tests {
		if got, want := ColorFor(ptr(tt.above), tt.min, tt.max), ColorFor(ptr(tt.max), tt.min, tt.max); got != want {
			t.Errorf("ColorFor(%v) = %q, want max colour %q", tt.above, got, want)
		}
		if got, want := ColorFor(ptr(tt.below), tt.min, tt.max), ColorFor(ptr(tt.min), tt.min, tt.max); got != want {
			t.Errorf("ColorFor(%v) = %q, want min colour %q", tt.below, got, want)
		}
	}
}

func TestColorFor_ValidHexAcrossRange(t *testing.T) {
	ranges := [][2]float64{{0, 40}, {0, 0.2}, {0, 50}, {0, 100}, {20, 80}}
	for _, r := range ranges {
		min, max := r[0], r[1]
		for i := 0; i <= 100; i++ {
			v := min + (max-min)*float64(i)/100
			got := ColorFor(ptr(v), min, max)
			if !hexPattern.MatchString(got) {
				t.Fatalf("ColorFor(%v, %v, %v) = %q, not #rrggbb", v, min, max, got)
			}
			if got == NoData {
				t.Fatalf("ColorFor(%v, %v, %v) collided with the no-data colour", v, min, max)
			}
		}
		if ColorOf(min, min, max) == ColorOf(max, min, max) {
			t.Errorf("range [%v, %v]: min and max share colour %q", min, max, ColorOf(min, min, max))
		}
	}
}

func TestColorFor_DegenerateRanges(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{name: "zero max", value: 0, min: 0, max: 0},
		{name: "zero max negative min", value: -4, min: -10, max: 0},
		{name: "equal bounds", value: 7, min: 7, max: 7},
		{name: "infinite max", value: 3, min: 0, max: math.Inf(1)},
		{name: "inverted range", value: 5, min: 10, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorFor(ptr(tt.value), tt.min, tt.max)
			if !hexPattern.MatchString(got) {
				t.Errorf("ColorFor(%v, %v, %v) = %q, not #rrggbb", tt.value, tt.min, tt.max, got)
			}
		})
	}

	if got := Hue(0, 0, 0); got != 0 {
		t.Errorf("Hue(0, 0, 0) = %v, want 0", got)
	}
	if got := ColorOf(0, 0, 0); got != "#ff0000" {
		t.Errorf("ColorOf(0, 0, 0) = %q, want #ff0000", got)
	}
}

func TestHue(t *testing.T) {
	tests := []struct {
		value, min, max float64
		want            float64
	}{
		{value: 40, min: 0, max: 40, want: 0},
		{value: 0, min: 0, max: 40, want: 120},
		{value: 20, min: 0, max: 40, want: 60},
		{value: 1, min: 0, max: 40, want: 117},
		{value: 50, min: 0, max: 100, want: 60},
	}

	for _, tt := range tests {
		if got := Hue(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("Hue(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestHSVToRGB_Sectors(t *testing.T) {
	tests := []struct {
		h    float64
		want color.RGBA
	}{
		{h: 0, want: color.RGBA{255, 0, 0, 255}},
		{h: 30, want: color.RGBA{255, 128, 0, 255}},
		{h: 60, want: color.RGBA{255, 255, 0, 255}},
		{h: 90, want: color.RGBA{128, 255, 0, 255}},
		{h: 120, want: color.RGBA{0, 255, 0, 255}},
		{h: 180, want: color.RGBA{0, 255, 255, 255}},
		{h: 240, want: color.RGBA{0, 0, 255, 255}},
		{h: 300, want: color.RGBA{255, 0, 255, 255}},
		{h: 360, want: color.RGBA{255, 0, 0, 255}},
		{h: -60, want: color.RGBA{255, 0, 255, 255}},
	}

	for _, tt := range tests {
		if got := HSVToRGB(tt.h, 1, 1); got != tt.want {
			t.Errorf("HSVToRGB(%v, 1, 1) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestHSVToRGB_SaturationAndValue(t *testing.T) {
	if got, want := HSVToRGB(200, 0, 0.5), (color.RGBA{128, 128, 128, 255}); got != want {
		t.Errorf("HSVToRGB(200, 0, 0.5) = %v, want grey %v", got, want)
	}
	if got, want := HSVToRGB(0, 1, 0), (color.RGBA{0, 0, 0, 255}); got != want {
		t.Errorf("HSVToRGB(0, 1, 0) = %v, want black %v", got, want)
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.RGBA{R: 1, G: 0xab, B: 0, A: 0}); got != "#01ab00" {
		t.Errorf("Hex() = %q, want #01ab00", got)
	}
}
