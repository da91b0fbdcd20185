// Package service contains business logic for the plat-airmap platform.
package service

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-airmap/internal/colormap"
)

// Measurable is one selectable sensor quantity.
// Huma reads the tags for OpenAPI + validation; the YAML tags back the
// catalog file.
type Measurable struct {
	ID    string  `json:"id" yaml:"id" doc:"Property name on each reading" example:"co"`
	Label string  `json:"label" yaml:"label" doc:"Display name" example:"Carbon Monoxide"`
	Unit  string  `json:"unit" yaml:"unit" doc:"Display unit" example:"ppm"`
	Min   float64 `json:"min" yaml:"min" doc:"Colour scale minimum" example:"0"`
	Max   float64 `json:"max" yaml:"max" doc:"Colour scale maximum" example:"40"`
}

// Reading is one georeferenced, timestamped data point.
// Values holds nil for measurables the feature carries no number for.
type Reading struct {
	ID     string              `json:"id" doc:"Feature identifier" example:"r12"`
	Time   string              `json:"time" doc:"Raw timestamp (YYYYMMDDHHMMSS)" example:"20170412093000"`
	Values map[string]*float64 `json:"values" doc:"Value per measurable ID, null when missing"`
	Point  orb.Point           `json:"point" doc:"Longitude, latitude"`
}

// Value returns the reading's value for a measurable, or nil.
func (r Reading) Value(id string) *float64 {
	return r.Values[id]
}

// FeatureStyle is the marker style applied to one feature.
type FeatureStyle struct {
	Color       string  `json:"color" doc:"Fill colour (#rrggbb)" example:"#ff0000"`
	Radius      float64 `json:"radius" doc:"Marker radius in pixels" example:"10"`
	Opacity     float64 `json:"opacity" minimum:"0" maximum:"1" doc:"Fill opacity (0-1)" example:"0.5"`
	StrokeColor string  `json:"strokeColor" doc:"Outline colour (CSS)" example:"white"`
	StrokeWidth float64 `json:"strokeWidth" doc:"Outline width" example:"0.5"`
}

// MarkerStyle returns the circle marker style filled with color.
func MarkerStyle(color string) FeatureStyle {
	return FeatureStyle{
		Color:       color,
		Radius:      10,
		Opacity:     0.5,
		StrokeColor: "white",
		StrokeWidth: 0.5,
	}
}

// StyleFunc computes the style for a feature.
type StyleFunc func(f *geojson.Feature) FeatureStyle

// ClickHandler builds the popup for a clicked feature.
type ClickHandler func(f *geojson.Feature) FeatureInfo

// LegendRow is re-exported so API bodies stay in one package.
type LegendRow = colormap.LegendRow

// Legend is the full legend content: a heading and its rows.
type Legend struct {
	Heading string      `json:"heading" doc:"Legend heading" example:"Legend"`
	Rows    []LegendRow `json:"rows" doc:"Rows, top to bottom"`
}

// MapView is the map's centre and zoom.
type MapView struct {
	Center orb.Point `json:"center" doc:"Longitude, latitude"`
	Zoom   int       `json:"zoom" minimum:"0" maximum:"22" doc:"Zoom level" example:"11"`
}

// ViewState is the per-session view: the active measurable, its range and
// the presentation state of the map.
type ViewState struct {
	Active     Measurable `json:"active" doc:"Measurable driving the colours"`
	Min        float64    `json:"min" doc:"Current scale minimum"`
	Max        float64    `json:"max" doc:"Current scale maximum"`
	View       MapView    `json:"view" doc:"Map centre and zoom"`
	ScrollZoom bool       `json:"scrollZoom" doc:"Whether scroll-to-zoom is enabled"`
}

// Selector is one entry in the measurable selector bar.
type Selector struct {
	Measurable
	Active bool `json:"active" doc:"Whether this measurable is selected"`
}

// FeatureValue is one measurable's value in a feature popup.
type FeatureValue struct {
	ID    string   `json:"id" doc:"Measurable ID" example:"co"`
	Label string   `json:"label" doc:"Measurable label" example:"Carbon Monoxide"`
	Value *float64 `json:"value" doc:"Value, null when missing"`
	Text  string   `json:"text" doc:"Value with unit" example:"12.5 ppm"`
	Color string   `json:"color" doc:"Marker colour on this measurable's scale" example:"#a5ff00"`
}

// FeatureInfo is the popup shown for a clicked feature.
type FeatureInfo struct {
	ID       string         `json:"id" doc:"Feature identifier"`
	Time     string         `json:"time" doc:"Formatted timestamp" example:"2017/04/12 09:30:00"`
	Location orb.Point      `json:"location" doc:"Longitude, latitude"`
	Values   []FeatureValue `json:"values" doc:"Values in catalog order"`
}

// SourceFile represents a dataset file (GeoJSON).
type SourceFile struct {
	Name     string `json:"name" doc:"File name" example:"readings.geojson"`
	Size     string `json:"size" doc:"Human-readable file size" example:"1.2 MB"`
	FileType string `json:"fileType" doc:"File type" example:"GeoJSON"`
}
