package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-airmap/internal/colormap"
)

// HomeView is where a new session's map starts and where Recenter returns:
// Goshen, Indiana at zoom 11.
var HomeView = MapView{Center: orb.Point{-85.8283, 41.5644}, Zoom: 11}

// MapSurface is the map a ViewController drives.
type MapSurface interface {
	LoadFeatures(ctx context.Context, source string) error
	RestyleAll(fn StyleFunc)
	OnFeatureClick(h ClickHandler)
	SetView(v MapView)
	SetScrollZoom(enabled bool)
}

// LegendTarget receives the legend. Each call replaces prior content.
type LegendTarget interface {
	RenderLegend(heading string, rows []LegendRow)
}

// ViewController owns one session's ViewState. Every transition runs to
// completion under the controller's lock before the next one starts.
type ViewController struct {
	catalog *Catalog
	surface MapSurface
	legend  LegendTarget
	home    MapView

	mu    sync.Mutex
	state ViewState
}

// NewViewController wires the controller to its collaborators and selects
// the catalog's default measurable.
func NewViewController(catalog *Catalog, surface MapSurface, legend LegendTarget, home MapView) *ViewController {
	c := &ViewController{
		catalog: catalog,
		surface: surface,
		legend:  legend,
		home:    home,
	}

	surface.OnFeatureClick(c.Popup)
	surface.SetScrollZoom(false)
	surface.SetView(home)
	c.state.View = home

	c.selectLocked(catalog.Default())
	return c
}

// Load loads a dataset onto the map. The active style is re-applied.
func (c *ViewController) Load(ctx context.Context, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.LoadFeatures(ctx, source)
}

// Select makes m the active measurable, restyles every feature and
// regenerates the legend. m must be one of the catalog's measurables.
func (c *ViewController) Select(m Measurable) (ViewState, error) {
	if !c.catalog.Contains(m) {
		return ViewState{}, fmt.Errorf("select %q: %w", m.ID, ErrUnknownMeasurable)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectLocked(m)
	return c.state, nil
}

// SelectByID selects a measurable by its identifier.
func (c *ViewController) SelectByID(id string) (ViewState, error) {
	m, ok := c.catalog.Get(id)
	if !ok {
		return ViewState{}, fmt.Errorf("select %q: %w", id, ErrUnknownMeasurable)
	}
	return c.Select(m)
}

func (c *ViewController) selectLocked(m Measurable) {
	c.state.Active = m
	c.state.Min = m.Min
	c.state.Max = m.Max

	lo, hi, id := m.Min, m.Max, m.ID
	c.surface.RestyleAll(func(f *geojson.Feature) FeatureStyle {
		return MarkerStyle(colormap.ColorFor(PropertyValue(f, id), lo, hi))
	})

	c.legend.RenderLegend(colormap.LegendHeading, colormap.BuildLegend(lo, hi, m.Unit))
}

// State returns the current view state.
func (c *ViewController) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selectors returns the selector bar with exactly the active measurable
// highlighted.
func (c *ViewController) Selectors() []Selector {
	c.mu.Lock()
	active := c.state.Active.ID
	c.mu.Unlock()

	items := c.catalog.List()
	out := make([]Selector, len(items))
	for i, m := range items {
		out[i] = Selector{Measurable: m, Active: m.ID == active}
	}
	return out
}

// Recenter returns the map to its home view.
func (c *ViewController) Recenter() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.View = c.home
	c.surface.SetView(c.home)
	return c.state
}

// ToggleScrollZoom flips scroll-to-zoom on the map.
func (c *ViewController) ToggleScrollZoom() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ScrollZoom = !c.state.ScrollZoom
	c.surface.SetScrollZoom(c.state.ScrollZoom)
	return c.state
}

// Popup builds the popup for a clicked feature: its formatted timestamp,
// location, and every measurable's value coloured on its own scale.
func (c *ViewController) Popup(f *geojson.Feature) FeatureInfo {
	info := FeatureInfo{
		ID:       fmt.Sprint(f.ID),
		Time:     FormatTimestamp(rawTime(f.Properties["time"])),
		Location: pointOf(f.Geometry),
	}
	for _, m := range c.catalog.List() {
		v := PropertyValue(f, m.ID)
		fv := FeatureValue{
			ID:    m.ID,
			Label: m.Label,
			Value: v,
			Color: colormap.ColorFor(v, m.Min, m.Max),
			Text:  colormap.NoDataLabel,
		}
		if v != nil {
			fv.Text = colormap.FormatValue(*v, m.Unit)
		}
		info.Values = append(info.Values, fv)
	}
	return info
}
