package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"
)

// FeatureLayer is the map surface of one session: the loaded features,
// their current styles, the click handler and the viewport.
type FeatureLayer struct {
	readings *ReadingService

	mu      sync.RWMutex
	dataset *Dataset
	style   StyleFunc
	styles  map[string]FeatureStyle
	onClick ClickHandler
	view    MapView
	zoom    bool
}

// NewFeatureLayer creates an empty layer backed by the reading service.
func NewFeatureLayer(readings *ReadingService) *FeatureLayer {
	return &FeatureLayer{
		readings: readings,
		styles:   make(map[string]FeatureStyle),
	}
}

// LoadFeatures loads a dataset into the layer, replacing any previous one.
// An existing style function is re-applied to the new features.
func (l *FeatureLayer) LoadFeatures(ctx context.Context, source string) error {
	d, err := l.readings.Load(ctx, source)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.dataset = d
	l.restyle()
	return nil
}

// RestyleAll applies fn to every feature.
func (l *FeatureLayer) RestyleAll(fn StyleFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.style = fn
	l.restyle()
}

func (l *FeatureLayer) restyle() {
	styles := make(map[string]FeatureStyle)
	if l.dataset != nil && l.style != nil {
		for _, f := range l.dataset.Features {
			styles[f.ID.(string)] = l.style(f)
		}
	}
	l.styles = styles
}

// OnFeatureClick registers the popup builder for clicked features.
func (l *FeatureLayer) OnFeatureClick(h ClickHandler) {
	l.mu.Lock()
	l.onClick = h
	l.mu.Unlock()
}

// SetView moves the viewport.
func (l *FeatureLayer) SetView(v MapView) {
	l.mu.Lock()
	l.view = v
	l.mu.Unlock()
}

// SetScrollZoom enables or disables scroll-to-zoom.
func (l *FeatureLayer) SetScrollZoom(enabled bool) {
	l.mu.Lock()
	l.zoom = enabled
	l.mu.Unlock()
}

// View returns the current viewport.
func (l *FeatureLayer) View() MapView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view
}

// ScrollZoom reports whether scroll-to-zoom is enabled.
func (l *FeatureLayer) ScrollZoom() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.zoom
}

// Len returns the number of loaded features.
func (l *FeatureLayer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.dataset == nil {
		return 0
	}
	return l.dataset.Len()
}

// Style returns the current style of a feature.
func (l *FeatureLayer) Style(id string) (FeatureStyle, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.styles[id]
	return s, ok
}

// Dataset returns the loaded dataset, or nil.
func (l *FeatureLayer) Dataset() *Dataset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dataset
}

// Click runs the click handler for a feature.
func (l *FeatureLayer) Click(id string) (FeatureInfo, error) {
	l.mu.RLock()
	d, h := l.dataset, l.onClick
	l.mu.RUnlock()

	if d == nil {
		return FeatureInfo{}, fmt.Errorf("feature %q: %w", id, ErrFeatureNotFound)
	}
	f, ok := d.Feature(id)
	if !ok {
		return FeatureInfo{}, fmt.Errorf("feature %q: %w", id, ErrFeatureNotFound)
	}
	if h == nil {
		return FeatureInfo{ID: id}, nil
	}
	return h(f), nil
}

// Styled returns the features as a new collection, each carrying its
// current style under the "style" property. The shared features are not
// modified.
func (l *FeatureLayer) Styled() *geojson.FeatureCollection {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fc := geojson.NewFeatureCollection()
	if l.dataset == nil {
		return fc
	}
	for _, f := range l.dataset.Features {
		out := geojson.NewFeature(f.Geometry)
		out.ID = f.ID
		out.Properties = f.Properties.Clone()
		if s, ok := l.styles[f.ID.(string)]; ok {
			out.Properties["style"] = s
		}
		fc.Append(out)
	}
	return fc
}

// LegendBoard holds the legend most recently rendered for a session.
type LegendBoard struct {
	mu      sync.RWMutex
	legend  Legend
	renders int
}

// NewLegendBoard creates an empty legend board.
func NewLegendBoard() *LegendBoard {
	return &LegendBoard{}
}

// RenderLegend replaces the board's content.
func (b *LegendBoard) RenderLegend(heading string, rows []LegendRow) {
	cp := make([]LegendRow, len(rows))
	copy(cp, rows)

	b.mu.Lock()
	b.legend = Legend{Heading: heading, Rows: cp}
	b.renders++
	b.mu.Unlock()
}

// Legend returns a copy of the current legend.
func (b *LegendBoard) Legend() Legend {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rows := make([]LegendRow, len(b.legend.Rows))
	copy(rows, b.legend.Rows)
	return Legend{Heading: b.legend.Heading, Rows: rows}
}

// Renders returns how many times the legend has been rendered.
func (b *LegendBoard) Renders() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.renders
}
