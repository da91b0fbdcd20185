package service

import (
	"context"
	"errors"
	"testing"

	"github.com/joeblew999/plat-airmap/internal/colormap"
)

func newTestLayer(t *testing.T) *FeatureLayer {
	t.Helper()
	dir := writeSource(t, "readings.geojson", readingsGeoJSON)
	return NewFeatureLayer(NewReadingService(NewSourceService(dir), DefaultCatalog()))
}

func TestFeatureLayer_RestyleAndLoad(t *testing.T) {
	l := newTestLayer(t)
	board := NewLegendBoard()
	c := NewViewController(DefaultCatalog(), l, board, HomeView)

	if l.Len() != 0 {
		t.Fatalf("Len() before load = %d, want 0", l.Len())
	}
	if err := c.Load(context.Background(), "readings.geojson"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}

	// Style set before the load is applied to the loaded features.
	if s, _ := l.Style("a"); s.Color != "#ff0000" {
		t.Errorf("Style(a) = %q, want #ff0000", s.Color)
	}
	if s, _ := l.Style("7"); s.Color != "#ff0000" {
		t.Errorf("Style(7) = %q, want clamped #ff0000", s.Color)
	}

	if _, err := c.SelectByID("hum"); err != nil {
		t.Fatal(err)
	}
	if s, _ := l.Style("a"); s.Color != "#ffff00" {
		t.Errorf("Style(a) on hum = %q, want #ffff00", s.Color)
	}
	if s, _ := l.Style("r1"); s.Color != colormap.NoData {
		t.Errorf("Style(r1) on hum = %q, want no data", s.Color)
	}
}

func TestFeatureLayer_Styled(t *testing.T) {
	l := newTestLayer(t)
	NewViewController(DefaultCatalog(), l, NewLegendBoard(), HomeView)
	if err := l.LoadFeatures(context.Background(), "readings.geojson"); err != nil {
		t.Fatal(err)
	}

	fc := l.Styled()
	if len(fc.Features) != 3 {
		t.Fatalf("Styled() features = %d, want 3", len(fc.Features))
	}
	style, ok := fc.Features[0].Properties["style"].(FeatureStyle)
	if !ok || style.Color != "#ff0000" || style.Radius != 10 {
		t.Errorf("Styled()[0] style = %+v", fc.Features[0].Properties["style"])
	}

	d := l.Dataset()
	if _, leaked := d.Features[0].Properties["style"]; leaked {
		t.Error("Styled() must not write into the shared dataset")
	}
}

func TestFeatureLayer_Click(t *testing.T) {
	l := newTestLayer(t)
	if _, err := l.Click("a"); !errors.Is(err, ErrFeatureNotFound) {
		t.Errorf("Click() before load error = %v, want ErrFeatureNotFound", err)
	}

	NewViewController(DefaultCatalog(), l, NewLegendBoard(), HomeView)
	if err := l.LoadFeatures(context.Background(), "readings.geojson"); err != nil {
		t.Fatal(err)
	}

	info, err := l.Click("a")
	if err != nil {
		t.Fatalf("Click(a) error = %v", err)
	}
	if info.Time != "2017/04/12 09:30:00" {
		t.Errorf("Click(a).Time = %q", info.Time)
	}
	if _, err := l.Click("zzz"); !errors.Is(err, ErrFeatureNotFound) {
		t.Errorf("Click(zzz) error = %v, want ErrFeatureNotFound", err)
	}
}

func TestLegendBoard_Replaces(t *testing.T) {
	b := NewLegendBoard()
	b.RenderLegend("Legend", colormap.BuildLegend(0, 40, "ppm"))
	b.RenderLegend("Legend", colormap.BuildLegend(0, 100, "%"))

	got := b.Legend()
	if len(got.Rows) != colormap.LegendSlots+3 {
		t.Errorf("rows = %d, want %d", len(got.Rows), colormap.LegendSlots+3)
	}
	if got.Rows[0].Label != "100 %" {
		t.Errorf("top label = %q, want 100 %%", got.Rows[0].Label)
	}
	if b.Renders() != 2 {
		t.Errorf("Renders() = %d, want 2", b.Renders())
	}

	got.Rows[0].Label = "x"
	if b.Legend().Rows[0].Label == "x" {
		t.Error("Legend() must return a copy")
	}
}
