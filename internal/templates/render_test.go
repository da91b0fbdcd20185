package templates

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/joeblew999/plat-airmap/internal/colormap"
)

func TestNew_FromMapFS(t *testing.T) {
	fsys := fstest.MapFS{
		"greeting.html": {Data: []byte(`{{define "greeting"}}hello {{.}}{{end}}`)},
		"pair.html":     {Data: []byte(`{{define "pair"}}{{with dict "a" 1 "b" 2}}{{.a}}-{{.b}}{{end}}{{end}}`)},
		"ignored.txt":   {Data: []byte(`{{define "ignored"}}x{{end}}`)},
	}

	r, err := New(fsys)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		data any
		want string
	}{
		{"greeting", "<co>", "hello &lt;co&gt;"},
		{"pair", nil, "1-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.name, tt.data)
			if err != nil {
				t.Fatalf("Render(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}

	if _, err := r.Render("ignored", nil); err == nil {
		t.Error("Render(ignored) error = nil, want missing template")
	}
}

func TestNew_NoTemplates(t *testing.T) {
	if _, err := New(fstest.MapFS{}); err == nil {
		t.Error("New(empty) error = nil, want non-nil")
	}
}

func TestReload(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	override := fstest.MapFS{
		"empty.html": {Data: []byte(`{{define "empty-state"}}custom {{.Title}}{{end}}`)},
	}
	if err := r.Reload(override); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got, _ := r.Render("empty-state", map[string]string{"Title": "gone"}); got != "custom gone" {
		t.Errorf("Render(empty-state) after reload = %q, want override", got)
	}
	if _, err := r.Render("legend", map[string]any{"Heading": "Legend"}); err != nil {
		t.Errorf("embedded legend lost after reload: %v", err)
	}

	if err := r.Reload(fstest.MapFS{}); err != nil {
		t.Fatalf("Reload(empty) error = %v", err)
	}
	if got, _ := r.Render("empty-state", map[string]string{"Title": "x", "Message": "y"}); strings.HasPrefix(got, "custom") {
		t.Error("Reload(empty) should restore the embedded fragments")
	}

	if err := r.Reload(fstest.MapFS{"bad.html": {Data: []byte(`{{define "x"}}`)}}); err == nil {
		t.Error("Reload(malformed) error = nil, want non-nil")
	}
}

func TestDefault_Legend(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	html, err := r.Render("legend", map[string]any{
		"Heading": colormap.LegendHeading,
		"Rows":    colormap.BuildLegend(0, 40, "ppm"),
	})
	if err != nil {
		t.Fatalf("Render(legend) error = %v", err)
	}

	if got := strings.Count(html, `class="legend-row swatch"`); got != colormap.LegendSlots {
		t.Errorf("swatch rows = %d, want %d", got, colormap.LegendSlots)
	}
	for _, want := range []string{"<h4>Legend</h4>", "40 ppm", "0 ppm", "background:#ff0000", "background:#555555", "no data"} {
		if !strings.Contains(html, want) {
			t.Errorf("legend missing %q", want)
		}
	}
	if strings.Index(html, "40 ppm") > strings.Index(html, "no data") {
		t.Error("max label should come before the no-data row")
	}
}

func TestDefault_SelectorBar(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	type sel struct {
		ID, Label string
		Active    bool
	}
	html, err := r.Render("selector-bar", map[string]any{
		"Session":   "s1",
		"Selectors": []sel{{"co", "Carbon Monoxide", false}, {"hum", "Humidity", true}},
	})
	if err != nil {
		t.Fatalf("Render(selector-bar) error = %v", err)
	}
	if strings.Count(html, "active") != 1 || !strings.Contains(html, `id="select-hum" class="selector active"`) {
		t.Errorf("selector bar should highlight only hum:\n%s", html)
	}
	if !strings.Contains(html, "/api/v1/viewer/sessions/s1/select/co") {
		t.Error("selector bar missing select action")
	}
}

func TestDefault_Popup(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	html, err := r.Render("popup", map[string]any{
		"ID":       "a",
		"Time":     "2017/04/12 09:30:00",
		"Location": [2]float64{-85.8283, 41.5644},
		"Values": []map[string]string{
			{"Label": "Humidity", "Text": "50 %", "Color": "#ffff00"},
		},
	})
	if err != nil {
		t.Fatalf("Render(popup) error = %v", err)
	}
	for _, want := range []string{"2017/04/12 09:30:00", "Location", "41.5644, -85.8283", "Humidity", "50 %", "#ffff00"} {
		if !strings.Contains(html, want) {
			t.Errorf("popup missing %q", want)
		}
	}
}

func TestDefault_EmptyState(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	html, err := r.Render("empty-state", map[string]string{"Title": "No data", "Message": "Nothing loaded"})
	if err != nil || !strings.Contains(html, "Nothing loaded") {
		t.Errorf("Render(empty-state) = %q, %v", html, err)
	}
}
