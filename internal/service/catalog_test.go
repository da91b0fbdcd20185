package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	if got := c.IDs(); strings.Join(got, ",") != "co,oz,pm,vo,temp,hum" {
		t.Fatalf("IDs() = %v, want co,oz,pm,vo,temp,hum", got)
	}

	def := c.Default()
	if def.ID != "co" || def.Min != 0 || def.Max != 40 || def.Unit != "ppm" {
		t.Errorf("Default() = %+v, want co [0,40] ppm", def)
	}

	hum, ok := c.Get("hum")
	if !ok {
		t.Fatal("Get(hum) not found")
	}
	if hum.Unit != "%" || hum.Max != 100 {
		t.Errorf("Get(hum) = %+v, want unit %% and max 100", hum)
	}

	if _, ok := c.Get("xx"); ok {
		t.Error("Get(xx) found, want missing")
	}
}

func TestCatalog_Contains(t *testing.T) {
	c := DefaultCatalog()
	oz, _ := c.Get("oz")

	if !c.Contains(oz) {
		t.Error("Contains(oz) = false, want true")
	}

	tampered := oz
	tampered.Max = 1
	if c.Contains(tampered) {
		t.Error("Contains(oz with altered max) = true, want false")
	}
}

func TestCatalog_ListIsCopy(t *testing.T) {
	c := DefaultCatalog()
	list := c.List()
	list[0].Max = 999

	if got := c.Default().Max; got != 40 {
		t.Errorf("Default().Max = %v after mutating List(), want 40", got)
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		measurables []Measurable
		defaultID   string
	}{
		{name: "empty", measurables: nil},
		{name: "bad id", measurables: []Measurable{{ID: "CO", Min: 0, Max: 1}}},
		{name: "id with dash", measurables: []Measurable{{ID: "c-o", Min: 0, Max: 1}}},
		{name: "duplicate", measurables: []Measurable{{ID: "co", Min: 0, Max: 1}, {ID: "co", Min: 0, Max: 2}}},
		{name: "min equals max", measurables: []Measurable{{ID: "co", Min: 5, Max: 5}}},
		{name: "min above max", measurables: []Measurable{{ID: "co", Min: 6, Max: 5}}},
		{name: "unknown default", measurables: []Measurable{{ID: "co", Min: 0, Max: 1}}, defaultID: "oz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.measurables, tt.defaultID); err == nil {
				t.Fatal("NewCatalog() error = nil, want non-nil")
			}
		})
	}

	_, err := NewCatalog([]Measurable{{ID: "co", Min: 0, Max: 1}}, "nope")
	if !errors.Is(err, ErrUnknownMeasurable) {
		t.Errorf("NewCatalog(unknown default) error = %v, want ErrUnknownMeasurable", err)
	}
}

func TestNewCatalog_DefaultsToFirstAndLabel(t *testing.T) {
	c, err := NewCatalog([]Measurable{{ID: "no2", Unit: "ppb", Min: 0, Max: 60}}, "")
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if got := c.Default(); got.ID != "no2" || got.Label != "no2" {
		t.Errorf("Default() = %+v, want id and label no2", got)
	}
}

func TestParseCatalog(t *testing.T) {
	doc := `
default: hum
measurables:
  - id: temp
    label: Temperature
    unit: "°C"
    min: -20
    max: 45
  - id: hum
    label: Humidity
    unit: "%"
    min: 0
    max: 100
`
	c, err := ParseCatalog([]byte(doc))
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if got := c.Default().ID; got != "hum" {
		t.Errorf("Default().ID = %q, want hum", got)
	}
	temp, _ := c.Get("temp")
	if temp.Min != -20 || temp.Unit != "°C" {
		t.Errorf("Get(temp) = %+v, want min -20 unit °C", temp)
	}

	if _, err := ParseCatalog([]byte("measurables: [")); err == nil {
		t.Error("ParseCatalog(malformed) error = nil, want non-nil")
	}
}

func TestLoadCatalog_RoundTrip(t *testing.T) {
	data, err := yaml.Marshal(DefaultCatalog())
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "measurables.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if got, want := c.List(), DefaultMeasurables; len(got) != len(want) || got[1] != want[1] {
		t.Errorf("LoadCatalog() list = %+v, want %+v", got, want)
	}
	if c.Default().ID != "co" {
		t.Errorf("Default().ID = %q, want co", c.Default().ID)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadCatalog(missing) error = nil, want non-nil")
	}
}
