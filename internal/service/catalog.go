package service

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ErrUnknownMeasurable is returned when a measurable is not in the catalog.
var ErrUnknownMeasurable = errors.New("unknown measurable")

var measurableID = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Catalog is the fixed, ordered table of measurables a session can select.
type Catalog struct {
	items     []Measurable
	index     map[string]int
	defaultID string
}

// catalogFile is the on-disk YAML layout of a catalog.
type catalogFile struct {
	Default     string       `yaml:"default"`
	Measurables []Measurable `yaml:"measurables"`
}

// DefaultMeasurables is the reference sensor set.
var DefaultMeasurables = []Measurable{
	{ID: "co", Label: "Carbon Monoxide", Unit: "ppm", Min: 0, Max: 40},
	{ID: "oz", Label: "Ozone", Unit: "ppm", Min: 0, Max: 0.2},
	{ID: "pm", Label: "Particulate Matter", Unit: "ppm", Min: 0, Max: 50},
	{ID: "vo", Label: "Volatile Organics", Unit: "ppm", Min: 0, Max: 50},
	{ID: "temp", Label: "Temperature", Unit: "°F", Min: 0, Max: 100},
	{ID: "hum", Label: "Humidity", Unit: "%", Min: 0, Max: 100},
}

// DefaultCatalog returns the reference catalog with carbon monoxide active
// by default.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultMeasurables, "co")
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog validates measurables and builds a catalog. An empty defaultID
// selects the first measurable.
func NewCatalog(measurables []Measurable, defaultID string) (*Catalog, error) {
	if len(measurables) == 0 {
		return nil, errors.New("catalog: no measurables")
	}

	c := &Catalog{
		items: make([]Measurable, len(measurables)),
		index: make(map[string]int, len(measurables)),
	}
	copy(c.items, measurables)

	for i, m := range c.items {
		if !measurableID.MatchString(m.ID) {
			return nil, fmt.Errorf("catalog: measurable %d: invalid id %q", i, m.ID)
		}
		if _, dup := c.index[m.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate measurable %q", m.ID)
		}
		if !(m.Min < m.Max) {
			return nil, fmt.Errorf("catalog: measurable %q: min %v must be below max %v", m.ID, m.Min, m.Max)
		}
		if m.Label == "" {
			c.items[i].Label = m.ID
		}
		c.index[m.ID] = i
	}

	if defaultID == "" {
		defaultID = c.items[0].ID
	}
	if _, ok := c.index[defaultID]; !ok {
		return nil, fmt.Errorf("catalog: default %q: %w", defaultID, ErrUnknownMeasurable)
	}
	c.defaultID = defaultID

	return c, nil
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(f.Measurables, f.Default)
}

// MarshalYAML writes the catalog in the file layout LoadCatalog reads.
func (c *Catalog) MarshalYAML() (any, error) {
	return catalogFile{Default: c.defaultID, Measurables: c.List()}, nil
}

// List returns the measurables in catalog order.
func (c *Catalog) List() []Measurable {
	out := make([]Measurable, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns a measurable by ID.
func (c *Catalog) Get(id string) (Measurable, bool) {
	i, ok := c.index[id]
	if !ok {
		return Measurable{}, false
	}
	return c.items[i], true
}

// Contains reports whether m is exactly one of the catalog's measurables.
func (c *Catalog) Contains(m Measurable) bool {
	got, ok := c.Get(m.ID)
	return ok && got == m
}

// Default returns the measurable a new session starts on.
func (c *Catalog) Default() Measurable {
	m, _ := c.Get(c.defaultID)
	return m
}

// IDs returns the measurable identifiers in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.items))
	for i, m := range c.items {
		ids[i] = m.ID
	}
	return ids
}
