package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrFeatureNotFound is returned when a feature ID is not in the dataset.
var ErrFeatureNotFound = errors.New("feature not found")

const (
	rawTimeLayout     = "20060102150405"
	displayTimeLayout = "2006/01/02 15:04:05"
)

// Dataset is a loaded, read-only set of readings. Features keep the
// source properties; Readings is the typed view of the same records.
type Dataset struct {
	Source   string
	Features []*geojson.Feature
	Readings []Reading
	Skipped  int

	index map[string]int
}

// ParseDataset decodes a GeoJSON FeatureCollection. ids lists the
// measurable properties to extract. Features without geometry are skipped.
func ParseDataset(source string, data []byte, ids []string) (*Dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	d := &Dataset{
		Source: source,
		index:  make(map[string]int, len(fc.Features)),
	}

	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			d.Skipped++
			continue
		}

		id := d.uniqueID(featureID(f, i), i)
		f.ID = id
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}

		r := Reading{
			ID:     id,
			Time:   rawTime(f.Properties["time"]),
			Values: make(map[string]*float64, len(ids)),
			Point:  pointOf(f.Geometry),
		}
		for _, m := range ids {
			r.Values[m] = PropertyValue(f, m)
		}

		d.index[id] = len(d.Readings)
		d.Features = append(d.Features, f)
		d.Readings = append(d.Readings, r)
	}

	return d, nil
}

// uniqueID returns id, or id suffixed with -i, -i+1, ... until it names
// no feature seen so far.
func (d *Dataset) uniqueID(id string, i int) string {
	if _, dup := d.index[id]; !dup {
		return id
	}
	for n := i; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, dup := d.index[candidate]; !dup {
			return candidate
		}
	}
}

// Len returns the number of features.
func (d *Dataset) Len() int {
	return len(d.Features)
}

// Feature returns a feature by ID.
func (d *Dataset) Feature(id string) (*geojson.Feature, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.Features[i], true
}

// Reading returns a reading by ID.
func (d *Dataset) Reading(id string) (Reading, bool) {
	i, ok := d.index[id]
	if !ok {
		return Reading{}, false
	}
	return d.Readings[i], true
}

// Page returns up to limit readings starting at offset.
func (d *Dataset) Page(offset, limit int) []Reading {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(d.Readings) || limit <= 0 {
		return []Reading{}
	}
	end := min(offset+limit, len(d.Readings))
	out := make([]Reading, end-offset)
	copy(out, d.Readings[offset:end])
	return out
}

// PropertyValue returns the numeric value of property id on f, or nil when
// the property is missing, null or not a number.
func PropertyValue(f *geojson.Feature, id string) *float64 {
	if f == nil {
		return nil
	}
	return numericValue(f.Properties[id])
}

func numericValue(v any) *float64 {
	var x float64
	switch n := v.(type) {
	case float64:
		x = n
	case float32:
		x = float64(n)
	case int:
		x = float64(n)
	case int64:
		x = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		x = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		x = f
	default:
		return nil
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

func featureID(f *geojson.Feature, i int) string {
	switch id := f.ID.(type) {
	case nil:
		return "r" + strconv.Itoa(i)
	case string:
		if id == "" {
			return "r" + strconv.Itoa(i)
		}
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func rawTime(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', 0, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// pointOf returns the marker position for a geometry: the point itself, or
// the centre of its bounds for anything else.
func pointOf(g orb.Geometry) orb.Point {
	if g == nil {
		return orb.Point{}
	}
	if p, ok := g.(orb.Point); ok {
		return p
	}
	return g.Bound().Center()
}

// FormatTimestamp turns a compact YYYYMMDDHHMMSS timestamp into
// YYYY/MM/DD HH:MM:SS. Anything else is returned unchanged.
func FormatTimestamp(raw string) string {
	t, err := time.Parse(rawTimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return t.Format(displayTimeLayout)
}

// ReadingStore mirrors loaded readings into a queryable store.
type ReadingStore interface {
	Insert(ctx context.Context, source string, readings []Reading) error
}

// ReadingService loads datasets from the source directory and caches them.
// A dataset is parsed once and shared read-only by every session.
type ReadingService struct {
	sources *SourceService
	ids     []string
	store   ReadingStore
	log     *slog.Logger

	mu        sync.RWMutex
	cache     map[string]*Dataset
	mirrorErr map[string]error
}

// NewReadingService creates a new reading service extracting the
// catalog's measurables.
func NewReadingService(sources *SourceService, catalog *Catalog) *ReadingService {
	return &ReadingService{
		sources:   sources,
		ids:       catalog.IDs(),
		log:       slog.Default(),
		cache:     make(map[string]*Dataset),
		mirrorErr: make(map[string]error),
	}
}

// SetStore sets the store loaded datasets are mirrored into. Mirror
// failures are logged to log (slog.Default when nil).
func (s *ReadingService) SetStore(store ReadingStore, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	s.mu.Lock()
	s.store = store
	s.log = log
	s.mu.Unlock()
}

// Load returns the dataset for source, parsing it on first use. A failed
// mirror write does not fail the load; see MirrorErr.
func (s *ReadingService) Load(ctx context.Context, source string) (*Dataset, error) {
	s.mu.RLock()
	d, ok := s.cache[source]
	s.mu.RUnlock()
	if ok {
		return d, nil
	}

	data, err := s.sources.Read(source)
	if err != nil {
		return nil, err
	}
	d, err = ParseDataset(source, data, s.ids)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[source]; ok {
		return cached, nil
	}
	if s.store != nil {
		if err := s.store.Insert(ctx, source, d.Readings); err != nil {
			s.log.Warn("mirror readings failed", "source", source, "error", err)
			s.mirrorErr[source] = fmt.Errorf("mirror %s: %w", source, err)
		}
	}
	s.cache[source] = d
	return d, nil
}

// MirrorErr returns the error from mirroring source into the store, or
// nil when it was mirrored (or not loaded yet).
func (s *ReadingService) MirrorErr(source string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mirrorErr[source]
}

// Loaded returns the names of the cached datasets in sorted order.
func (s *ReadingService) Loaded() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.cache))
	for name := range s.cache {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
