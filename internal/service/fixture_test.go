package service

import (
	"os"
	"path/filepath"
	"testing"
)

const readingsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "a",
     "geometry": {"type": "Point", "coordinates": [-85.83, 41.56]},
     "properties": {"time": "20170412093000", "co": 40, "oz": 0.1, "hum": 50, "temp": "72.5"}},
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [-85.80, 41.58]},
     "properties": {"time": 20170412094500, "co": 0, "hum": null, "temp": "warm"}},
    {"type": "Feature", "id": 7,
     "geometry": {"type": "LineString", "coordinates": [[-85.0, 41.0], [-86.0, 42.0]]},
     "properties": {"co": 55}}
  ]
}`

// writeSource writes a dataset into <dir>/sources and returns dir.
func writeSource(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sources"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sources", name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}
