package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-airmap/internal/service"
)

type InfoHandler struct {
	dataset  string
	sources  *service.SourceService
	readings *service.ReadingService
	dbOK     bool
}

func NewInfoHandler(dataset string, sources *service.SourceService, readings *service.ReadingService, dbOK bool) *InfoHandler {
	return &InfoHandler{dataset: dataset, sources: sources, readings: readings, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name       string   `json:"name" doc:"Service name"`
	Version    string   `json:"version" doc:"Service version"`
	SourcesDir string   `json:"sources_dir" doc:"Directory datasets are read from"`
	Dataset    string   `json:"dataset" doc:"Dataset loaded into new sessions"`
	Loaded     []string `json:"loaded" doc:"Datasets parsed and cached so far"`
	DB         bool     `json:"db" doc:"Whether database is available"`
	Features   []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"colormap", "legend", "sessions", "sse"}
	if h.dbOK {
		features = append(features, "duckdb")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:       "plat-airmap",
		Version:    "0.1.0",
		SourcesDir: h.sources.SourcesDir(),
		Dataset:    h.dataset,
		Loaded:     h.readings.Loaded(),
		DB:         h.dbOK,
		Features:   features,
	}}, nil
}
