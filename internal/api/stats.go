package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-airmap/internal/db"
	"github.com/joeblew999/plat-airmap/internal/service"
)

// StatsHandler serves aggregate queries over the DuckDB reading mirror.
type StatsHandler struct {
	readings *service.ReadingService
	store    *db.Store
}

// NewStatsHandler creates a new stats handler. store may be nil.
func NewStatsHandler(readings *service.ReadingService, store *db.Store) *StatsHandler {
	return &StatsHandler{readings: readings, store: store}
}

// RegisterRoutes registers database routes with Huma.
func (h *StatsHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("stats"))
	huma.Get(api, "/api/v1/sources/{source}/stats", h.GetStats, huma.OperationTags("stats"))
}

// TablesOutput is the response for listing tables.
type TablesOutput struct {
	Body struct {
		Tables []string `json:"tables" doc:"List of table names"`
	}
}

// ListTables returns all DuckDB tables.
func (h *StatsHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.store == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	tables, err := h.store.Tables(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}

	out := &TablesOutput{}
	out.Body.Tables = tables
	return out, nil
}

// StatsOutput is the response for per-measurable statistics.
type StatsOutput struct {
	Body struct {
		Source string               `json:"source" doc:"Dataset file name"`
		Stats  []db.MeasurableStats `json:"stats" doc:"Statistics per measurable"`
	}
}

// GetStats loads the dataset (mirroring it into DuckDB on first use) and
// returns per-measurable statistics. A dataset whose mirror write failed
// answers 503.
func (h *StatsHandler) GetStats(ctx context.Context, input *SourceInput) (*StatsOutput, error) {
	if h.store == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	if _, err := h.readings.Load(ctx, input.Source); err != nil {
		return nil, httpError(err)
	}
	if err := h.readings.MirrorErr(input.Source); err != nil {
		return nil, huma.Error503ServiceUnavailable("Readings not mirrored into the database", err)
	}

	stats, err := h.store.Stats(ctx, input.Source)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to compute stats", err)
	}

	out := &StatsOutput{}
	out.Body.Source = input.Source
	out.Body.Stats = stats
	return out, nil
}
