// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-airmap/internal/colormap"
	"github.com/joeblew999/plat-airmap/internal/db"
	"github.com/joeblew999/plat-airmap/internal/humastar"
	"github.com/joeblew999/plat-airmap/internal/service"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Catalog  *service.Catalog
	Source   *service.SourceService
	Readings *service.ReadingService
	Sessions *service.SessionService
	Store    *db.Store // nil when DuckDB is unavailable
}

// Types

type SessionInput struct {
	Session string `path:"session" doc:"Session ID" example:"0b6f3c52-8d4e-4c8e-9a3f-3f1d2b7c9e10"`
}

type MeasurableInput struct {
	Measurable string `path:"measurable" doc:"Measurable ID" example:"co"`
}

type SourceInput struct {
	Source string `path:"source" doc:"Dataset file name" example:"readings.geojson"`
}

type ColorInput struct {
	Value string  `query:"value" doc:"Reading value; empty means no data" example:"20"`
	Min   float64 `query:"min" doc:"Scale minimum" example:"0"`
	Max   float64 `query:"max" required:"true" doc:"Scale maximum" example:"40"`
}

type ColorBody struct {
	Color  string `json:"color" doc:"Marker colour (#rrggbb)" example:"#ffff00"`
	NoData bool   `json:"noData" doc:"Whether the sentinel no-data colour was used"`
}

type LegendBody struct {
	Measurable service.Measurable `json:"measurable" doc:"Measurable the legend describes"`
	service.Legend
}

type PageInput struct {
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Items to skip"`
	Limit  int `query:"limit" default:"100" minimum:"1" maximum:"1000" doc:"Page size"`
}

type SessionBody struct {
	ID        string             `json:"id" doc:"Session ID"`
	Created   time.Time          `json:"created" doc:"Creation time"`
	State     service.ViewState  `json:"state" doc:"Current view state"`
	Selectors []service.Selector `json:"selectors" doc:"Selector bar, exactly one active"`
	Features  int                `json:"features" doc:"Loaded feature count"`
	Legends   int                `json:"legends" doc:"Times the legend has been rendered"`
}

type GeoJSONOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterColors registers the catalog, colour and legend routes.
func (h *APIHandler) RegisterColors(api huma.API) {
	huma.Get(api, "/api/v1/measurables", h.GetMeasurables, huma.OperationTags("colors"))
	huma.Get(api, "/api/v1/color", h.GetColor, huma.OperationTags("colors"))
	huma.Get(api, "/api/v1/legend/{measurable}", h.GetLegend, huma.OperationTags("colors"))
}

// RegisterSources registers dataset routes.
func (h *APIHandler) RegisterSources(api huma.API) {
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("sources"))
	huma.Get(api, "/api/v1/sources/{source}/readings", h.GetReadings, huma.OperationTags("sources"))
}

// RegisterSessions registers view session routes.
func (h *APIHandler) RegisterSessions(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-session",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create session",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"sessions"},
	}, h.CreateSession)
	huma.Get(api, "/api/v1/sessions/{session}", h.GetSession, huma.OperationTags("sessions"))
	huma.Delete(api, "/api/v1/sessions/{session}", h.DeleteSession, huma.OperationTags("sessions"))
	huma.Put(api, "/api/v1/sessions/{session}/measurable/{measurable}", h.SelectMeasurable, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{session}/legend", h.GetSessionLegend, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{session}/features", h.GetFeatures, huma.OperationTags("sessions"))
	huma.Get(api, "/api/v1/sessions/{session}/features/{feature}", h.GetFeature, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions/{session}/recenter", h.Recenter, huma.OperationTags("sessions"))
	huma.Post(api, "/api/v1/sessions/{session}/scroll-zoom", h.ToggleScrollZoom, huma.OperationTags("sessions"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetMeasurables(ctx context.Context, input *struct{}) (*struct{ Body []service.Measurable }, error) {
	return &struct{ Body []service.Measurable }{Body: h.svc.Catalog.List()}, nil
}

func (h *APIHandler) GetColor(ctx context.Context, input *ColorInput) (*struct{ Body ColorBody }, error) {
	var value *float64
	if s := strings.TrimSpace(input.Value); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, huma.Error400BadRequest("value must be a number or empty")
		}
		value = &v
	}
	color := colormap.ColorFor(value, input.Min, input.Max)
	return &struct{ Body ColorBody }{Body: ColorBody{Color: color, NoData: color == colormap.NoData}}, nil
}

func (h *APIHandler) GetLegend(ctx context.Context, input *MeasurableInput) (*struct{ Body LegendBody }, error) {
	m, ok := h.svc.Catalog.Get(input.Measurable)
	if !ok {
		return nil, huma.Error404NotFound("measurable not found")
	}
	return &struct{ Body LegendBody }{Body: LegendBody{
		Measurable: m,
		Legend: service.Legend{
			Heading: colormap.LegendHeading,
			Rows:    colormap.BuildLegend(m.Min, m.Max, m.Unit),
		},
	}}, nil
}

func (h *APIHandler) GetSources(ctx context.Context, input *struct{}) (*struct{ Body []service.SourceFile }, error) {
	sources, err := h.svc.Source.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list sources", err)
	}
	return &struct{ Body []service.SourceFile }{Body: sources}, nil
}

func (h *APIHandler) GetReadings(ctx context.Context, input *struct {
	SourceInput
	PageInput
}) (*struct {
	Body humastar.PageBody[service.Reading]
}, error) {
	d, err := h.svc.Readings.Load(ctx, input.Source)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct {
		Body humastar.PageBody[service.Reading]
	}{Body: humastar.PageBody[service.Reading]{
		Total:  d.Len(),
		Offset: input.Offset,
		Limit:  input.Limit,
		Data:   d.Page(input.Offset, input.Limit),
	}}, nil
}

func (h *APIHandler) CreateSession(ctx context.Context, input *struct{}) (*struct{ Body SessionBody }, error) {
	sess, err := h.svc.Sessions.Create(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body SessionBody }{Body: sessionBody(sess)}, nil
}

func (h *APIHandler) GetSession(ctx context.Context, input *SessionInput) (*struct{ Body SessionBody }, error) {
	sess, err := h.svc.Sessions.Get(input.Session)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body SessionBody }{Body: sessionBody(sess)}, nil
}

func (h *APIHandler) DeleteSession(ctx context.Context, input *SessionInput) (*struct{ Body MessageBody }, error) {
	if err := h.svc.Sessions.Delete(input.Session); err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Session deleted"}}, nil
}

func (h *APIHandler) SelectMeasurable(ctx context.Context, input *struct {
	SessionInput
	MeasurableInput
}) (*struct{ Body service.ViewState }, error) {
	state, err := h.svc.Sessions.Select(input.Session, input.Measurable)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body service.ViewState }{Body: state}, nil
}

func (h *APIHandler) GetSessionLegend(ctx context.Context, input *SessionInput) (*struct{ Body service.Legend }, error) {
	sess, err := h.svc.Sessions.Get(input.Session)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body service.Legend }{Body: sess.Legend.Legend()}, nil
}

func (h *APIHandler) GetFeatures(ctx context.Context, input *SessionInput) (*GeoJSONOutput, error) {
	sess, err := h.svc.Sessions.Get(input.Session)
	if err != nil {
		return nil, httpError(err)
	}
	data, err := sess.Layer.Styled().MarshalJSON()
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to encode features", err)
	}
	return &GeoJSONOutput{ContentType: "application/geo+json", Body: data}, nil
}

func (h *APIHandler) GetFeature(ctx context.Context, input *struct {
	SessionInput
	Feature string `path:"feature" doc:"Feature ID" example:"r12"`
}) (*struct{ Body service.FeatureInfo }, error) {
	info, err := h.svc.Sessions.Click(input.Session, input.Feature)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body service.FeatureInfo }{Body: info}, nil
}

func (h *APIHandler) Recenter(ctx context.Context, input *SessionInput) (*struct{ Body service.ViewState }, error) {
	state, err := h.svc.Sessions.Recenter(input.Session)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body service.ViewState }{Body: state}, nil
}

func (h *APIHandler) ToggleScrollZoom(ctx context.Context, input *SessionInput) (*struct{ Body service.ViewState }, error) {
	state, err := h.svc.Sessions.ToggleScrollZoom(input.Session)
	if err != nil {
		return nil, httpError(err)
	}
	return &struct{ Body service.ViewState }{Body: state}, nil
}

func sessionBody(sess *service.Session) SessionBody {
	return SessionBody{
		ID:        sess.ID,
		Created:   sess.Created,
		State:     sess.View.State(),
		Selectors: sess.View.Selectors(),
		Features:  sess.Layer.Len(),
		Legends:   sess.Legend.Renders(),
	}
}

// httpError maps service errors to Huma status errors.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrFeatureNotFound),
		errors.Is(err, service.ErrUnknownMeasurable),
		errors.Is(err, fs.ErrNotExist):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, service.ErrInvalidSource):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}

// RegisterRoutes registers every REST route.
func RegisterRoutes(api huma.API, svc *Services, info *InfoHandler) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewStatsHandler(svc.Readings, svc.Store).RegisterRoutes(api)
	info.RegisterRoutes(api)
}
