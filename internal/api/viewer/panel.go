// Package viewer contains Datastar SSE handlers for the map viewer UI.
package viewer

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-airmap/internal/humastar"
	"github.com/joeblew999/plat-airmap/internal/service"
	"github.com/joeblew999/plat-airmap/internal/templates"
)

// CSS selectors of the patched viewer regions.
const (
	selectorTarget = "#selectors"
	legendTarget   = "#legend"
	popupTarget    = "#popup"
)

// PanelHandler serves the selector bar, legend and feature popups.
type PanelHandler struct {
	humastar.Handler
	sessions *service.SessionService
}

// NewPanelHandler creates a new panel handler.
func NewPanelHandler(sessions *service.SessionService, renderer *templates.Renderer) *PanelHandler {
	return &PanelHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
	}
}

func (h *PanelHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/sessions/{session}/panel", h.Panel, huma.OperationTags("viewer"))
	huma.Post(api, "/api/v1/viewer/sessions/{session}/select/{measurable}", h.Select, huma.OperationTags("viewer"))
	huma.Get(api, "/api/v1/viewer/sessions/{session}/features/{feature}", h.Popup, huma.OperationTags("viewer"))
}

type SessionInput struct {
	Session string `path:"session" doc:"Session ID"`
}

type SelectInput struct {
	SessionInput
	Measurable string `path:"measurable" doc:"Measurable ID" example:"hum"`
}

type PopupInput struct {
	SessionInput
	Feature string `path:"feature" doc:"Feature ID" example:"r12"`
}

func (h *PanelHandler) Panel(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	sess, err := h.sessions.Get(input.Session)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return h.Stream(func(sse humastar.SSE) {
		h.patchPanel(sse, sess)
	}), nil
}

func (h *PanelHandler) Select(ctx context.Context, input *SelectInput) (*huma.StreamResponse, error) {
	if _, err := h.sessions.Get(input.Session); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}

	return h.Stream(func(sse humastar.SSE) {
		_, err := h.sessions.Select(input.Session, input.Measurable)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sess, err := h.sessions.Get(input.Session)
		if err != nil {
			sse.Error(err.Error())
			return
		}
		h.patchPanel(sse, sess)
	}), nil
}

func (h *PanelHandler) Popup(ctx context.Context, input *PopupInput) (*huma.StreamResponse, error) {
	info, err := h.sessions.Click(input.Session, input.Feature)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrFeatureNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError("popup failed", err)
	}
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.Render("popup", info), popupTarget)
		sse.Signals(map[string]any{"popup": info.ID})
	}), nil
}

// patchPanel sends the selector bar, the legend and the view signals.
func (h *PanelHandler) patchPanel(sse humastar.SSE, sess *service.Session) {
	state := sess.View.State()
	sse.Patch(h.Render("selector-bar", map[string]any{
		"Session":   sess.ID,
		"Selectors": sess.View.Selectors(),
	}), selectorTarget)
	sse.Patch(h.Render("legend", sess.Legend.Legend()), legendTarget)
	sse.Signals(map[string]any{
		"measurable": state.Active.ID,
		"scrollZoom": state.ScrollZoom,
		"zoom":       state.View.Zoom,
		"center":     state.View.Center,
	})
}
