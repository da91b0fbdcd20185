package viewer

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-airmap/internal/humastar"
	"github.com/joeblew999/plat-airmap/internal/service"
	"github.com/joeblew999/plat-airmap/internal/templates"
)

// EventHandler streams a session's view changes to the Datastar UI via SSE.
type EventHandler struct {
	humastar.Handler
	sessions *service.SessionService
	panel    *PanelHandler
}

// NewEventHandler creates a new event handler.
func NewEventHandler(sessions *service.SessionService, renderer *templates.Renderer) *EventHandler {
	return &EventHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
		panel:    NewPanelHandler(sessions, renderer),
	}
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/viewer/sessions/{session}/events", h.Events,
		huma.OperationTags("viewer"),
	)
}

func (h *EventHandler) Events(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	if _, err := h.sessions.Get(input.Session); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}

	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := humastar.NewSSE(humaCtx)
			bus := h.sessions.Bus()
			ch := bus.Subscribe(input.Session)
			defer bus.Unsubscribe(ch)

			done := humaCtx.Context().Done()
			for {
				select {
				case <-done:
					return
				case ev, ok := <-ch:
					if !ok {
						return
					}
					if ev.Action == service.ActionDeleted {
						sse.Replace(h.Empty("Session ended", "Reload to start a new session"), "#viewer")
						return
					}
					if sess, err := h.sessions.Get(input.Session); err == nil {
						h.panel.patchPanel(sse, sess)
					}
					sse.DispatchCustomEvent("view-changed", map[string]any{
						"action":     ev.Action,
						"measurable": ev.Measurable,
					})
				}
			}
		},
	}, nil
}
