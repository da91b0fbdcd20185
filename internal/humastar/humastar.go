// Package humastar bridges Huma (REST/OpenAPI) with Datastar (SSE/hypermedia).
//
// It provides:
//   - SSE: Huma streaming to Datastar SSE protocol via [SSE] and [NewSSE]
//   - Handler: embeddable base for viewer SSE handlers via [Handler]
//   - Pagination: RFC 8288 Link headers via [PageBody]
//
// Usage:
//
//	type PanelHandler struct {
//	    humastar.Handler
//	    sessions *service.SessionService
//	}
//
//	func (h *PanelHandler) Panel(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
//	    return h.Stream(func(sse humastar.SSE) {
//	        sse.Patch(h.Render("legend", legend), "#legend")
//	    }), nil
//	}
package humastar

import (
	"bytes"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/joeblew999/plat-airmap/internal/templates"
)

// ---------------------------------------------------------------------------
// Handler: embeddable base for Datastar SSE handlers
// ---------------------------------------------------------------------------

// Handler is an embeddable base for Huma handlers that produce Datastar SSE
// responses.
type Handler struct {
	Renderer *templates.Renderer
}

// Stream returns a Huma StreamResponse that calls fn with a ready SSE helper.
func (h *Handler) Stream(fn func(sse SSE)) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			fn(NewSSE(humaCtx))
		},
	}
}

// Render renders a fragment, returning an empty-state fragment carrying the
// error if rendering fails.
func (h *Handler) Render(tmpl string, data any) string {
	html, err := h.Renderer.Render(tmpl, data)
	if err != nil {
		return h.Empty("Render failed", err.Error())
	}
	return html
}

// Empty renders the empty-state fragment.
func (h *Handler) Empty(title, msg string) string {
	var buf bytes.Buffer
	h.Renderer.RenderToBuffer(&buf, "empty-state", map[string]string{
		"Title": title, "Message": msg,
	})
	return buf.String()
}

// ---------------------------------------------------------------------------
// SSE: Huma to Datastar bridge
// ---------------------------------------------------------------------------

// SSE wraps a Datastar SSE generator with convenience methods for common
// patterns: error/success signals, inner/outer element patching.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE creates a Datastar SSE helper from a Huma streaming context.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Patch sends HTML to replace inner content at a CSS selector.
func (s SSE) Patch(html, selector string) {
	s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeInner(),
	)
}

// Replace replaces outer HTML at a CSS selector.
func (s SSE) Replace(html, selector string) {
	s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeOuter(),
	)
}

// Error sends an error signal to the UI.
func (s SSE) Error(msg string) {
	s.MarshalAndPatchSignals(map[string]any{"error": msg})
}

// Signals sends arbitrary signals to the UI.
func (s SSE) Signals(signals map[string]any) {
	s.MarshalAndPatchSignals(signals)
}
