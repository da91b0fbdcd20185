package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-airmap/internal/humastar"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/measurables>; rel="measurables"`,
		`</api/v1/sources>; rel="sources"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/measurables>; rel="measurables"`,
	},
	"/api/v1/measurables": {
		`</api/v1/color>; rel="color"`,
		`</api/v1/sessions>; rel="sessions"`,
	},
	"/api/v1/legend/{measurable}": {
		`</api/v1/measurables>; rel="collection"`,
	},
	"/api/v1/sources": {
		`</api/v1/measurables>; rel="measurables"`,
		`</api/v1/tables>; rel="tables"`,
	},
	"/api/v1/sources/{source}/readings": {
		`</api/v1/sources>; rel="collection"`,
	},
	"/api/v1/sources/{source}/stats": {
		`</api/v1/sources>; rel="collection"`,
	},
	"/api/v1/sessions/{session}": {
		`</api/v1/measurables>; rel="measurables"`,
	},
}

// sessionLinks are added to every session item endpoint.
var sessionLinks = []string{"legend", "features", "recenter", "scroll-zoom"}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		if op.Path == "/api/v1/sessions/{session}" {
			base := ctx.URL().Path
			for _, rel := range sessionLinks {
				ctx.AppendHeader("Link", fmt.Sprintf(`<%s/%s>; rel="%s"`, base, rel, rel))
			}
		}

		// Pagination links from response body.
		if p, ok := v.(humastar.Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}

		return v, nil
	}
}
