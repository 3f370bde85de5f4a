package common

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/storefront/internal/ui/resources"
)

// DatastarScript is the client runtime for SSE patches.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Layout renders the document shell around body.
func Layout(page PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">",
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">",
			"<title>").Text(page.Title).Raw(" | Storefront</title>",
			"<link rel=\"stylesheet\" href=\"", resources.StaticPath("app.css"), "\">",
			"<script type=\"module\" src=\"", DatastarScript, "\"></script>",
			"</head>")

		h.Raw("<body data-cart-config=\"").Text(page.CartConfig).Raw("\"")
		if page.UpdatesURL != "" {
			h.Raw(" data-on-load=\"@get('").Text(page.UpdatesURL).Raw("')\"")
		}
		h.Raw(">")

		h.Raw("<nav class=\"nav\">")
		for _, item := range Nav {
			h.Raw("<a href=\"").Text(item.Path).Raw("\"")
			if item.Path == page.CurrentPath {
				h.Raw(" class=\"active\" aria-current=\"page\"")
			}
			h.Raw(">").Text(item.Label).Raw("</a>")
		}
		h.Raw("</nav><main>")
		if h.Err() != nil {
			return h.Err()
		}

		if err := FlashBanner(page.Flash).Render(ctx, w); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}

		return h.Raw("</main></body></html>").Err()
	})
}

// FlashBanner renders the flash target. It always emits the #flash element
// so SSE patches have something to morph into.
func FlashBanner(f *Flash) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := NewHTML(w)
		if f == nil {
			return h.Raw("<div id=\"flash\"></div>").Err()
		}
		return h.Raw("<div id=\"flash\" class=\"flash flash-").Text(f.Kind).Raw("\" role=\"status\">").
			Text(f.Message).Raw("</div>").Err()
	})
}

// Message renders a standalone notice, used for not-found and error pages.
func Message(heading, body string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return NewHTML(w).Raw("<section class=\"notice\"><h1>").Text(heading).Raw("</h1><p>").
			Text(body).Raw("</p></section>").Err()
	})
}
