package orders

import (
	"context"
	"net/http"
	"net/url"
)

// Defaults for absent search parameters.
const (
	DefaultPage  = "1"
	DefaultQuery = ""
)

// OrderSearchParams are the recognised query-string parameters of the
// orders list. Both are kept as the raw strings the client sent.
type OrderSearchParams struct {
	Page string
	Q    string
}

// DefaultOrderSearchParams returns the parameters of a bare /orders request.
func DefaultOrderSearchParams() OrderSearchParams {
	return OrderSearchParams{Page: DefaultPage, Q: DefaultQuery}
}

// ParseOrderSearchParams reads page and q from values. A parameter that is
// absent takes its default; a present one is taken verbatim, even if empty
// or not a number. Unrecognised parameters are ignored.
func ParseOrderSearchParams(values url.Values) OrderSearchParams {
	params := DefaultOrderSearchParams()

	if vs, ok := values["page"]; ok && len(vs) > 0 {
		params.Page = vs[0]
	}
	if vs, ok := values["q"]; ok && len(vs) > 0 {
		params.Q = vs[0]
	}
	return params
}

// Query returns the parameters as a query string, omitting defaults.
func (p OrderSearchParams) Query() url.Values {
	v := url.Values{}
	if p.Page != DefaultPage {
		v.Set("page", p.Page)
	}
	if p.Q != DefaultQuery {
		v.Set("q", p.Q)
	}
	return v
}

// WithPage returns a copy of p pointing at page n.
func (p OrderSearchParams) WithPage(n int) OrderSearchParams {
	p.Page = itoa(n)
	return p
}

type paramsKey struct{}

// SearchParams parses the order search parameters once per request and
// caches them in the request context.
func SearchParams(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := ParseOrderSearchParams(r.URL.Query())
		next.ServeHTTP(w, r.WithContext(WithParams(r.Context(), params)))
	})
}

// WithParams stores params in ctx.
func WithParams(ctx context.Context, params OrderSearchParams) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// FromContext returns the cached parameters, or the defaults when the
// middleware did not run.
func FromContext(ctx context.Context) OrderSearchParams {
	if params, ok := ctx.Value(paramsKey{}).(OrderSearchParams); ok {
		return params
	}
	return DefaultOrderSearchParams()
}
