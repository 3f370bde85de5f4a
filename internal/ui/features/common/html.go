package common

import (
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup to w and remembers the first write error, so
// components can emit a sequence of fragments and check once at the end.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML wraps w.
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes s unescaped.
func (h *HTML) Raw(parts ...string) *HTML {
	for _, s := range parts {
		if h.err != nil {
			return h
		}
		_, h.err = io.WriteString(h.w, s)
	}
	return h
}

// Text writes s with HTML escaping.
func (h *HTML) Text(s string) *HTML {
	return h.Raw(templ.EscapeString(s))
}

// Err returns the first write error.
func (h *HTML) Err() error {
	return h.err
}
