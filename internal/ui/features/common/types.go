// Package common provides shared types and utilities for UI features.
package common

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Kind    string
	Message string
}

// NavItem is one entry in the top navigation bar.
type NavItem struct {
	Label string
	Path  string
}

// Nav is the fixed navigation shown on every page.
var Nav = []NavItem{
	{Label: "Authors", Path: "/authors"},
	{Label: "Orders", Path: "/orders"},
	{Label: "Admin", Path: "/admin/authors"},
}

// PageData holds what the layout needs around a page body.
type PageData struct {
	Title       string
	CurrentPath string
	// CartConfig is the provider configuration as JSON, mounted on <body>.
	CartConfig string
	Flash      *Flash
	// UpdatesURL, when set, opens a datastar SSE stream for live patches.
	UpdatesURL string
}
