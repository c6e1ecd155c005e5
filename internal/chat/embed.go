// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package chat renders the host page for the externally hosted live chat widget.
package chat

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"
)

// DefaultUsername is shown for anonymous viewers.
const DefaultUsername = "Guest User"

//go:embed embed.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("chat").Parse(pageSource))

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Page describes one chat embed.
type Page struct {
	RoomID        string
	Username      string
	Title         string
	StylesheetURL string
	ScriptURL     string
}

// Validate rejects room ids that could escape the widget config.
func (p Page) Validate() error {
	if !roomIDPattern.MatchString(p.RoomID) {
		return fmt.Errorf("invalid chat room id %q", p.RoomID)
	}
	if strings.TrimSpace(p.StylesheetURL) == "" || strings.TrimSpace(p.ScriptURL) == "" {
		return fmt.Errorf("chat widget assets are not configured")
	}
	return nil
}

// Render writes the embed page to w.
func Render(w io.Writer, p Page) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Username == "" {
		p.Username = DefaultUsername
	}
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render chat page: %w", err)
	}
	return nil
}
