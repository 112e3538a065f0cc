// Package tui is the interactive terminal front end: a menu, a chat
// screen over the query service, and document screens when a document
// service is available.
package tui

import (
	"errors"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var (
	ErrInvalidPorts        = errors.New("tui: invalid ports configuration")
	ErrMissingQueryService = errors.New("tui: query service is required")
)

// Ports are the services the TUI drives. Document is optional and hides
// the document screens when nil.
type Ports struct {
	Query    driving.QueryService
	Document driving.DocumentService
}

// NewPorts bundles the services the TUI needs.
func NewPorts(query driving.QueryService, document driving.DocumentService) *Ports {
	return &Ports{Query: query, Document: document}
}

// Validate requires a query service.
func (p *Ports) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidPorts
	case p.Query == nil:
		return ErrMissingQueryService
	}
	return nil
}
