package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports are the services behind the MCP tools. Without Document only ask
// and search are offered.
type Ports struct {
	Query    driving.QueryService
	Document driving.DocumentService
}

// Validate checks that the query service is set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
