package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes docqa's query and document ports as MCP tools and resources.
type Server struct {
	ports   *Ports
	server  *mcp.Server
	handler http.Handler
}

// NewServer validates ports and registers everything they support.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingQueryService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports}
	s.server = mcp.NewServer(
		&mcp.Implementation{Name: "docqa", Version: Version},
		&mcp.ServerOptions{Instructions: instructions(ports)},
	)
	s.registerTools()
	s.registerResources()

	s.handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
	return s, nil
}

// instructions tells the client which capabilities this instance offers.
func instructions(ports *Ports) string {
	var b strings.Builder
	b.WriteString("docqa answers questions from uploaded documents. ")
	b.WriteString("Use ask for a grounded answer with sources and search for raw matching chunks.")
	if ports.Document != nil {
		b.WriteString(" Documents can be managed with upload_document, list_documents and remove_document,")
		b.WriteString(" and read through the docqa://documents resources.")
	}
	return b.String()
}

// Run serves a single client over stdin and stdout until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx ends.
// ready, when set, receives the bound address once the listener is open.
func (s *Server) RunHTTP(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp: listening on %s: %w", addr, err)
	}

	hs := &http.Server{Handler: s.handler, ReadHeaderTimeout: readHeaderTimeout}
	if ready != nil {
		ready(ln.Addr())
	}
	logger.Info("MCP server listening on %s", ln.Addr())

	served := make(chan error, 1)
	go func() { served <- hs.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		// Streaming sessions can outlive the grace period.
		logger.Debug("mcp: forcing close: %v", err)
		_ = hs.Close()
	}
	return nil
}

// Handler returns the streamable HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
