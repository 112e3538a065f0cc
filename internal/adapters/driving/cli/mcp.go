package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose docqa to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the Model Context Protocol so an assistant can query your documents.

The server speaks JSON-RPC on stdin/stdout unless --port is given, in which
case it serves the streamable HTTP transport on 127.0.0.1.

Tools:      ask, search, list_documents, upload_document, remove_document
Resources:  docqa://documents, docqa://documents/{id}

Document tools and resources are only offered when document storage is
available.

Add it to an assistant's configuration as:

  "mcpServers": {
    "docqa": {"command": "/path/to/docqa", "args": ["mcp", "serve"]}
  }`,
	Example: `  docqa mcp serve
  docqa mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	port, _ := cmd.Flags().GetInt("port")
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	server, err := mcp.NewServer(&mcp.Ports{Query: queryService, Document: documentService})
	if err != nil {
		return err
	}
	if port == 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	return server.RunHTTP(cmd.Context(), addr, func(a net.Addr) {
		cmd.PrintErrf("MCP server listening on http://%s/\n", a)
	})
}
