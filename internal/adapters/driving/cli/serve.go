package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
)

var (
	serveAddr string
	serveCORS []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Starts a JSON HTTP API for uploading documents and asking questions.

Routes:
  GET    /health
  GET    /api/documents
  POST   /api/documents        JSON {name, content} or multipart "file"
  GET    /api/documents/{id}
  DELETE /api/documents/{id}
  POST   /api/ask              {query, top_k}
  POST   /api/search           {query, top_k}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().StringSliceVar(&serveCORS, "cors", nil, "allowed CORS origins (default localhost)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if documentService == nil || queryService == nil || importService == nil {
		return errors.New("services not configured")
	}

	server, err := httpapi.New(httpapi.Config{
		Addr:        serveAddr,
		CORSOrigins: serveCORS,
	}, httpapi.Ports{
		Document: documentService,
		Query:    queryService,
		Import:   importService,
	})
	if err != nil {
		return err
	}

	return server.Start(cmd.Context(), func(addr string) {
		cmd.Printf("docqa API listening on http://%s\n", addr)
	})
}
