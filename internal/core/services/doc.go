// Package services wires the driven ports into the operations the CLI,
// TUI, MCP and HTTP adapters call: uploading and indexing documents,
// retrieval, answering, and settings.
package services
