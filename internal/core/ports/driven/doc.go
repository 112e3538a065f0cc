// Package driven holds the outbound ports: everything the core services
// call that lives outside the process or on disk.
//
// Services need an EmbeddingService, a VectorIndex, a DocumentStore and a
// TextSplitter to ingest and retrieve. An LLMService turns retrieved
// chunks into answers; without one the orchestrator can still search.
//
// NormaliserRegistry, PromptStore and SecretStore may be nil. The
// fallbacks are text-only uploads, the built-in prompts, and keys read
// from config or the environment.
//
// This package imports domain and nothing else from the module.
package driven
