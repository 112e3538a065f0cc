// Package domain has the types every other package shares: documents and
// their lifecycle, chunks, search results, answers and their fallback
// outcomes, raw input files, and settings.
//
// It imports only the standard library.
package domain
