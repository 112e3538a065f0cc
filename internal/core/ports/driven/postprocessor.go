package driven

// TextSplitter splits document text into overlapping chunks.
// Output is ordered, deterministic and contains no blank chunks.
type TextSplitter interface {
	// Split returns the chunk texts for text.
	Split(text string) []string

	// ChunkSize returns the maximum chunk length in characters.
	ChunkSize() int

	// Overlap returns the number of characters shared by consecutive chunks.
	Overlap() int
}
