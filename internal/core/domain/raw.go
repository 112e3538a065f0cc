package domain

// RawDocument is a file's bytes before normalisation. URI is where it came
// from: a path for uploads and watched files, a name for HTTP uploads.
type RawDocument struct {
	URI      string
	MIMEType string
	Content  []byte
}

// ChangeType classifies a watch event.
type ChangeType int

const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

var changeNames = [...]string{"created", "updated", "deleted"}

func (c ChangeType) String() string {
	if c < 0 || int(c) >= len(changeNames) {
		return unknownDescription
	}
	return changeNames[c]
}

// RawDocumentChange is one watch event. Document.Content is empty for
// deletions.
type RawDocumentChange struct {
	Type     ChangeType
	Document RawDocument
}
