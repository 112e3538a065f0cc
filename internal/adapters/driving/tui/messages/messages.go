// Package messages holds the tea.Msg types exchanged between the TUI
// views and the App.
package messages

import (
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ViewType names a screen.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewChat
	ViewDocuments
	ViewDocContent
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:       "menu",
	ViewChat:       "chat",
	ViewDocuments:  "documents",
	ViewDocContent: "doc_content",
	ViewHelp:       "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged asks the App to switch screens.
type ViewChanged struct{ View ViewType }

// Quit asks the App to exit.
type Quit struct{}

// ErrorOccurred reports a failure not tied to a specific request.
type ErrorOccurred struct{ Err error }

// AnswerReceived completes a question. At is when the question was asked.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
	At       time.Time
}

// TranscriptCleared follows a reset of the chat history.
type TranscriptCleared struct{}

type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentSelected opens a document's content view.
type DocumentSelected struct{ Document domain.Document }

// DocumentContentLoaded is matched to the open document by ID; a reply
// for any other document is dropped.
type DocumentContentLoaded struct {
	DocumentID string
	Content    string
	Err        error
}

type DocumentRemoved struct {
	DocumentID string
	Err        error
}
