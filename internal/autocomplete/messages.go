package autocomplete

import (
	"tagcomplete/internal/commit"
	"tagcomplete/internal/domain"
)

// DocumentChangedMsg tells the engine the document content or selection
// changed. A non-nil Document replaces the one the engine works against.
type DocumentChangedMsg struct {
	Document domain.Document
}

// ItemClickedMsg reports a click on the suggestion at Index
type ItemClickedMsg struct {
	Index int
}

// CommittedMsg is emitted after a suggestion was written into the document
type CommittedMsg struct {
	Result commit.Result
}
